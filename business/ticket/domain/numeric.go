package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ORDEP81/ticketsight/internal/apperror"
)

// Validation bounds for raw ticket inputs.
var (
	MinPrice = decimal.RequireFromString("0.01")
	MaxPrice = decimal.NewFromInt(1)
	MaxFee   = decimal.NewFromInt(1000)
)

const (
	MinQuantity = 1
	MaxQuantity = 10000

	// FeeMaxDecimals bounds fee precision; the host UI never shows more.
	FeeMaxDecimals = 4
)

// sanitizeNumeric strips currency markers, grouping commas and surrounding
// noise from a candidate numeric string.
func sanitizeNumeric(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "¢")
	return strings.TrimSpace(s)
}

// ValidatePrice bound-checks a contract price.
func ValidatePrice(price decimal.Decimal) error {
	if price.LessThan(MinPrice) || price.GreaterThan(MaxPrice) {
		return apperror.Validation(apperror.CodeInvalidPrice, fmt.Sprintf("price=%s", price))
	}
	return nil
}

// ParsePriceText sanitizes and validates a price-shaped string.
func ParsePriceText(s string) (decimal.Decimal, error) {
	clean := sanitizeNumeric(s)
	if clean == "" {
		return decimal.Zero, apperror.Validation(apperror.CodeInvalidFormat, "empty price text")
	}
	price, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, apperror.Internal(apperror.CodeInvalidFormat, fmt.Sprintf("price text %q", s), err)
	}
	if err := ValidatePrice(price); err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

// ValidateQuantity bound-checks a contract count.
func ValidateQuantity(quantity int) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return apperror.Validation(apperror.CodeInvalidQuantity, fmt.Sprintf("quantity=%d", quantity))
	}
	return nil
}

// ParseQuantityText sanitizes and validates an integer quantity string.
// Fractional values are rejected, not truncated.
func ParseQuantityText(s string) (int, error) {
	clean := sanitizeNumeric(s)
	if clean == "" {
		return 0, apperror.Validation(apperror.CodeInvalidFormat, "empty quantity text")
	}
	quantity, err := strconv.Atoi(clean)
	if err != nil {
		return 0, apperror.Internal(apperror.CodeInvalidFormat, fmt.Sprintf("quantity text %q", s), err)
	}
	if err := ValidateQuantity(quantity); err != nil {
		return 0, err
	}
	return quantity, nil
}

// ValidateFee bound-checks a fee amount: non-negative, capped, and at most
// four decimal places.
func ValidateFee(fee decimal.Decimal) error {
	if fee.IsNegative() || fee.GreaterThan(MaxFee) {
		return apperror.Validation(apperror.CodeInvalidFee, fmt.Sprintf("fee=%s", fee))
	}
	if fee.Exponent() < -FeeMaxDecimals {
		return apperror.Validation(apperror.CodeInvalidFee,
			fmt.Sprintf("fee=%s has more than %d decimal places", fee, FeeMaxDecimals))
	}
	return nil
}

// ParseFeeText sanitizes and validates a fee-shaped string.
func ParseFeeText(s string) (decimal.Decimal, error) {
	clean := sanitizeNumeric(s)
	if clean == "" {
		return decimal.Zero, apperror.Validation(apperror.CodeInvalidFormat, "empty fee text")
	}
	fee, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, apperror.Internal(apperror.CodeInvalidFormat, fmt.Sprintf("fee text %q", s), err)
	}
	if err := ValidateFee(fee); err != nil {
		return decimal.Zero, err
	}
	return fee, nil
}
