// Package domain implements the published exchange fee schedule.
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ORDEP81/ticketsight/internal/apperror"
)

// FeeType selects the fee tier.
type FeeType string

const (
	FeeTaker FeeType = "taker"
	FeeMaker FeeType = "maker"
)

// Published fee rates. The schedule charges rate * price * (1 - price) per
// contract; the quadratic term peaks at price = 0.50 and must not be
// approximated linearly.
var (
	takerRate = decimal.RequireFromString("0.07")
	makerRate = decimal.RequireFromString("0.0175")

	one = decimal.NewFromInt(1)
)

// Rate returns the decimal fee rate for the tier.
func (t FeeType) Rate() (decimal.Decimal, error) {
	switch t {
	case FeeTaker:
		return takerRate, nil
	case FeeMaker:
		return makerRate, nil
	default:
		return decimal.Zero, apperror.Validation(apperror.CodeInvalidInput,
			fmt.Sprintf("unknown fee type %q", t))
	}
}

// Estimate is a schedule-derived fee figure.
type Estimate struct {
	TotalFee       decimal.Decimal // rounded up to the nearest cent
	PerContractFee decimal.Decimal // TotalFee / quantity
	FeeType        FeeType
}

// CalculateFeeEstimate applies the published schedule: per-contract base of
// rate*price*(1-price), multiplied by quantity, rounded UP to the nearest
// cent for the total, divided back by quantity for the effective
// per-contract figure.
func CalculateFeeEstimate(price decimal.Decimal, quantity int, feeType FeeType) (Estimate, error) {
	if price.LessThanOrEqual(decimal.Zero) || price.GreaterThan(one) {
		return Estimate{}, apperror.Validation(apperror.CodeInvalidPrice,
			fmt.Sprintf("price=%s", price))
	}
	if quantity < 1 {
		return Estimate{}, apperror.Validation(apperror.CodeInvalidQuantity,
			fmt.Sprintf("quantity=%d", quantity))
	}

	rate, err := feeType.Rate()
	if err != nil {
		return Estimate{}, err
	}

	perContractBase := rate.Mul(price).Mul(one.Sub(price))
	qty := decimal.NewFromInt(int64(quantity))

	total := perContractBase.Mul(qty).RoundCeil(2)
	effective := total.Div(qty)

	return Estimate{
		TotalFee:       total,
		PerContractFee: effective,
		FeeType:        feeType,
	}, nil
}
