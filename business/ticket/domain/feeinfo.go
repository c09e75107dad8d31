package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	oddsDomain "github.com/ORDEP81/ticketsight/business/odds/domain"
	"github.com/ORDEP81/ticketsight/internal/apperror"
)

// FeeConsistencyTolerance bounds the allowed disagreement between the total
// fee and per-contract fee times quantity.
var FeeConsistencyTolerance = decimal.RequireFromString("0.01")

// FeeInfo carries fee figures attached to a ticket, either read off the
// ticket or synthesized from the published schedule.
type FeeInfo struct {
	TotalFee       decimal.NullDecimal
	PerContractFee decimal.NullDecimal
	Source         oddsDomain.FeeSource
	RawText        string
}

// Estimated reports whether the fee was synthesized rather than parsed.
func (f *FeeInfo) Estimated() bool {
	return f != nil && f.Source == oddsDomain.FeeSourceEstimated
}

// EffectivePerContract returns the per-contract figure, deriving it from
// the total when only the total is known.
func (f *FeeInfo) EffectivePerContract(quantity int) (decimal.Decimal, bool) {
	if f == nil {
		return decimal.Zero, false
	}
	if f.PerContractFee.Valid {
		return f.PerContractFee.Decimal, true
	}
	if f.TotalFee.Valid && quantity > 0 {
		return f.TotalFee.Decimal.Div(decimal.NewFromInt(int64(quantity))), true
	}
	return decimal.Zero, false
}

// CheckConsistency verifies totalFee ≈ perContractFee * quantity when both
// figures are present. A violation is a warning at the ticket level, never
// a hard failure.
func (f *FeeInfo) CheckConsistency(quantity int) error {
	if f == nil || !f.TotalFee.Valid || !f.PerContractFee.Valid || quantity <= 0 {
		return nil
	}

	expected := f.PerContractFee.Decimal.Mul(decimal.NewFromInt(int64(quantity)))
	diff := f.TotalFee.Decimal.Sub(expected).Abs()
	if diff.GreaterThan(FeeConsistencyTolerance) {
		return apperror.Validation(apperror.CodeFeeInconsistent,
			fmt.Sprintf("total=%s per-contract=%s quantity=%d diff=%s",
				f.TotalFee.Decimal, f.PerContractFee.Decimal, quantity, diff))
	}
	return nil
}
