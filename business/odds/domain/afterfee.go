package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ORDEP81/ticketsight/internal/apperror"
)

var one = decimal.NewFromInt(1)

// FeeSource labels where a per-contract fee came from.
type FeeSource string

const (
	FeeSourceTicket    FeeSource = "ticket"
	FeeSourceEstimated FeeSource = "estimated"
)

// AfterFeeOdds is the result of a single after-fee conversion.
type AfterFeeOdds struct {
	Odds   int             // American odds on the fee-adjusted stake
	Risk   decimal.Decimal // price + fee per contract
	Profit decimal.Decimal // 1 - risk
}

// AfterFeeResult is the full derived record handed to display consumers.
// Ephemeral: recomputed on demand, never cached across parses.
type AfterFeeResult struct {
	AfterFeeOdds       int
	RawOdds            int
	Risk               decimal.Decimal
	Profit             decimal.Decimal
	FeePerContract     decimal.Decimal
	FeeSource          FeeSource
	FallbackConfidence float64
}

// CalculateAfterFeeOdds computes American odds using price plus fee as the
// effective stake. Orders whose risk reaches 1.00 are guaranteed losers and
// produce no result.
func CalculateAfterFeeOdds(price, feePerContract decimal.Decimal) (AfterFeeOdds, error) {
	if price.LessThanOrEqual(decimal.Zero) || price.GreaterThan(one) {
		return AfterFeeOdds{}, apperror.Validation(apperror.CodeInvalidPrice,
			fmt.Sprintf("price=%s", price))
	}
	if feePerContract.IsNegative() {
		return AfterFeeOdds{}, apperror.Validation(apperror.CodeInvalidFee,
			fmt.Sprintf("fee=%s", feePerContract))
	}

	risk := price.Add(feePerContract)
	if risk.GreaterThanOrEqual(one) {
		return AfterFeeOdds{}, apperror.Validation(apperror.CodeUnprofitableOrder,
			fmt.Sprintf("risk=%s", risk))
	}

	profit := one.Sub(risk)
	if profit.LessThanOrEqual(decimal.Zero) {
		return AfterFeeOdds{}, apperror.Validation(apperror.CodeNonPositiveProfit,
			fmt.Sprintf("profit=%s", profit))
	}

	hundred := decimal.NewFromInt(100)
	var odds int
	if profit.GreaterThanOrEqual(risk) {
		odds = int(profit.Div(risk).Mul(hundred).Round(0).IntPart())
	} else {
		odds = -int(risk.Div(profit).Mul(hundred).Round(0).IntPart())
	}

	return AfterFeeOdds{Odds: odds, Risk: risk, Profit: profit}, nil
}

// Revalidate re-derives risk and profit from the inputs and reports any
// disagreement with the stored result. Inconsistency is a logging concern,
// never a hard failure.
func (a AfterFeeOdds) Revalidate(price, feePerContract decimal.Decimal) error {
	risk := price.Add(feePerContract)
	if !risk.Equal(a.Risk) {
		return apperror.Validation(apperror.CodeValidationError,
			fmt.Sprintf("risk drifted: stored=%s derived=%s", a.Risk, risk))
	}
	if !one.Sub(risk).Equal(a.Profit) {
		return apperror.Validation(apperror.CodeValidationError,
			fmt.Sprintf("profit drifted: stored=%s", a.Profit))
	}
	return nil
}
