package domain

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ORDEP81/ticketsight/internal/apperror"
)

func TestCalculateAfterFeeOdds(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		fee      string
		wantOdds int
		wantCode apperror.Code // empty = success
	}{
		{name: "profitable_underdog", price: "0.40", fee: "0.03", wantOdds: 133},
		{name: "profitable_favorite", price: "0.60", fee: "0.02", wantOdds: -163},
		{name: "even_after_fee", price: "0.48", fee: "0.02", wantOdds: 100},
		{name: "no_fee", price: "0.25", fee: "0", wantOdds: 300},
		{name: "risk_at_one", price: "0.98", fee: "0.02", wantCode: apperror.CodeUnprofitableOrder},
		{name: "risk_above_one", price: "0.98", fee: "0.03", wantCode: apperror.CodeUnprofitableOrder},
		{name: "zero_price", price: "0", fee: "0.01", wantCode: apperror.CodeInvalidPrice},
		{name: "negative_price", price: "-0.10", fee: "0.01", wantCode: apperror.CodeInvalidPrice},
		{name: "price_above_one", price: "1.01", fee: "0", wantCode: apperror.CodeInvalidPrice},
		{name: "negative_fee", price: "0.40", fee: "-0.01", wantCode: apperror.CodeInvalidFee},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := decimal.RequireFromString(tt.price)
			fee := decimal.RequireFromString(tt.fee)

			got, err := CalculateAfterFeeOdds(price, fee)
			if tt.wantCode != "" {
				if err == nil {
					t.Fatalf("expected %s, got odds %d", tt.wantCode, got.Odds)
				}
				if apperror.GetCode(err) != tt.wantCode {
					t.Errorf("expected %s, got %s", tt.wantCode, apperror.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Odds != tt.wantOdds {
				t.Errorf("odds = %d, want %d", got.Odds, tt.wantOdds)
			}

			// Invariants: risk = price + fee, profit = 1 - risk, risk in (0,1).
			if !got.Risk.Equal(price.Add(fee)) {
				t.Errorf("risk = %s, want %s", got.Risk, price.Add(fee))
			}
			if !got.Profit.Equal(decimal.NewFromInt(1).Sub(got.Risk)) {
				t.Errorf("profit = %s, violates profit = 1 - risk", got.Profit)
			}
			if got.Risk.LessThanOrEqual(decimal.Zero) || got.Risk.GreaterThanOrEqual(decimal.NewFromInt(1)) {
				t.Errorf("risk %s outside (0,1)", got.Risk)
			}

			if err := got.Revalidate(price, fee); err != nil {
				t.Errorf("Revalidate failed: %v", err)
			}
		})
	}
}

// Profitability gate property: any (price, fee) pair whose sum reaches 1.00
// yields no result.
func TestAfterFeeOdds_ProfitabilityGate(t *testing.T) {
	for priceCents := 1; priceCents <= 100; priceCents += 3 {
		for feeCents := 0; feeCents <= 30; feeCents++ {
			price := decimal.New(int64(priceCents), -2)
			fee := decimal.New(int64(feeCents), -2)

			got, err := CalculateAfterFeeOdds(price, fee)
			riskAtOrAboveOne := priceCents+feeCents >= 100

			if riskAtOrAboveOne && err == nil && priceCents <= 100 {
				t.Fatalf("price=%s fee=%s: expected no result, got odds %d", price, fee, got.Odds)
			}
			if !riskAtOrAboveOne && err != nil {
				t.Fatalf("price=%s fee=%s: unexpected error %v", price, fee, err)
			}
		}
	}
}
