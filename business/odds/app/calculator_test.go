package app

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"

	feesApp "github.com/ORDEP81/ticketsight/business/fees/app"
	"github.com/ORDEP81/ticketsight/business/odds/domain"
	ticketDomain "github.com/ORDEP81/ticketsight/business/ticket/domain"
	"github.com/ORDEP81/ticketsight/internal/apperror"
	"github.com/ORDEP81/ticketsight/internal/config"
	"github.com/ORDEP81/ticketsight/internal/logger"
)

func testCalculator() *Calculator {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	return NewCalculator(feesApp.NewFallbackDetector(feesApp.DefaultWeights()), log)
}

func completeTicket(price string, quantity int, fee *ticketDomain.FeeInfo) *ticketDomain.TicketData {
	data := ticketDomain.NewTicketData()
	data.Side = ticketDomain.SideYes
	data.Price = decimal.NewNullDecimal(decimal.RequireFromString(price))
	data.Quantity = quantity
	data.Fee = fee
	data.Finalize()
	return data
}

func ticketFee(total, perContract string) *ticketDomain.FeeInfo {
	return &ticketDomain.FeeInfo{
		TotalFee:       decimal.NewNullDecimal(decimal.RequireFromString(total)),
		PerContractFee: decimal.NewNullDecimal(decimal.RequireFromString(perContract)),
		Source:         domain.FeeSourceTicket,
		RawText:        "Fees $" + total,
	}
}

func TestDerive(t *testing.T) {
	c := testCalculator()
	ctx := context.Background()

	t.Run("after-fee and raw odds", func(t *testing.T) {
		data := completeTicket("0.40", 10, ticketFee("0.30", "0.03"))
		result, err := c.Derive(ctx, data)
		if err != nil {
			t.Fatalf("Derive: %v", err)
		}
		// risk 0.43, profit 0.57 -> +133; raw 0.40 implied -> +150
		if result.AfterFeeOdds != 133 {
			t.Fatalf("after-fee odds = %d, want +133", result.AfterFeeOdds)
		}
		if result.RawOdds != 150 {
			t.Fatalf("raw odds = %d, want +150", result.RawOdds)
		}
		if result.FeeSource != domain.FeeSourceTicket {
			t.Fatalf("fee source = %s", result.FeeSource)
		}
		if result.FallbackConfidence >= feesApp.DefaultWeights().Threshold {
			t.Fatalf("clean ticket fee flagged as fallback: %v", result.FallbackConfidence)
		}
	})

	t.Run("estimated fee carries high confidence", func(t *testing.T) {
		fee := ticketFee("0.17", "0.017")
		fee.Source = domain.FeeSourceEstimated
		data := completeTicket("0.40", 10, fee)

		result, err := c.Derive(ctx, data)
		if err != nil {
			t.Fatalf("Derive: %v", err)
		}
		if result.FeeSource != domain.FeeSourceEstimated {
			t.Fatalf("fee source = %s", result.FeeSource)
		}
		if result.FallbackConfidence < 0.9 {
			t.Fatalf("confidence = %v, want >= 0.9 for estimated source", result.FallbackConfidence)
		}
	})

	t.Run("missing fee derives on price alone", func(t *testing.T) {
		data := completeTicket("0.35", 5, nil)
		result, err := c.Derive(ctx, data)
		if err != nil {
			t.Fatalf("Derive: %v", err)
		}
		if !result.FeePerContract.IsZero() {
			t.Fatalf("fee per contract = %s, want 0", result.FeePerContract)
		}
		if result.AfterFeeOdds != result.RawOdds {
			t.Fatalf("zero fee must leave odds unchanged: %d vs %d",
				result.AfterFeeOdds, result.RawOdds)
		}
	})

	t.Run("incomplete ticket yields nothing", func(t *testing.T) {
		data := ticketDomain.NewTicketData()
		data.Finalize()
		if _, err := c.Derive(ctx, data); !apperror.IsCode(err, apperror.CodeValidationError) {
			t.Fatalf("err = %v, want VALIDATION_ERROR", err)
		}
	})

	t.Run("guaranteed loser yields nothing", func(t *testing.T) {
		data := completeTicket("0.98", 1, ticketFee("0.03", "0.03"))
		if _, err := c.Derive(ctx, data); !apperror.IsCode(err, apperror.CodeUnprofitableOrder) {
			t.Fatalf("err = %v, want UNPROFITABLE_ORDER", err)
		}
	})
}

func TestFormatter(t *testing.T) {
	data := completeTicket("0.40", 10, ticketFee("0.30", "0.03"))
	result := &domain.AfterFeeResult{
		AfterFeeOdds: 133,
		RawOdds:      150,
		FeeSource:    domain.FeeSourceTicket,
	}

	cases := []struct {
		name   string
		mode   string
		result *domain.AfterFeeResult
		want   string
	}{
		{"percent", config.DisplayPercent, result, "40.0%"},
		{"raw american", config.DisplayRawAmerican, result, "+150"},
		{"after-fee american", config.DisplayAfterFeeAmerican, result, "+133"},
		{"unknown mode falls back", "bogus", result, "+133"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewFormatter(tc.mode).Format(data, tc.result); got != tc.want {
				t.Fatalf("Format = %q, want %q", got, tc.want)
			}
		})
	}

	t.Run("estimated marker in every mode", func(t *testing.T) {
		est := *result
		est.FeeSource = domain.FeeSourceEstimated
		marked := []struct {
			mode string
			want string
		}{
			{config.DisplayAfterFeeAmerican, "+133" + EstimatedMarker},
			{config.DisplayRawAmerican, "+150" + EstimatedMarker},
			{config.DisplayPercent, "40.0%" + EstimatedMarker},
		}
		for _, tc := range marked {
			if got := NewFormatter(tc.mode).Format(data, &est); got != tc.want {
				t.Fatalf("Format(%s) = %q, want %q", tc.mode, got, tc.want)
			}
		}
	})

	t.Run("incomplete ticket is neutral", func(t *testing.T) {
		partial := ticketDomain.NewTicketData()
		partial.Finalize()
		if got := NewFormatter(config.DisplayPercent).Format(partial, result); got != Unavailable {
			t.Fatalf("Format = %q, want %q", got, Unavailable)
		}
	})

	t.Run("negative odds keep their sign", func(t *testing.T) {
		if got := FormatAmerican(-186); got != "-186" {
			t.Fatalf("FormatAmerican = %q", got)
		}
	})
}
