// Package app assembles derived odds records for display consumers.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	feesApp "github.com/ORDEP81/ticketsight/business/fees/app"
	"github.com/ORDEP81/ticketsight/business/odds/domain"
	ticketDomain "github.com/ORDEP81/ticketsight/business/ticket/domain"
	"github.com/ORDEP81/ticketsight/internal/apperror"
	"github.com/ORDEP81/ticketsight/internal/logger"
)

// Calculator derives the after-fee odds record for a parsed ticket. Results
// are ephemeral: recomputed per call, never cached across parses.
type Calculator struct {
	detector *feesApp.FallbackDetector
	logger   logger.LoggerInterface
}

// NewCalculator wires the odds derivation with a fallback-usage detector.
func NewCalculator(detector *feesApp.FallbackDetector, log logger.LoggerInterface) *Calculator {
	return &Calculator{detector: detector, logger: log}
}

// Derive computes the full AfterFeeResult from a finalized ticket. The
// ticket must be able to proceed; partial tickets produce no odds.
func (c *Calculator) Derive(ctx context.Context, data *ticketDomain.TicketData) (domain.AfterFeeResult, error) {
	if data == nil || !data.Summary.CanProceed {
		return domain.AfterFeeResult{}, apperror.Validation(apperror.CodeValidationError,
			"ticket is incomplete, no odds derivable")
	}

	price := data.Price.Decimal

	// Raw odds treat the displayed price as the implied probability.
	rawProb, _ := price.Float64()
	rawOdds, err := domain.ProbabilityToAmericanOdds(rawProb)
	if err != nil {
		return domain.AfterFeeResult{}, err
	}

	fee, haveFee := data.Fee.EffectivePerContract(data.Quantity)
	if !haveFee {
		fee = decimal.Zero
	}

	odds, err := domain.CalculateAfterFeeOdds(price, fee)
	if err != nil {
		return domain.AfterFeeResult{}, err
	}

	if verr := odds.Revalidate(price, fee); verr != nil {
		c.logger.Warn(ctx, "after-fee odds failed revalidation", "error", verr)
	}

	result := domain.AfterFeeResult{
		AfterFeeOdds:   odds.Odds,
		RawOdds:        rawOdds,
		Risk:           odds.Risk,
		Profit:         odds.Profit,
		FeePerContract: fee,
		FeeSource:      domain.FeeSourceTicket,
	}
	if data.Fee != nil {
		result.FeeSource = data.Fee.Source
	}

	if c.detector != nil {
		report := c.detector.Detect(data.Fee, feesApp.DetectionContext{
			UsedDefaultQuantity: hasStep(data.RecoveryApplied, "default-quantity"),
			RawTexts:            feeTexts(data),
		})
		result.FallbackConfidence = report.Confidence
		if report.IsUsingFallback {
			c.logger.Debug(ctx, "fee figures look synthesized",
				"confidence", report.Confidence, "reasons", report.Reasons)
		}
	}

	return result, nil
}

func hasStep(steps []string, want string) bool {
	for _, s := range steps {
		if s == want {
			return true
		}
	}
	return false
}

func feeTexts(data *ticketDomain.TicketData) []string {
	var texts []string
	if data.Fee != nil && data.Fee.RawText != "" {
		texts = append(texts, data.Fee.RawText)
	}
	texts = append(texts, data.Warnings...)
	return texts
}
