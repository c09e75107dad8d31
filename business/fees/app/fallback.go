package app

import (
	"strings"

	"github.com/shopspring/decimal"

	ticketDomain "github.com/ORDEP81/ticketsight/business/ticket/domain"
)

// Weights carries the heuristic scoring knobs for fallback detection.
// Calibration values, not derived constants.
type Weights struct {
	Roundness             float64 // suspiciously round per-contract fee
	DefaultValue          float64 // default price/quantity was substituted
	FormulaContext        float64 // fee arrived via the schedule formula path
	TextPatternConfidence float64 // floor when raw text mentions estimation
	Threshold             float64 // cumulative confidence deciding IsUsingFallback
}

// DefaultWeights returns the stock calibration.
func DefaultWeights() Weights {
	return Weights{
		Roundness:             0.2,
		DefaultValue:          0.15,
		FormulaContext:        0.25,
		TextPatternConfidence: 0.4,
		Threshold:             0.5,
	}
}

// DetectionContext describes how the fee under inspection was produced.
type DetectionContext struct {
	UsedDefaultPrice    bool
	UsedDefaultQuantity bool
	FormulaComputed     bool
	RawTexts            []string
}

// Report is the fallback-usage classification handed to tooltip rendering.
// Labeling only: it never changes the numeric result.
type Report struct {
	IsUsingFallback bool
	Confidence      float64
	Reasons         []string
}

// FallbackDetector classifies whether a fee was ticket-sourced or
// estimated, with a confidence score for transparency.
type FallbackDetector struct {
	weights Weights
}

// NewFallbackDetector creates a detector with the given weights.
func NewFallbackDetector(w Weights) *FallbackDetector {
	return &FallbackDetector{weights: w}
}

// roundFees are per-contract values that most often come from defaults
// rather than a real schedule computation.
var roundFees = []decimal.Decimal{
	decimal.RequireFromString("0.01"),
	decimal.RequireFromString("0.02"),
	decimal.RequireFromString("0.05"),
}

var fallbackPhrases = []string{"estimated", "fallback", "could not parse", "couldn't parse"}

// Detect scores the fee against the primary, secondary and tertiary
// signals and returns the classification.
func (d *FallbackDetector) Detect(fee *ticketDomain.FeeInfo, dctx DetectionContext) Report {
	report := Report{}

	if fee == nil {
		report.Reasons = append(report.Reasons, "no fee information present")
		return report
	}

	// Primary: the source label is authoritative.
	if fee.Estimated() {
		report.Confidence = 0.95
		report.IsUsingFallback = true
		report.Reasons = append(report.Reasons, "fee source is marked estimated")
		return report
	}

	// Secondary: accumulate weighted heuristic signals.
	if fee.PerContractFee.Valid {
		for _, r := range roundFees {
			if fee.PerContractFee.Decimal.Equal(r) {
				report.Confidence += d.weights.Roundness
				report.Reasons = append(report.Reasons, "per-contract fee is a suspiciously round value")
				break
			}
		}
	}
	if dctx.UsedDefaultPrice {
		report.Confidence += d.weights.DefaultValue
		report.Reasons = append(report.Reasons, "price was defaulted, not parsed")
	}
	if dctx.UsedDefaultQuantity {
		report.Confidence += d.weights.DefaultValue
		report.Reasons = append(report.Reasons, "quantity was defaulted, not parsed")
	}
	if dctx.FormulaComputed {
		report.Confidence += d.weights.FormulaContext
		report.Reasons = append(report.Reasons, "fee came from a formula computation context")
	}

	// Tertiary: raw source text mentioning estimation floors the score.
	if textMentionsEstimation(append([]string{fee.RawText}, dctx.RawTexts...)) {
		if report.Confidence < d.weights.TextPatternConfidence {
			report.Confidence = d.weights.TextPatternConfidence
		}
		report.Reasons = append(report.Reasons, "raw text mentions estimation")
	}

	if report.Confidence > 1 {
		report.Confidence = 1
	}
	report.IsUsingFallback = report.Confidence >= d.weights.Threshold
	return report
}

func textMentionsEstimation(texts []string) bool {
	for _, raw := range texts {
		lower := strings.ToLower(raw)
		for _, phrase := range fallbackPhrases {
			if strings.Contains(lower, phrase) {
				return true
			}
		}
	}
	return false
}
