package app

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ORDEP81/ticketsight/business/odds/domain"
	ticketDomain "github.com/ORDEP81/ticketsight/business/ticket/domain"
	"github.com/ORDEP81/ticketsight/internal/config"
)

// Unavailable is shown whenever no odds can be derived. The display stays
// neutral: no stale or partial numbers.
const Unavailable = "unavailable"

// EstimatedMarker is appended whenever displayed odds rest on a synthesized
// fee rather than one read off the ticket. The marker is a hard display
// contract: estimated figures are never shown as exact.
const EstimatedMarker = " (est.)"

var hundred = decimal.NewFromInt(100)

// Formatter renders derived odds for the configured display mode.
type Formatter struct {
	mode string
}

// NewFormatter creates a Formatter. Unknown modes fall back to after-fee
// American odds, the richest display.
func NewFormatter(mode string) *Formatter {
	switch mode {
	case config.DisplayPercent, config.DisplayRawAmerican, config.DisplayAfterFeeAmerican:
	default:
		mode = config.DisplayAfterFeeAmerican
	}
	return &Formatter{mode: mode}
}

// Mode returns the active display mode.
func (f *Formatter) Mode() string { return f.mode }

// Format renders the odds line for a ticket. Incomplete tickets render the
// neutral placeholder regardless of mode.
func (f *Formatter) Format(data *ticketDomain.TicketData, result *domain.AfterFeeResult) string {
	if data == nil || !data.Summary.CanProceed || result == nil {
		return Unavailable
	}

	var out string
	switch f.mode {
	case config.DisplayPercent:
		pct := data.Price.Decimal.Mul(hundred)
		out = fmt.Sprintf("%s%%", pct.StringFixed(1))
	case config.DisplayRawAmerican:
		out = FormatAmerican(result.RawOdds)
	default:
		out = FormatAmerican(result.AfterFeeOdds)
	}

	// Every mode carries the marker when the fee was synthesized, even the
	// fee-independent ones: a ticket resting on an estimated fee is never
	// presented as exact.
	if result.FeeSource == domain.FeeSourceEstimated {
		out += EstimatedMarker
	}
	return out
}

// FormatAmerican renders American odds with an explicit sign, the house
// convention for positive lines.
func FormatAmerican(odds int) string {
	if odds > 0 {
		return fmt.Sprintf("+%d", odds)
	}
	return fmt.Sprintf("%d", odds)
}
