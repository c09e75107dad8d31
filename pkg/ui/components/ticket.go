// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	oddsDomain "github.com/ORDEP81/ticketsight/business/odds/domain"
	ticketDomain "github.com/ORDEP81/ticketsight/business/ticket/domain"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Width(14)
	valueStyle = lipgloss.NewStyle().Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	missStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

// TicketComponent renders the parsed ticket fields and derived odds.
type TicketComponent struct {
	ticket   *ticketDomain.TicketData
	odds     *oddsDomain.AfterFeeResult
	oddsLine string
}

// NewTicketComponent creates an empty ticket panel.
func NewTicketComponent() *TicketComponent {
	return &TicketComponent{}
}

// Set replaces the displayed parse result.
func (t *TicketComponent) Set(ticket *ticketDomain.TicketData, odds *oddsDomain.AfterFeeResult, oddsLine string) {
	t.ticket = ticket
	t.odds = odds
	t.oddsLine = oddsLine
}

// Clear drops the displayed ticket.
func (t *TicketComponent) Clear() {
	t.ticket = nil
	t.odds = nil
	t.oddsLine = ""
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

// View renders the panel.
func (t *TicketComponent) View() string {
	if t.ticket == nil {
		return missStyle.Render("no ticket open")
	}

	var b strings.Builder

	if t.ticket.HasSide() {
		b.WriteString(row("Side", string(t.ticket.Side)) + "\n")
	} else {
		b.WriteString(labelStyle.Render("Side") + missStyle.Render("not found") + "\n")
	}
	if t.ticket.HasPrice() {
		b.WriteString(row("Price", "$"+t.ticket.Price.Decimal.StringFixed(2)) + "\n")
	} else {
		b.WriteString(labelStyle.Render("Price") + missStyle.Render("not found") + "\n")
	}
	if t.ticket.HasQuantity() {
		b.WriteString(row("Contracts", fmt.Sprintf("%d", t.ticket.Quantity)) + "\n")
	} else {
		b.WriteString(labelStyle.Render("Contracts") + missStyle.Render("not found") + "\n")
	}

	if fee := t.ticket.Fee; fee != nil {
		value := ""
		if fee.TotalFee.Valid {
			value = "$" + fee.TotalFee.Decimal.StringFixed(2)
		}
		if fee.PerContractFee.Valid {
			if value != "" {
				value += " "
			}
			value += "($" + fee.PerContractFee.Decimal.String() + "/contract)"
		}
		if fee.Estimated() {
			value += warnStyle.Render(" estimated")
		}
		b.WriteString(row("Fee", value) + "\n")
	} else {
		b.WriteString(labelStyle.Render("Fee") + missStyle.Render("not shown") + "\n")
	}

	if value, ok := t.ticket.OrderValue(); ok {
		b.WriteString(row("Order value", "$"+value.StringFixed(2)) + "\n")
	}

	b.WriteString(row("Odds", t.oddsLine) + "\n")
	if t.odds != nil {
		b.WriteString(row("Raw odds", formatSigned(t.odds.RawOdds)) + "\n")
		b.WriteString(row("Risk/Profit",
			fmt.Sprintf("$%s / $%s", t.odds.Risk.StringFixed(2), t.odds.Profit.StringFixed(2))) + "\n")
	}

	for _, w := range t.ticket.Warnings {
		b.WriteString(warnStyle.Render("! "+w) + "\n")
	}
	for _, e := range t.ticket.Errors {
		b.WriteString(missStyle.Render("x "+e) + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatSigned(odds int) string {
	if odds > 0 {
		return fmt.Sprintf("+%d", odds)
	}
	return fmt.Sprintf("%d", odds)
}
