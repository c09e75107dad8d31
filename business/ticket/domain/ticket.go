// Package domain contains the core ticket record types and validation.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side is the contract side selected on the ticket.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// ValidationSummary aggregates the outcome of a parse attempt. CanProceed
// requires side, price and quantity; fee problems only ever count as
// warnings.
type ValidationSummary struct {
	CriticalErrorCount int
	WarningCount       int
	CanProceed         bool
}

// TicketData is the structured record produced by one parse attempt. A new
// record is created per invocation; nothing is mutated across parses.
type TicketData struct {
	ID       uuid.UUID
	Side     Side                // empty = absent
	Price    decimal.NullDecimal // invalid = absent
	Quantity int                 // 0 = absent
	Fee      *FeeInfo            // nil = absent

	IsValid  bool
	Errors   []string
	Warnings []string
	Summary  ValidationSummary

	// RecoveryApplied lists which recovery strategies ran, in order.
	RecoveryApplied []string

	CreatedAt time.Time
}

// NewTicketData creates an empty record for a fresh parse attempt.
func NewTicketData() *TicketData {
	return &TicketData{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
	}
}

// HasSide reports whether a side was parsed.
func (t *TicketData) HasSide() bool { return t.Side == SideYes || t.Side == SideNo }

// HasPrice reports whether a price was parsed.
func (t *TicketData) HasPrice() bool { return t.Price.Valid }

// HasQuantity reports whether a quantity was parsed.
func (t *TicketData) HasQuantity() bool { return t.Quantity > 0 }

// AddError appends a field-level error message, preserving order.
func (t *TicketData) AddError(msg string) {
	t.Errors = append(t.Errors, msg)
}

// AddWarning appends a non-blocking consistency warning.
func (t *TicketData) AddWarning(msg string) {
	t.Warnings = append(t.Warnings, msg)
}

// OrderValue returns price * quantity when both are present.
func (t *TicketData) OrderValue() (decimal.Decimal, bool) {
	if !t.HasPrice() || !t.HasQuantity() {
		return decimal.Zero, false
	}
	return t.Price.Decimal.Mul(decimal.NewFromInt(int64(t.Quantity))), true
}

// Finalize recomputes IsValid and the validation summary from the collected
// fields and messages. Call after every mutation pass.
func (t *TicketData) Finalize() {
	complete := t.HasSide() && t.HasPrice() && t.HasQuantity()
	t.IsValid = complete
	t.Summary = ValidationSummary{
		CriticalErrorCount: len(t.Errors),
		WarningCount:       len(t.Warnings),
		CanProceed:         complete,
	}
}

// Clone returns a deep copy; consumers receive records by value and must
// never share mutable state with the orchestrator.
func (t *TicketData) Clone() *TicketData {
	cp := *t
	cp.Errors = append([]string(nil), t.Errors...)
	cp.Warnings = append([]string(nil), t.Warnings...)
	cp.RecoveryApplied = append([]string(nil), t.RecoveryApplied...)
	if t.Fee != nil {
		fee := *t.Fee
		cp.Fee = &fee
	}
	return &cp
}
