// Package domparse implements the ticket field parsers over the opaque
// node tree. Every parser runs a primary structural strategy followed by
// ordered fallbacks of decreasing specificity.
package domparse

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ORDEP81/ticketsight/business/ticket/app"
	"github.com/ORDEP81/ticketsight/business/ticket/domain"
	"github.com/ORDEP81/ticketsight/internal/apperror"
	"github.com/ORDEP81/ticketsight/internal/domtree"
	"github.com/ORDEP81/ticketsight/internal/logger"
)

// Options carries parser tuning knobs.
type Options struct {
	// QuantityMinWeakSignals is how many weak structural hints an
	// unlabeled numeric input needs before it counts as a quantity field.
	QuantityMinWeakSignals int

	// MinContainerScore is the floor below which an element does not
	// count as a ticket container.
	MinContainerScore int
}

// DefaultOptions returns the stock calibration.
func DefaultOptions() Options {
	return Options{
		QuantityMinWeakSignals: 2,
		MinContainerScore:      MinContainerScore,
	}
}

// Parsers implements app.FieldParsers with strategy lists per field.
type Parsers struct {
	opts   Options
	logger logger.LoggerInterface
}

var _ app.FieldParsers = (*Parsers)(nil)
var _ app.ContainerLocator = (*Parsers)(nil)

// New creates the parser set.
func New(opts Options, log logger.LoggerInterface) *Parsers {
	if opts.QuantityMinWeakSignals < 1 {
		opts.QuantityMinWeakSignals = DefaultOptions().QuantityMinWeakSignals
	}
	if opts.MinContainerScore < 1 {
		opts.MinContainerScore = MinContainerScore
	}
	return &Parsers{opts: opts, logger: log}
}

// sideStrategy attempts to resolve the selected contract side.
type sideStrategy struct {
	name string
	fn   func(root *domtree.Node) (domain.Side, bool)
}

// priceStrategy attempts to resolve the limit price.
type priceStrategy struct {
	name string
	fn   func(root *domtree.Node) (decimal.Decimal, bool)
}

// quantityStrategy attempts to resolve the contract count.
type quantityStrategy struct {
	name string
	fn   func(root *domtree.Node) (int, bool)
}

// feeStrategy attempts to resolve displayed fee information.
type feeStrategy struct {
	name string
	fn   func(root *domtree.Node) (*domain.FeeInfo, bool)
}

func notFound(field string, tried []string) error {
	return apperror.NotFound(apperror.CodeFieldNotFound,
		field+" (strategies: "+strings.Join(tried, ", ")+")")
}

// ParseSide runs the side strategies in order.
func (p *Parsers) ParseSide(ctx context.Context, root *domtree.Node) (domain.Side, error) {
	strategies := []sideStrategy{
		{name: "aria-selected-toggle", fn: sideFromSelectedToggle},
		{name: "indicator-scoring", fn: sideFromIndicatorScore},
		{name: "checked-radio", fn: sideFromCheckedRadio},
	}

	var tried []string
	for _, s := range strategies {
		if side, ok := s.fn(root); ok {
			p.logger.Debug(ctx, "side parsed", "strategy", s.name, "side", string(side))
			return side, nil
		}
		tried = append(tried, s.name)
	}
	return "", notFound("side", tried)
}

// ParsePrice runs the price strategies in order.
func (p *Parsers) ParsePrice(ctx context.Context, root *domtree.Node) (decimal.Decimal, error) {
	strategies := []priceStrategy{
		{name: "labeled-input", fn: priceFromLabeledInput},
		{name: "bounded-input", fn: priceFromBoundedInput},
		{name: "price-shaped-text", fn: priceFromNearbyText},
	}

	var tried []string
	for _, s := range strategies {
		if price, ok := s.fn(root); ok {
			p.logger.Debug(ctx, "price parsed", "strategy", s.name, "price", price.String())
			return price, nil
		}
		tried = append(tried, s.name)
	}
	return decimal.Zero, notFound("price", tried)
}

// ParseQuantity runs the quantity strategies in order. Defaulting to 1 is a
// recovery decision, not a parsing one, so it does not happen here.
func (p *Parsers) ParseQuantity(ctx context.Context, root *domtree.Node) (int, error) {
	strategies := []quantityStrategy{
		{name: "labeled-input", fn: quantityFromLabeledInput},
		{name: "contracts-phrase", fn: quantityFromPhrase},
		{name: "weak-indicators", fn: p.quantityFromWeakIndicators},
	}

	var tried []string
	for _, s := range strategies {
		if qty, ok := s.fn(root); ok {
			p.logger.Debug(ctx, "quantity parsed", "strategy", s.name, "quantity", qty)
			return qty, nil
		}
		tried = append(tried, s.name)
	}
	return 0, notFound("quantity", tried)
}

// ParseFee scans short text nodes for fee phrasing.
func (p *Parsers) ParseFee(ctx context.Context, root *domtree.Node) (*domain.FeeInfo, error) {
	strategies := []feeStrategy{
		{name: "fee-phrase", fn: feeFromPhrases},
	}

	var tried []string
	for _, s := range strategies {
		if fee, ok := s.fn(root); ok {
			p.logger.Debug(ctx, "fee parsed", "strategy", s.name, "raw", fee.RawText)
			return fee, nil
		}
		tried = append(tried, s.name)
	}
	return nil, notFound("fee", tried)
}
