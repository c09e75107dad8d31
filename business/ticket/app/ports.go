// Package app contains application services and port definitions for the
// ticket context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ORDEP81/ticketsight/business/ticket/domain"
	"github.com/ORDEP81/ticketsight/internal/domtree"
)

// FieldParsers is the port the orchestrator drives. Each method runs its
// ordered strategy list against the subtree and returns the first validated
// hit, or an error naming what was tried. A failure in one field never
// affects another.
type FieldParsers interface {
	ParseSide(ctx context.Context, root *domtree.Node) (domain.Side, error)
	ParsePrice(ctx context.Context, root *domtree.Node) (decimal.Decimal, error)
	ParseQuantity(ctx context.Context, root *domtree.Node) (int, error)
	ParseFee(ctx context.Context, root *domtree.Node) (*domain.FeeInfo, error)
}

// FeeEstimator synthesizes fee information when the ticket shows none.
type FeeEstimator interface {
	Enabled() bool
	EstimateFeeInfo(ctx context.Context, price decimal.Decimal, quantity int) (*domain.FeeInfo, error)
}

// ContainerLocator finds alternate ticket-shaped containers in the wider
// document during recovery.
type ContainerLocator interface {
	FindTicketContainers(root *domtree.Node) []*domtree.Node
}
