package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ORDEP81/ticketsight/business/ticket/domain"
	"github.com/ORDEP81/ticketsight/internal/apperror"
	"github.com/ORDEP81/ticketsight/internal/config"
	"github.com/ORDEP81/ticketsight/internal/domtree"
	"github.com/ORDEP81/ticketsight/internal/logger"
)

// Price bands beyond which a warning is attached: contracts priced like
// near-certainties leave almost no room for the fee.
var (
	extremeLowPrice  = decimal.RequireFromString("0.02")
	extremeHighPrice = decimal.RequireFromString("0.98")

	// orderValueWarnLimit flags unusually large orders for a second look.
	orderValueWarnLimit = decimal.NewFromInt(1000)
)

// Orchestrator runs the full extraction pipeline: independent field
// collection, recovery for incomplete parses, fee completion and
// cross-field validation. Every call produces a fresh TicketData.
type Orchestrator struct {
	parsers   FieldParsers
	estimator FeeEstimator
	locator   ContainerLocator
	recovery  config.RecoveryConfig
	logger    logger.LoggerInterface

	sleep func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator wires the pipeline. estimator and locator may be nil;
// the matching recovery steps are skipped.
func NewOrchestrator(parsers FieldParsers, estimator FeeEstimator, locator ContainerLocator,
	recovery config.RecoveryConfig, log logger.LoggerInterface) *Orchestrator {
	return &Orchestrator{
		parsers:   parsers,
		estimator: estimator,
		locator:   locator,
		recovery:  recovery,
		logger:    log,
		sleep:     ctxSleep,
	}
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Parse extracts ticket data from the given subtree. It never returns nil:
// an unparseable ticket comes back as a finalized record with errors and
// CanProceed false.
func (o *Orchestrator) Parse(ctx context.Context, root *domtree.Node) *domain.TicketData {
	data, detached := o.parseOnce(ctx, root)

	if !data.Summary.CanProceed && !detached {
		data = o.recoverIncomplete(ctx, root, data)
	}

	o.completeFee(ctx, data)
	o.crossValidate(ctx, data)
	data.Finalize()

	o.logger.Info(ctx, "ticket parsed",
		"id", data.ID.String(),
		"canProceed", data.Summary.CanProceed,
		"errors", data.Summary.CriticalErrorCount,
		"warnings", data.Summary.WarningCount,
		"recovery", data.RecoveryApplied)
	return data
}

// parseOnce runs every field parser against the subtree. Fields fail
// independently; a stale subtree aborts the attempt but still yields the
// fields collected so far.
func (o *Orchestrator) parseOnce(ctx context.Context, root *domtree.Node) (*domain.TicketData, bool) {
	data := domain.NewTicketData()

	detached := o.guarded(func() {
		if side, err := o.parsers.ParseSide(ctx, root); err != nil {
			data.AddError(fmt.Sprintf("side: %v", err))
		} else {
			data.Side = side
		}
		if price, err := o.parsers.ParsePrice(ctx, root); err != nil {
			data.AddError(fmt.Sprintf("price: %v", err))
		} else {
			data.Price = decimal.NewNullDecimal(price)
		}
		if qty, err := o.parsers.ParseQuantity(ctx, root); err != nil {
			data.AddError(fmt.Sprintf("quantity: %v", err))
		} else {
			data.Quantity = qty
		}
		if fee, err := o.parsers.ParseFee(ctx, root); err != nil {
			if !apperror.IsCode(err, apperror.CodeFieldNotFound) {
				data.AddWarning(fmt.Sprintf("fee: %v", err))
			}
		} else {
			data.Fee = fee
		}
	})

	if detached {
		data.AddError("ticket element went stale during parse")
	}
	data.Finalize()
	return data, detached
}

// guarded runs fn, absorbing the stale-subtree panic. Anything else
// propagates.
func (o *Orchestrator) guarded(fn func()) (detached bool) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok && apperror.IsCode(err, apperror.CodeTicketDetached) {
				detached = true
				return
			}
			panic(r)
		}
	}()
	fn()
	return false
}

func fieldCount(t *domain.TicketData) int {
	n := 0
	if t.HasSide() {
		n++
	}
	if t.HasPrice() {
		n++
	}
	if t.HasQuantity() {
		n++
	}
	return n
}

// recoverIncomplete runs the recovery ladder for a parse that cannot
// proceed: re-read after a short delay, widen to ancestors, scan the whole
// document for an alternate container, then default the quantity. The
// ladder stops at the first attempt that can proceed; partial improvements
// are kept.
func (o *Orchestrator) recoverIncomplete(ctx context.Context, root *domtree.Node, best *domain.TicketData) *domain.TicketData {
	var applied []string

	consider := func(step string, node *domtree.Node) bool {
		attempt, detached := o.parseOnce(ctx, node)
		if detached {
			return false
		}
		if fieldCount(attempt) > fieldCount(best) {
			o.logger.Debug(ctx, "recovery improved parse",
				"step", step, "fields", fieldCount(attempt))
			best = attempt
			applied = append(applied, step)
		}
		return best.Summary.CanProceed
	}

	done := func() *domain.TicketData {
		best.RecoveryApplied = append(best.RecoveryApplied, applied...)
		return best
	}

	if err := o.sleep(ctx, o.recovery.RetryDelay); err != nil {
		return done()
	}
	if consider("retry-after-delay", root) {
		return done()
	}

	for lvl := 1; lvl <= o.recovery.ParentLevels; lvl++ {
		ancestor := root.Ancestor(lvl)
		if ancestor == root {
			break
		}
		if consider(fmt.Sprintf("parent-climb-%d", lvl), ancestor) {
			return done()
		}
	}

	if o.locator != nil {
		for _, container := range o.locator.FindTicketContainers(root.Root()) {
			if container == root {
				continue
			}
			if consider("alternate-container", container) {
				return done()
			}
		}
	}

	if best.HasSide() && best.HasPrice() && !best.HasQuantity() {
		best.Quantity = 1
		best.AddWarning("quantity not found, defaulted to 1 contract")
		applied = append(applied, "default-quantity")
		best.Finalize()
	}

	return done()
}

// completeFee synthesizes a schedule-based fee when the ticket shows none
// and the order is otherwise complete.
func (o *Orchestrator) completeFee(ctx context.Context, data *domain.TicketData) {
	if data.Fee != nil || o.estimator == nil || !o.estimator.Enabled() {
		return
	}
	if !data.HasPrice() || !data.HasQuantity() {
		return
	}

	fee, err := o.estimator.EstimateFeeInfo(ctx, data.Price.Decimal, data.Quantity)
	if err != nil {
		o.logger.Warn(ctx, "fee estimation failed", "error", err)
		data.AddWarning(fmt.Sprintf("fee could not be estimated: %v", err))
		return
	}
	data.Fee = fee
	data.RecoveryApplied = append(data.RecoveryApplied, "estimated-fee")
	data.AddWarning("fee estimated from the published schedule, not read off the ticket")
}

// crossValidate attaches consistency and sanity warnings. Nothing here
// blocks the ticket.
func (o *Orchestrator) crossValidate(ctx context.Context, data *domain.TicketData) {
	if data.Fee != nil && data.HasQuantity() {
		if err := data.Fee.CheckConsistency(data.Quantity); err != nil {
			data.AddWarning(fmt.Sprintf("fee figures disagree: %v", err))
		}
	}

	if value, ok := data.OrderValue(); ok && value.GreaterThan(orderValueWarnLimit) {
		data.AddWarning(fmt.Sprintf("order value $%s is unusually large", value))
	}

	if data.HasPrice() {
		p := data.Price.Decimal
		if p.LessThanOrEqual(extremeLowPrice) || p.GreaterThanOrEqual(extremeHighPrice) {
			data.AddWarning(fmt.Sprintf("price %s is at the edge of the band, odds will be extreme", p))
		}
	}
}
