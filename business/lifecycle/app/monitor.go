// Package app drives the ticket lifecycle state machine over incoming
// page snapshots.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/ORDEP81/ticketsight/business/lifecycle/domain"
	oddsDomain "github.com/ORDEP81/ticketsight/business/odds/domain"
	ticketDomain "github.com/ORDEP81/ticketsight/business/ticket/domain"
	"github.com/ORDEP81/ticketsight/internal/apperror"
	"github.com/ORDEP81/ticketsight/internal/config"
	"github.com/ORDEP81/ticketsight/internal/domtree"
	"github.com/ORDEP81/ticketsight/internal/logger"
	"github.com/ORDEP81/ticketsight/internal/ratelimit"
	"github.com/ORDEP81/ticketsight/internal/retry"
)

// ContainerLocator finds ticket containers in a snapshot, best first.
type ContainerLocator interface {
	FindTicketContainers(root *domtree.Node) []*domtree.Node
}

// TicketParser extracts ticket data from a container subtree.
type TicketParser interface {
	Parse(ctx context.Context, root *domtree.Node) *ticketDomain.TicketData
}

// OddsDeriver computes the after-fee record for a parsed ticket.
type OddsDeriver interface {
	Derive(ctx context.Context, data *ticketDomain.TicketData) (oddsDomain.AfterFeeResult, error)
}

// Update is one lifecycle transition together with whatever the parse and
// derivation produced. Odds is nil when the ticket cannot proceed.
type Update struct {
	Event  domain.Event
	Ticket *ticketDomain.TicketData
	Odds   *oddsDomain.AfterFeeResult
}

// Monitor runs the closed -> open -> changed -> closed state machine.
// Snapshots arrive via HandleSnapshot; transitions and parse results are
// published on Updates.
type Monitor struct {
	locator ContainerLocator
	parser  TicketParser
	deriver OddsDeriver
	policy  retry.Policy
	breaker *gobreaker.CircuitBreaker[*domtree.Node]
	logger  logger.LoggerInterface

	debounce *ratelimit.Debouncer

	mu       sync.Mutex
	state    domain.State
	lastFP   uint64
	snapshot *domtree.Node

	runCtx  context.Context
	updates chan Update
}

// NewMonitor wires the state machine from the detection settings.
func NewMonitor(locator ContainerLocator, parser TicketParser, deriver OddsDeriver,
	cfg config.DetectionConfig, log logger.LoggerInterface) *Monitor {
	m := &Monitor{
		locator: locator,
		parser:  parser,
		deriver: deriver,
		policy:  cfg.RetryPolicy(),
		logger:  log,
		state:   domain.StateClosed,
		updates: make(chan Update, 16),
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	m.breaker = gobreaker.NewCircuitBreaker[*domtree.Node](gobreaker.Settings{
		Name:    "ticket-detection",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
	})

	window := cfg.ChangeDebounce
	if window <= 0 {
		window = 150 * time.Millisecond
	}
	m.debounce = ratelimit.NewDebouncer(window, m.reparse)
	return m
}

// Updates returns the transition stream. Slow consumers lose the oldest
// updates, never the newest.
func (m *Monitor) Updates() <-chan Update { return m.updates }

// Start binds the monitor to a context used for debounced work. Must be
// called before the first snapshot.
func (m *Monitor) Start(ctx context.Context) {
	m.runCtx = ctx
}

// Stop cancels pending debounced work.
func (m *Monitor) Stop() {
	m.debounce.Stop()
}

// State returns the current lifecycle state.
func (m *Monitor) State() domain.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// HandleSnapshot feeds one page snapshot through the state machine.
func (m *Monitor) HandleSnapshot(ctx context.Context, root *domtree.Node) {
	m.mu.Lock()
	m.snapshot = root
	state := m.state
	lastFP := m.lastFP
	m.mu.Unlock()

	container := m.locateOnce(root)
	if container == nil {
		if state == domain.StateOpen {
			m.transitionClosed(ctx)
		}
		return
	}

	fp := domain.Fingerprint(container)
	switch state {
	case domain.StateClosed:
		m.transitionOpened(ctx, container, fp)
	case domain.StateOpen:
		if fp != lastFP {
			m.debounce.Notify()
		}
	}
}

// AwaitOpen blocks until a snapshot containing a ticket arrives, retrying
// with backoff. Repeated failures trip the breaker and suspend detection
// for the cooldown.
func (m *Monitor) AwaitOpen(ctx context.Context) (*domtree.Node, error) {
	var found *domtree.Node
	err := retry.Do(ctx, m.policy, func(ctx context.Context) error {
		container, err := m.breaker.Execute(func() (*domtree.Node, error) {
			m.mu.Lock()
			root := m.snapshot
			m.mu.Unlock()
			if root == nil {
				return nil, apperror.NotFound(apperror.CodeTicketNotFound, "no snapshot yet")
			}
			if c := m.locateOnce(root); c != nil {
				return c, nil
			}
			return nil, apperror.NotFound(apperror.CodeTicketNotFound, "no ticket container")
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				return apperror.Internal(apperror.CodeDetectionSuspended, "detection suspended", err)
			}
			return err
		}
		found = container
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (m *Monitor) locateOnce(root *domtree.Node) *domtree.Node {
	containers := m.locator.FindTicketContainers(root)
	if len(containers) == 0 {
		return nil
	}
	return containers[0]
}

func (m *Monitor) transitionOpened(ctx context.Context, container *domtree.Node, fp uint64) {
	m.mu.Lock()
	m.state = domain.StateOpen
	m.lastFP = fp
	m.mu.Unlock()

	m.logger.Info(ctx, "ticket opened", "fingerprint", domain.FingerprintString(fp))
	m.parseAndEmit(ctx, domain.EventOpened, container, fp)
}

func (m *Monitor) transitionClosed(ctx context.Context) {
	m.mu.Lock()
	if m.state == domain.StateClosed {
		m.mu.Unlock()
		return
	}
	m.state = domain.StateClosed
	m.lastFP = 0
	m.mu.Unlock()

	m.debounce.Stop()
	m.logger.Info(ctx, "ticket closed")
	m.emit(Update{Event: domain.Event{Type: domain.EventClosed, At: time.Now()}})
}

// reparse runs when the change debounce window goes quiet. The ticket must
// still be open in the latest snapshot, and the result is dropped when the
// content moved on underneath the parse.
func (m *Monitor) reparse() {
	ctx := m.runCtx
	if ctx == nil {
		ctx = context.Background()
	}

	m.mu.Lock()
	root := m.snapshot
	state := m.state
	m.mu.Unlock()
	if root == nil || state != domain.StateOpen {
		return
	}

	container := m.locateOnce(root)
	if container == nil {
		m.transitionClosed(ctx)
		return
	}

	fp := domain.Fingerprint(container)
	data := m.parser.Parse(ctx, container)

	m.mu.Lock()
	moved := m.snapshot != root
	if !moved {
		m.lastFP = fp
	}
	m.mu.Unlock()

	if moved {
		m.logger.Warn(ctx, "parse result discarded, content moved on",
			"error", apperror.New(apperror.CodeStaleResult),
			"fingerprint", domain.FingerprintString(fp))
		m.debounce.Notify()
		return
	}

	m.emitParsed(ctx, domain.EventChanged, data, fp)
}

func (m *Monitor) parseAndEmit(ctx context.Context, event domain.EventType, container *domtree.Node, fp uint64) {
	data := m.parser.Parse(ctx, container)
	m.emitParsed(ctx, event, data, fp)
}

func (m *Monitor) emitParsed(ctx context.Context, event domain.EventType, data *ticketDomain.TicketData, fp uint64) {
	update := Update{
		Event: domain.Event{
			Type:        event,
			Fingerprint: fp,
			TicketID:    data.ID,
			At:          time.Now(),
		},
		Ticket: data,
	}

	if data.Summary.CanProceed && m.deriver != nil {
		result, err := m.deriver.Derive(ctx, data)
		if err != nil {
			m.logger.Warn(ctx, "odds derivation failed", "error", err)
		} else {
			update.Odds = &result
		}
	}
	m.emit(update)
}

func (m *Monitor) emit(update Update) {
	for {
		select {
		case m.updates <- update:
			return
		default:
			// Full buffer: drop the oldest so the newest state wins.
			select {
			case <-m.updates:
			default:
			}
		}
	}
}
