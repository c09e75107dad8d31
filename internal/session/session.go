// Package session is the composition root: it assembles the parsing
// pipeline, lifecycle monitor and snapshot bridge from configuration and
// owns their lifetimes.
package session

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	feesApp "github.com/ORDEP81/ticketsight/business/fees/app"
	lifecycleApp "github.com/ORDEP81/ticketsight/business/lifecycle/app"
	"github.com/ORDEP81/ticketsight/business/lifecycle/infra/bridge"
	oddsApp "github.com/ORDEP81/ticketsight/business/odds/app"
	ticketApp "github.com/ORDEP81/ticketsight/business/ticket/app"
	ticketDomain "github.com/ORDEP81/ticketsight/business/ticket/domain"
	"github.com/ORDEP81/ticketsight/business/ticket/infra/domparse"
	"github.com/ORDEP81/ticketsight/internal/apm"
	"github.com/ORDEP81/ticketsight/internal/config"
	"github.com/ORDEP81/ticketsight/internal/domtree"
	"github.com/ORDEP81/ticketsight/internal/logger"
	"github.com/ORDEP81/ticketsight/internal/metrics"
)

// Session wires and runs the pipeline. Build one per process.
type Session struct {
	cfg    *config.Config
	logger logger.LoggerInterface

	parsers      *domparse.Parsers
	orchestrator *ticketApp.Orchestrator
	calculator   *oddsApp.Calculator
	formatter    *oddsApp.Formatter
	monitor      *lifecycleApp.Monitor
	bridge       *bridge.Server

	instruments *metrics.Instruments
	tracer      apm.Tracer

	updates chan lifecycleApp.Update
}

// New assembles a Session from configuration.
func New(cfg *config.Config, log logger.LoggerInterface, instruments *metrics.Instruments) *Session {
	parsers := domparse.New(domparse.Options{
		QuantityMinWeakSignals: cfg.Heuristics.QuantityMinWeakSignals,
		MinContainerScore:      cfg.Detection.MinContainerScore,
	}, log)

	estimator := feesApp.NewEstimator(cfg.Settings.FallbackEstimateEnabled, log)
	orchestrator := ticketApp.NewOrchestrator(parsers, estimator, parsers, cfg.Recovery, log)

	detector := feesApp.NewFallbackDetector(feesApp.Weights{
		Roundness:             cfg.Heuristics.FeeRoundnessWeight,
		DefaultValue:          cfg.Heuristics.DefaultValueWeight,
		FormulaContext:        cfg.Heuristics.FormulaContextWeight,
		TextPatternConfidence: cfg.Heuristics.TextPatternConfidence,
		Threshold:             cfg.Heuristics.FallbackThreshold,
	})
	calculator := oddsApp.NewCalculator(detector, log)

	s := &Session{
		cfg:          cfg,
		logger:       log,
		parsers:      parsers,
		orchestrator: orchestrator,
		calculator:   calculator,
		formatter:    oddsApp.NewFormatter(cfg.Settings.DisplayMode),
		instruments:  instruments,
		tracer:       apm.NewTracer("ticketsight/session"),
		updates:      make(chan lifecycleApp.Update, 16),
	}

	s.monitor = lifecycleApp.NewMonitor(parsers, s, calculator, cfg.Detection, log)

	if cfg.Bridge.Enabled {
		s.bridge = bridge.NewServer(cfg.Bridge, s, log)
	}
	return s
}

// Parse implements lifecycleApp.TicketParser with tracing and metrics
// around the orchestrator.
func (s *Session) Parse(ctx context.Context, root *domtree.Node) *ticketDomain.TicketData {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "ticket.parse")
	defer span.End()

	start := time.Now()
	data := s.orchestrator.Parse(ctx, root)
	span.SetAttributes(
		attribute.Bool("ticket.can_proceed", data.Summary.CanProceed),
		attribute.Int("ticket.recovery_steps", len(data.RecoveryApplied)),
		attribute.Int("ticket.warnings", data.Summary.WarningCount),
	)
	s.instruments.RecordParse(ctx, data.Summary.CanProceed, time.Since(start))
	for _, step := range data.RecoveryApplied {
		s.instruments.RecordRecoveryStep(ctx, step)
	}
	return data
}

// HandleSnapshot implements bridge.SnapshotSink, feeding the monitor.
func (s *Session) HandleSnapshot(ctx context.Context, root *domtree.Node) {
	s.instruments.RecordSnapshotFrame(ctx)
	s.monitor.HandleSnapshot(ctx, root)
}

// Start launches the monitor pump and, when enabled, the bridge.
func (s *Session) Start(ctx context.Context) error {
	s.monitor.Start(ctx)
	go s.pump(ctx)
	go s.awaitFirstOpen(ctx)

	if s.bridge != nil {
		if err := s.bridge.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// awaitFirstOpen drives the initial detection with the configured retry
// policy and breaker. A page that never renders a ticket produces one
// non-fatal notice; the passive snapshot path keeps running either way.
func (s *Session) awaitFirstOpen(ctx context.Context) {
	if _, err := s.monitor.AwaitOpen(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn(ctx, "no ticket detected within retry budget", "error", err)
		return
	}
	s.logger.Debug(ctx, "ticket container detected")
}

// Stop shuts the bridge and pending monitor work down.
func (s *Session) Stop(ctx context.Context) {
	s.monitor.Stop()
	if s.bridge != nil {
		if err := s.bridge.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "bridge shutdown failed", "error", err)
		}
	}
}

// Updates streams lifecycle updates to the UI layer.
func (s *Session) Updates() <-chan lifecycleApp.Update { return s.updates }

// Monitor exposes the lifecycle state machine.
func (s *Session) Monitor() *lifecycleApp.Monitor { return s.monitor }

// Formatter returns the configured odds renderer.
func (s *Session) Formatter() *oddsApp.Formatter { return s.formatter }

// BridgeAddr returns the bridge listen address, empty when disabled.
func (s *Session) BridgeAddr() string {
	if s.bridge == nil {
		return ""
	}
	return s.bridge.Addr()
}

// ParseSnapshot runs one snapshot through the full pipeline and returns
// the rendered odds line. Used by the one-shot CLI path.
func (s *Session) ParseSnapshot(ctx context.Context, root *domtree.Node) (*ticketDomain.TicketData, string) {
	containers := s.parsers.FindTicketContainers(root)
	target := root
	if len(containers) > 0 {
		target = containers[0]
	}

	data := s.Parse(ctx, target)
	if !data.Summary.CanProceed {
		return data, oddsApp.Unavailable
	}

	result, err := s.calculator.Derive(ctx, data)
	if err != nil {
		s.logger.Warn(ctx, "odds derivation failed", "error", err)
		return data, oddsApp.Unavailable
	}
	s.instruments.RecordOddsDerived(ctx, string(result.FeeSource))
	return data, s.formatter.Format(data, &result)
}

// pump forwards monitor updates, recording lifecycle metrics on the way.
func (s *Session) pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-s.monitor.Updates():
			s.instruments.RecordLifecycleEvent(ctx, string(u.Event.Type))
			if u.Odds != nil {
				s.instruments.RecordOddsDerived(ctx, string(u.Odds.FeeSource))
			}
			select {
			case s.updates <- u:
			case <-ctx.Done():
				return
			default:
				// UI not draining; drop rather than stall the monitor.
			}
		}
	}
}
