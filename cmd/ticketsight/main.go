// Package main is the entry point for the ticketsight monitor.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"

	lifecycleDomain "github.com/ORDEP81/ticketsight/business/lifecycle/domain"
	"github.com/ORDEP81/ticketsight/internal/apm"
	"github.com/ORDEP81/ticketsight/internal/config"
	"github.com/ORDEP81/ticketsight/internal/domtree"
	"github.com/ORDEP81/ticketsight/internal/health"
	"github.com/ORDEP81/ticketsight/internal/logger"
	"github.com/ORDEP81/ticketsight/internal/metrics"
	"github.com/ORDEP81/ticketsight/internal/session"
	"github.com/ORDEP81/ticketsight/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	snapshotPath := flag.String("snapshot", "", "Parse a single snapshot file and exit")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ticketsight %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	tuiMode := !*cliMode && *snapshotPath == ""

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, *snapshotPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, snapshotPath string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.App.TUIMode = tuiMode

	logLevel := logger.ParseLevel(cfg.App.LogLevel)

	var log *logger.Logger
	if tuiMode {
		// The TUI owns the terminal; mirror warnings into its feed.
		events := &logger.Events{
			Warn: func(_ context.Context, msg string, _ ...any) {
				ui.Send(ui.LogMsg{Level: "warn", Message: msg})
			},
			Error: func(_ context.Context, msg string, _ ...any) {
				ui.Send(ui.LogMsg{Level: "error", Message: msg})
			},
		}
		log = logger.New(io.Discard, logLevel, cfg.App.Name, events)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting ticketsight",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	var instruments *metrics.Instruments
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		traceProvider = apm.NewTraceProvider(log,
			apm.WithServiceName(cfg.Telemetry.ServiceName),
			apm.WithProvider(apm.Provider(cfg.Telemetry.TraceProvider),
				cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.OTLPHeaders, log))

		provider, err := metrics.NewMetricProvider(ctx,
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.NewPrometheusConfig()),
		)
		if err != nil {
			return fmt.Errorf("failed to init metrics: %w", err)
		}
		defer provider.Shutdown(ctx)

		instruments, err = metrics.NewInstruments(otel.Meter("ticketsight"))
		if err != nil {
			return fmt.Errorf("failed to register instruments: %w", err)
		}

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go func() {
			if err := metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port))); err != nil {
				log.Warn(ctx, "metrics server stopped", "error", err)
			}
		}()
		log.Info(ctx, "telemetry initialized",
			"traces", cfg.Telemetry.TraceProvider, "prometheusPort", port)
	}
	defer func() {
		if traceProvider != nil {
			_ = traceProvider.Stop()
		}
	}()

	sess := session.New(cfg, log, instruments)

	if snapshotPath != "" {
		return runSnapshot(ctx, sess, snapshotPath)
	}

	healthServer := health.NewServer(8081, version)
	healthServer.RegisterCheck("ticket", func(context.Context) (bool, string) {
		return true, string(sess.Monitor().State())
	})
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	}
	defer healthServer.Stop(ctx)

	if err := sess.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.Stop(context.Background())

	if tuiMode {
		return runTUI(ctx, sess)
	}
	return runCLI(ctx, sess, log)
}

// runSnapshot parses one HTML snapshot file and prints the result.
func runSnapshot(ctx context.Context, sess *session.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	root, err := domtree.ParseHTML(f)
	if err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	data, oddsLine := sess.ParseSnapshot(ctx, root)

	fmt.Printf("side:      %s\n", valueOr(string(data.Side), "not found"))
	if data.HasPrice() {
		fmt.Printf("price:     $%s\n", data.Price.Decimal.StringFixed(2))
	} else {
		fmt.Println("price:     not found")
	}
	if data.HasQuantity() {
		fmt.Printf("contracts: %d\n", data.Quantity)
	} else {
		fmt.Println("contracts: not found")
	}
	if fee := data.Fee; fee != nil && fee.TotalFee.Valid {
		suffix := ""
		if fee.Estimated() {
			suffix = " (estimated)"
		}
		fmt.Printf("fee:       $%s%s\n", fee.TotalFee.Decimal.StringFixed(2), suffix)
	}
	fmt.Printf("odds:      %s\n", oddsLine)

	for _, w := range data.Warnings {
		fmt.Printf("warning:   %s\n", w)
	}
	for _, e := range data.Errors {
		fmt.Printf("error:     %s\n", e)
	}
	if !data.Summary.CanProceed {
		return fmt.Errorf("ticket incomplete: %d errors", data.Summary.CriticalErrorCount)
	}
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func runCLI(ctx context.Context, sess *session.Session, log *logger.Logger) error {
	log.Info(ctx, "session started, watching for ticket snapshots",
		"bridge", sess.BridgeAddr())

	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "shutting down")
			return nil
		case u := <-sess.Updates():
			if u.Event.Type == lifecycleDomain.EventClosed {
				log.Info(ctx, "ticket closed")
				continue
			}
			log.Info(ctx, "ticket update",
				"event", string(u.Event.Type),
				"odds", sess.Formatter().Format(u.Ticket, u.Odds),
				"canProceed", u.Ticket.Summary.CanProceed,
				"warnings", u.Ticket.Summary.WarningCount)
		}
	}
}

func runTUI(ctx context.Context, sess *session.Session) error {
	var paused atomic.Bool
	ui.OnPauseChanged = func(p bool) { paused.Store(p) }

	p := tea.NewProgram(ui.New(sess.BridgeAddr()), tea.WithAltScreen())
	ui.Program = p

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case u := <-sess.Updates():
				if paused.Load() {
					continue
				}
				if u.Event.Type == lifecycleDomain.EventClosed {
					ui.Send(ui.ClosedMsg{At: u.Event.At})
					continue
				}
				ui.Send(ui.TicketMsg{
					Event:    string(u.Event.Type),
					Ticket:   u.Ticket,
					Odds:     u.Odds,
					OddsLine: sess.Formatter().Format(u.Ticket, u.Odds),
					At:       u.Event.At,
				})
			}
		}
	}()

	_, err := p.Run()
	return err
}
