package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments is the fixed instrument set recorded by the pipeline. A nil
// *Instruments is valid and records nothing, so callers never branch.
type Instruments struct {
	parseAttempts   metric.Int64Counter
	parseDuration   metric.Float64Histogram
	recoverySteps   metric.Int64Counter
	lifecycleEvents metric.Int64Counter
	snapshotFrames  metric.Int64Counter
	oddsDerived     metric.Int64Counter
}

// NewInstruments registers the instrument set on the given meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	var (
		ins Instruments
		err error
	)

	if ins.parseAttempts, err = meter.Int64Counter("ticket_parse_attempts_total",
		metric.WithDescription("Parse attempts by outcome")); err != nil {
		return nil, err
	}
	if ins.parseDuration, err = meter.Float64Histogram("ticket_parse_duration_seconds",
		metric.WithDescription("Wall time of one parse attempt")); err != nil {
		return nil, err
	}
	if ins.recoverySteps, err = meter.Int64Counter("ticket_recovery_steps_total",
		metric.WithDescription("Recovery steps applied, by step")); err != nil {
		return nil, err
	}
	if ins.lifecycleEvents, err = meter.Int64Counter("ticket_lifecycle_events_total",
		metric.WithDescription("Lifecycle transitions, by event")); err != nil {
		return nil, err
	}
	if ins.snapshotFrames, err = meter.Int64Counter("bridge_snapshot_frames_total",
		metric.WithDescription("Snapshot frames received on the bridge")); err != nil {
		return nil, err
	}
	if ins.oddsDerived, err = meter.Int64Counter("odds_derived_total",
		metric.WithDescription("After-fee odds derivations, by fee source")); err != nil {
		return nil, err
	}
	return &ins, nil
}

// RecordParse records one parse attempt and its duration.
func (i *Instruments) RecordParse(ctx context.Context, canProceed bool, elapsed time.Duration) {
	if i == nil {
		return
	}
	outcome := "incomplete"
	if canProceed {
		outcome = "ok"
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	i.parseAttempts.Add(ctx, 1, attrs)
	i.parseDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordRecoveryStep counts a recovery step by name.
func (i *Instruments) RecordRecoveryStep(ctx context.Context, step string) {
	if i == nil {
		return
	}
	i.recoverySteps.Add(ctx, 1, metric.WithAttributes(attribute.String("step", step)))
}

// RecordLifecycleEvent counts a transition by event type.
func (i *Instruments) RecordLifecycleEvent(ctx context.Context, event string) {
	if i == nil {
		return
	}
	i.lifecycleEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
}

// RecordSnapshotFrame counts one received bridge frame.
func (i *Instruments) RecordSnapshotFrame(ctx context.Context) {
	if i == nil {
		return
	}
	i.snapshotFrames.Add(ctx, 1)
}

// RecordOddsDerived counts one derivation by fee source.
func (i *Instruments) RecordOddsDerived(ctx context.Context, feeSource string) {
	if i == nil {
		return
	}
	i.oddsDerived.Add(ctx, 1, metric.WithAttributes(attribute.String("source", feeSource)))
}
