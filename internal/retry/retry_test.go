package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ORDEP81/ticketsight/internal/apperror"
)

func TestPolicy_Backoff(t *testing.T) {
	p := Policy{
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 250 * time.Millisecond},
		{1, 500 * time.Millisecond},
		{2, 1 * time.Second},
		{3, 2 * time.Second},
		{4, 2 * time.Second}, // capped
		{10, 2 * time.Second},
	}

	for _, tt := range tests {
		if got := p.Backoff(tt.attempt); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	policy := Policy{
		MaxAttempts:    4,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}

	calls := 0
	err := Do(context.Background(), policy, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	policy := Policy{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
	}

	calls := 0
	err := Do(context.Background(), policy, func(ctx context.Context) error {
		calls++
		return errors.New("always failing")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if apperror.GetCode(err) != apperror.CodeDetectionTimeout {
		t.Errorf("expected DETECTION_TIMEOUT, got %s", apperror.GetCode(err))
	}
}

func TestDo_OverallTimeout(t *testing.T) {
	policy := Policy{
		MaxAttempts:    100,
		InitialBackoff: 20 * time.Millisecond,
		MaxBackoff:     20 * time.Millisecond,
		Timeout:        50 * time.Millisecond,
	}

	start := time.Now()
	err := Do(context.Background(), policy, func(ctx context.Context) error {
		return errors.New("always failing")
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("timeout not honored, took %v", elapsed)
	}
	if apperror.GetCode(err) != apperror.CodeDetectionTimeout {
		t.Errorf("expected DETECTION_TIMEOUT, got %s", apperror.GetCode(err))
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	policy := Policy{
		MaxAttempts:    10,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     50 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, policy, func(ctx context.Context) error {
		calls++
		return errors.New("fail")
	})
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if calls > 1 {
		t.Errorf("expected at most 1 call after cancel, got %d", calls)
	}
}
