package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Settings.DisplayMode != DisplayAfterFeeAmerican {
		t.Errorf("unexpected default display mode: %s", cfg.Settings.DisplayMode)
	}
	if !cfg.Settings.FallbackEstimateEnabled {
		t.Error("fallback estimation should default to enabled")
	}
	if cfg.Detection.MaxRetries != 3 {
		t.Errorf("expected 3 detection retries, got %d", cfg.Detection.MaxRetries)
	}
	if cfg.Detection.Timeout != 5*time.Second {
		t.Errorf("expected 5s detection timeout, got %v", cfg.Detection.Timeout)
	}
	if cfg.Recovery.RetryDelay != 500*time.Millisecond {
		t.Errorf("expected 500ms recovery delay, got %v", cfg.Recovery.RetryDelay)
	}
	if cfg.Heuristics.QuantityMinWeakSignals != 2 {
		t.Errorf("expected 2 weak signals, got %d", cfg.Heuristics.QuantityMinWeakSignals)
	}
}

func TestLoad_RetryPolicy(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	policy := cfg.Detection.RetryPolicy()
	if policy.MaxAttempts != 4 {
		t.Errorf("expected 4 attempts (1 + 3 retries), got %d", policy.MaxAttempts)
	}
	if policy.InitialBackoff != 250*time.Millisecond {
		t.Errorf("expected 250ms initial backoff, got %v", policy.InitialBackoff)
	}
	if policy.MaxBackoff != 2*time.Second {
		t.Errorf("expected 2s max backoff, got %v", policy.MaxBackoff)
	}
}

func TestValidate_RejectsBadDisplayMode(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg.Settings.DisplayMode = "fractional"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown display mode")
	}
}

func TestValidate_RejectsBadBackoffRange(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg.Detection.MaxBackoff = cfg.Detection.InitialBackoff / 2
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for inverted backoff range")
	}
}
