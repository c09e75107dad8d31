// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ORDEP81/ticketsight/internal/retry"
)

// Display modes for the derived odds value.
const (
	DisplayPercent          = "percent"
	DisplayRawAmerican      = "rawAmerican"
	DisplayAfterFeeAmerican = "afterFeeAmerican"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Settings   SettingsConfig   `mapstructure:"settings"`
	Detection  DetectionConfig  `mapstructure:"detection"`
	Recovery   RecoveryConfig   `mapstructure:"recovery"`
	Heuristics HeuristicsConfig `mapstructure:"heuristics"`
	Bridge     BridgeConfig     `mapstructure:"bridge"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	TUIMode     bool   `mapstructure:"-"` // Set at runtime, not from config file
}

// SettingsConfig mirrors the user-facing settings object supplied by the
// settings/storage layer.
type SettingsConfig struct {
	DisplayMode             string `mapstructure:"display_mode"`
	FallbackEstimateEnabled bool   `mapstructure:"fallback_estimate_enabled"`
}

// DetectionConfig holds ticket-detection retry settings.
type DetectionConfig struct {
	MaxRetries       int           `mapstructure:"max_retries"`
	InitialBackoff   time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff       time.Duration `mapstructure:"max_backoff"`
	Timeout          time.Duration `mapstructure:"timeout"`
	BreakerFailures  uint32        `mapstructure:"breaker_failures"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
	ChangeDebounce   time.Duration `mapstructure:"change_debounce"`
	MinContainerScore int          `mapstructure:"min_container_score"`
}

// RetryPolicy converts the detection settings into a retry.Policy.
func (c *DetectionConfig) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:    c.MaxRetries + 1,
		InitialBackoff: c.InitialBackoff,
		MaxBackoff:     c.MaxBackoff,
		Timeout:        c.Timeout,
	}
}

// RecoveryConfig holds settings for the incomplete-parse recovery procedure.
type RecoveryConfig struct {
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
	ParentLevels int           `mapstructure:"parent_levels"`
}

// HeuristicsConfig carries the tunable scoring thresholds used by the field
// parsers and the fallback-usage detector. These are calibration knobs, not
// derived constants.
type HeuristicsConfig struct {
	QuantityMinWeakSignals int     `mapstructure:"quantity_min_weak_signals"`
	FeeRoundnessWeight     float64 `mapstructure:"fee_roundness_weight"`
	DefaultValueWeight     float64 `mapstructure:"default_value_weight"`
	FormulaContextWeight   float64 `mapstructure:"formula_context_weight"`
	TextPatternConfidence  float64 `mapstructure:"text_pattern_confidence"`
	FallbackThreshold      float64 `mapstructure:"fallback_threshold"`
}

// BridgeConfig holds the local snapshot bridge settings.
type BridgeConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	ListenAddr    string  `mapstructure:"listen_addr"`
	MaxFramesPerSec float64 `mapstructure:"max_frames_per_sec"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	TraceProvider  string `mapstructure:"trace_provider"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("TS")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Config file is optional, env vars and defaults are enough.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "TS_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "TS_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "TS_LOG_LEVEL", "LOG_LEVEL")

	// Settings
	v.BindEnv("settings.display_mode", "TS_DISPLAY_MODE")
	v.BindEnv("settings.fallback_estimate_enabled", "TS_FALLBACK_ESTIMATE")

	// Detection
	v.BindEnv("detection.max_retries", "TS_DETECTION_MAX_RETRIES")
	v.BindEnv("detection.timeout", "TS_DETECTION_TIMEOUT")

	// Bridge
	v.BindEnv("bridge.enabled", "TS_BRIDGE_ENABLED")
	v.BindEnv("bridge.listen_addr", "TS_BRIDGE_ADDR")

	// Telemetry
	v.BindEnv("telemetry.enabled", "TS_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "TS_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "TS_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "ticketsight")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Settings defaults
	v.SetDefault("settings.display_mode", DisplayAfterFeeAmerican)
	v.SetDefault("settings.fallback_estimate_enabled", true)

	// Detection defaults
	v.SetDefault("detection.max_retries", 3)
	v.SetDefault("detection.initial_backoff", "250ms")
	v.SetDefault("detection.max_backoff", "2s")
	v.SetDefault("detection.timeout", "5s")
	v.SetDefault("detection.breaker_failures", 5)
	v.SetDefault("detection.breaker_cooldown", "30s")
	v.SetDefault("detection.change_debounce", "150ms")
	v.SetDefault("detection.min_container_score", 6)

	// Recovery defaults
	v.SetDefault("recovery.retry_delay", "500ms")
	v.SetDefault("recovery.parent_levels", 3)

	// Heuristics defaults. Magic thresholds carried over from field
	// calibration; tune against fixtures, not first principles.
	v.SetDefault("heuristics.quantity_min_weak_signals", 2)
	v.SetDefault("heuristics.fee_roundness_weight", 0.2)
	v.SetDefault("heuristics.default_value_weight", 0.15)
	v.SetDefault("heuristics.formula_context_weight", 0.25)
	v.SetDefault("heuristics.text_pattern_confidence", 0.4)
	v.SetDefault("heuristics.fallback_threshold", 0.5)

	// Bridge defaults
	v.SetDefault("bridge.enabled", false)
	v.SetDefault("bridge.listen_addr", "127.0.0.1:8971")
	v.SetDefault("bridge.max_frames_per_sec", 20)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "ticketsight")
	v.SetDefault("telemetry.trace_provider", "CONSOLE_PROVIDER")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Settings.DisplayMode {
	case DisplayPercent, DisplayRawAmerican, DisplayAfterFeeAmerican:
	default:
		return fmt.Errorf("invalid settings.display_mode: %s", c.Settings.DisplayMode)
	}
	if c.Detection.MaxRetries < 0 {
		return fmt.Errorf("detection.max_retries must be >= 0")
	}
	if c.Detection.InitialBackoff <= 0 || c.Detection.MaxBackoff < c.Detection.InitialBackoff {
		return fmt.Errorf("detection backoff range is invalid")
	}
	if c.Recovery.ParentLevels < 0 {
		return fmt.Errorf("recovery.parent_levels must be >= 0")
	}
	if c.Heuristics.FallbackThreshold <= 0 || c.Heuristics.FallbackThreshold > 1 {
		return fmt.Errorf("heuristics.fallback_threshold must be in (0,1]")
	}
	if c.Bridge.Enabled && c.Bridge.ListenAddr == "" {
		return fmt.Errorf("bridge.listen_addr is required when bridge is enabled")
	}
	return nil
}
