package config

import "time"

// Config is the complete application configuration. Values come from the
// packaged defaults, an optional user config file, and DRAFTMILL_* environment
// variables, in that order.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Throttle  ThrottleConfig  `mapstructure:"throttle"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Health    HealthConfig    `mapstructure:"health"`
	Debug     DebugConfig     `mapstructure:"debug"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for libsql/Turso
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// ProvidersConfig holds credentials and endpoints for the external services
// the pipeline calls.
type ProvidersConfig struct {
	Content  ContentProviderConfig  `mapstructure:"content"`
	Research ResearchProviderConfig `mapstructure:"research"`
	Forum    ForumProviderConfig    `mapstructure:"forum"`
}

// ContentProviderConfig configures the generative-content API client.
type ContentProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// ResearchProviderConfig configures the keyword research API client.
type ResearchProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// ForumProviderConfig configures the forum search API client.
type ForumProviderConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
}

// ThrottleServiceConfig is the per-service override for the request scheduler.
// Zero-valued fields keep the shipped defaults.
type ThrottleServiceConfig struct {
	MaxRequests       int           `mapstructure:"max_requests"`
	Window            time.Duration `mapstructure:"window"`
	BackoffMultiplier float64       `mapstructure:"backoff_multiplier"`
	BackoffCeiling    time.Duration `mapstructure:"backoff_ceiling"`
	MaxRetries        int           `mapstructure:"max_retries"`
	UnitTimeout       time.Duration `mapstructure:"unit_timeout"`
}

// ThrottleConfig configures the request scheduler.
type ThrottleConfig struct {
	// Services overrides per-service budgets by service name.
	Services map[string]ThrottleServiceConfig `mapstructure:"services"`

	// PersistWindows saves each service's sliding window to the store on
	// exit and restores it on start, so short-lived CLI runs keep honoring
	// budgets across processes.
	PersistWindows bool `mapstructure:"persist_windows"`
}

// PipelineConfig contains article drafting defaults.
type PipelineConfig struct {
	Author   string `mapstructure:"author"`
	Category string `mapstructure:"category"`
}

// LoggingConfig contains logging configuration
// Supports progressive logging profiles per Fulmen Forge Workhorse Standard:
// - SIMPLE: Console output only, minimal configuration (CLI tools)
// - STRUCTURED: Structured sinks, correlation IDs (API services)
// - ENTERPRISE: Multiple sinks, middleware, throttling, policy enforcement (production)
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED, ENTERPRISE
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	// Enabled controls whether metrics are exposed
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	// Metrics are also available at the main HTTP port in JSON format
	Port int `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	// Enabled controls whether health endpoints are exposed
	Enabled bool `mapstructure:"enabled"`
}

// DebugConfig contains debug and profiling configuration
type DebugConfig struct {
	// Enabled controls whether debug mode is active
	Enabled bool `mapstructure:"enabled"`

	// PprofEnabled controls whether pprof endpoints are exposed
	// WARNING: Only enable in development/staging environments
	PprofEnabled bool `mapstructure:"pprof_enabled"`
}
