package throttle

import "time"

// Well-known service names with preconfigured budgets.
const (
	ServiceContent  = "content"
	ServiceResearch = "research"
	ServiceForum    = "forum"
)

// Backoff and retry defaults applied when a ServiceConfig leaves them zero.
const (
	DefaultBackoffMultiplier = 2.0
	DefaultBackoffCeiling    = 30 * time.Second
	DefaultMaxRetries        = 5
)

// ServiceConfig describes the throttling budget for one service.
type ServiceConfig struct {
	// MaxRequests is the number of calls allowed per Window.
	MaxRequests int
	// Window is the sliding interval the request budget applies to.
	Window time.Duration
	// BackoffMultiplier controls exponential retry delay growth.
	BackoffMultiplier float64
	// BackoffCeiling caps the computed retry delay before jitter.
	BackoffCeiling time.Duration
	// MaxRetries bounds how many times a retryable failure is re-attempted
	// after the first execution. Negative disables retries.
	MaxRetries int
	// UnitTimeout, when positive, bounds each execution of a unit of work.
	// Expiry counts as a retryable failure.
	UnitTimeout time.Duration
}

// DefaultConfigs holds the shipped per-service budgets.
var DefaultConfigs = map[string]ServiceConfig{
	ServiceContent:  {MaxRequests: 15, Window: time.Minute},
	ServiceResearch: {MaxRequests: 10, Window: time.Minute},
	ServiceForum:    {MaxRequests: 60, Window: time.Minute},
}

// defaultConfig returns the budget for an unregistered service name.
func defaultConfig(name string) ServiceConfig {
	if cfg, ok := DefaultConfigs[name]; ok {
		return cfg.normalized()
	}
	return ServiceConfig{MaxRequests: 30, Window: time.Minute}.normalized()
}

// normalized fills zero-valued tuning knobs with defaults.
func (c ServiceConfig) normalized() ServiceConfig {
	if c.MaxRequests < 1 {
		c.MaxRequests = 1
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	if c.BackoffMultiplier <= 0 {
		c.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if c.BackoffCeiling <= 0 {
		c.BackoffCeiling = DefaultBackoffCeiling
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return c
}
