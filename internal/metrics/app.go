package metrics

import (
	"time"

	"github.com/draftmill/draftmill/internal/observability"
)

// Application-level metrics following Prometheus conventions
var (
	// Pipeline metrics
	ArticlesDraftedTotal  = "app_articles_drafted_total"
	ProviderCallsTotal    = "app_provider_calls_total"
	ResearchFallbackTotal = "app_research_fallback_total"

	// Throttle scheduler metrics
	ThrottleRetriesTotal = "app_throttle_retries_total"
	ThrottleWaitMillis   = "app_throttle_wait_ms"
	ThrottleQueueDepth   = "app_throttle_queue_depth"

	// Health check metrics
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	// Server lifecycle metrics
	ServerStartTime = "app_server_start_time_seconds"
	ServerUptime    = "app_server_uptime_seconds"
)

// RecordArticleDrafted records a completed article draft with status
func RecordArticleDrafted(category string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ArticlesDraftedTotal,
			1,
			map[string]string{
				"category": category,
				"status":   status,
			},
		)
	}
}

// RecordProviderCall records one issued call to an external service
func RecordProviderCall(service string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ProviderCallsTotal,
			1,
			map[string]string{
				"service": service,
				"status":  status,
			},
		)
	}
}

// RecordResearchFallback records a draft that fell back to default keyword
// data after research calls failed terminally
func RecordResearchFallback() {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ResearchFallbackTotal,
			1,
			nil,
		)
	}
}

// RecordThrottleRetry records a scheduled retry of a throttled unit
func RecordThrottleRetry(service string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ThrottleRetriesTotal,
			1,
			map[string]string{
				"service": service,
			},
		)
	}
}

// RecordThrottleWait records time spent waiting for a rate-limit window slot
func RecordThrottleWait(service string, wait time.Duration) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Histogram(
			ThrottleWaitMillis,
			wait,
			map[string]string{
				"service": service,
			},
		)
	}
}

// SetThrottleQueueDepth sets the current pending-queue depth for a service
func SetThrottleQueueDepth(service string, depth int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ThrottleQueueDepth,
			float64(depth),
			map[string]string{
				"service": service,
			},
		)
	}
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}

// SetServerUptime records the server uptime in seconds
func SetServerUptime(seconds int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerUptime,
			float64(seconds),
			nil,
		)
	}
}
