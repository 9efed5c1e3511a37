package throttle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackoffGrowsMonotonicallyToCeiling(t *testing.T) {
	cfg := ServiceConfig{
		MaxRequests:       1,
		Window:            time.Minute,
		BackoffMultiplier: 2,
		BackoffCeiling:    30 * time.Second,
	}.normalized()

	var prev time.Duration
	for attempt := 0; attempt < 10; attempt++ {
		delay := backoffDelay(attempt, cfg, baseRetryDelay, 0, nil)
		require.GreaterOrEqual(t, delay, prev, "attempt %d", attempt)
		require.LessOrEqual(t, delay, cfg.BackoffCeiling)
		prev = delay
	}

	require.Equal(t, time.Second, backoffDelay(0, cfg, baseRetryDelay, 0, nil))
	require.Equal(t, 2*time.Second, backoffDelay(1, cfg, baseRetryDelay, 0, nil))
	require.Equal(t, 16*time.Second, backoffDelay(4, cfg, baseRetryDelay, 0, nil))
	// 2^5 = 32s exceeds the 30s ceiling.
	require.Equal(t, 30*time.Second, backoffDelay(5, cfg, baseRetryDelay, 0, nil))
	require.Equal(t, 30*time.Second, backoffDelay(9, cfg, baseRetryDelay, 0, nil))
}

func TestBackoffJitterBounds(t *testing.T) {
	cfg := ServiceConfig{
		MaxRequests:       1,
		Window:            time.Minute,
		BackoffMultiplier: 2,
		BackoffCeiling:    30 * time.Second,
	}.normalized()

	half := func() float64 { return 0.5 }
	delay := backoffDelay(0, cfg, baseRetryDelay, maxRetryJitter, half)
	require.Equal(t, time.Second+500*time.Millisecond, delay)

	// Past the ceiling the delay stays within [ceiling, ceiling+jitter).
	delay = backoffDelay(8, cfg, baseRetryDelay, maxRetryJitter, half)
	require.GreaterOrEqual(t, delay, cfg.BackoffCeiling)
	require.Less(t, delay, cfg.BackoffCeiling+maxRetryJitter)
}

func TestBackoffOverflowFallsBackToCeiling(t *testing.T) {
	cfg := ServiceConfig{
		MaxRequests:       1,
		Window:            time.Minute,
		BackoffMultiplier: 10,
		BackoffCeiling:    45 * time.Second,
	}.normalized()

	delay := backoffDelay(500, cfg, baseRetryDelay, 0, nil)
	require.Equal(t, 45*time.Second, delay)
}
