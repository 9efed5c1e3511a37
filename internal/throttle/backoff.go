package throttle

import (
	"math"
	"time"
)

// Retry delays grow from baseRetryDelay by the service's multiplier, capped at
// the service ceiling. Up to maxRetryJitter of random delay is added so that
// units failing together (a transient 5xx burst, say) do not retry in
// lockstep against an already rate-limited API.
const (
	baseRetryDelay = time.Second
	maxRetryJitter = time.Second
)

// backoffDelay computes the retry delay for a zero-indexed attempt count.
// rand must return a float in [0, 1).
func backoffDelay(attempt int, cfg ServiceConfig, base, jitter time.Duration, rand func() float64) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := time.Duration(float64(base) * math.Pow(cfg.BackoffMultiplier, float64(attempt)))
	if delay > cfg.BackoffCeiling || delay <= 0 {
		delay = cfg.BackoffCeiling
	}
	if jitter > 0 && rand != nil {
		delay += time.Duration(rand() * float64(jitter))
	}
	return delay
}
