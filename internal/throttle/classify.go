package throttle

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/draftmill/draftmill/internal/provider"
)

// Class tags an error as worth retrying or terminal.
type Class int

const (
	// Permanent errors propagate to the caller immediately.
	Permanent Class = iota
	// Retryable errors are re-attempted with backoff until the retry
	// budget runs out.
	Retryable
)

// Classify maps an error from a unit of work onto the retry taxonomy. An
// error is retryable when any rule matches: typed provider status codes,
// timeout errors, or conservative message matching. The dispatcher only ever
// consults this function, never raw error shapes.
func Classify(err error) Class {
	if err == nil {
		return Permanent
	}

	// A cancelled caller is gone; retrying on its behalf is pointless.
	if errors.Is(err, context.Canceled) {
		return Permanent
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Retryable
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return Retryable
	}

	var perr *provider.Error
	if errors.As(err, &perr) && perr != nil && perr.StatusCode > 0 {
		if perr.StatusCode == 429 {
			return Retryable
		}
		if perr.StatusCode >= 500 && perr.StatusCode < 600 {
			return Retryable
		}
		// A non-retryable status can still carry a transport-level
		// message; the heuristics below get the final word.
	}

	msg := strings.ToLower(err.Error())
	for _, needle := range []string{"network", "timeout", "rate limit"} {
		if strings.Contains(msg, needle) {
			return Retryable
		}
	}

	return Permanent
}
