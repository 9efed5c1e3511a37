package throttle

import (
	"errors"
	"fmt"
)

// ErrCancelled settles units discarded by ClearQueue before they ran.
var ErrCancelled = errors.New("throttled unit cancelled: queue cleared")

// RetryExhaustedError wraps the last transient failure of a unit whose retry
// budget ran out.
type RetryExhaustedError struct {
	Service  string
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	if e == nil {
		return "retries exhausted"
	}
	return fmt.Sprintf("%s: retries exhausted after %d attempts: %v", e.Service, e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
