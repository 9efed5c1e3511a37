// Package throttle serializes and rate-limits calls to the external services
// the pipeline depends on. Each named service owns a sliding request window,
// a FIFO queue of pending units of work, and a single drain goroutine that
// executes units one at a time, retrying transient failures with jittered
// exponential backoff.
package throttle

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/draftmill/draftmill/internal/metrics"
)

// UnitFunc is a caller-supplied unit of work submitted for throttled
// execution.
type UnitFunc func(ctx context.Context) (any, error)

// Stats is a read-only view of one service's scheduler state.
type Stats struct {
	Service            string        `json:"service"`
	QueueLength        int           `json:"queue_length"`
	RecentRequests     int           `json:"recent_requests"`
	CanProceed         bool          `json:"can_proceed"`
	DelayUntilNextSlot time.Duration `json:"delay_until_next_slot"`
}

// ServiceSnapshot captures a service's in-window call timestamps for
// persistence across process runs.
type ServiceSnapshot struct {
	Service    string
	Timestamps []time.Time
}

// Limiter owns the per-service scheduler state. A single Limiter is shared by
// all callers; services are independent and never share state.
type Limiter struct {
	mu       sync.Mutex
	services map[string]*serviceState

	logger *logging.Logger
	now    func() time.Time
	sleep  func(d time.Duration)
	rand   func() float64

	// Fixed in production; package tests shrink these so retry paths run
	// in milliseconds.
	baseDelay time.Duration
	maxJitter time.Duration
}

type serviceState struct {
	name     string
	cfg      ServiceConfig
	window   requestWindow
	queue    []*unit
	draining bool
}

type unit struct {
	fn       UnitFunc
	ctx      context.Context
	done     chan outcome // buffered; settled exactly once
	attempts int
}

type outcome struct {
	value any
	err   error
}

func (u *unit) settle(value any, err error) {
	u.done <- outcome{value: value, err: err}
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger attaches a logger for retry warnings.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Limiter) { l.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New constructs a Limiter with the shipped per-service defaults registered.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		services:  make(map[string]*serviceState),
		now:       func() time.Time { return time.Now().UTC() },
		sleep:     time.Sleep,
		rand:      rand.Float64,
		baseDelay: baseRetryDelay,
		maxJitter: maxRetryJitter,
	}
	for _, opt := range opts {
		opt(l)
	}
	for name, cfg := range DefaultConfigs {
		l.services[name] = &serviceState{name: name, cfg: cfg.normalized()}
	}
	return l
}

// Configure registers or replaces a service's throttling parameters. It takes
// effect for dispatch decisions made after the call, including units already
// queued.
func (l *Limiter) Configure(service string, cfg ServiceConfig) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.services[service]
	if !ok {
		l.services[service] = &serviceState{name: service, cfg: cfg.normalized()}
		return
	}
	s.cfg = cfg.normalized()
}

// Execute enqueues fn for throttled execution under the named service and
// blocks until it settles: with fn's result, with the final error once
// retries are exhausted or the error is terminal, or with ErrCancelled if the
// queue is cleared first. An unregistered service name is registered with a
// conservative default budget.
//
// If ctx ends while the unit is still pending, Execute returns ctx.Err(); the
// detached unit settles into its own buffer and is discarded.
func (l *Limiter) Execute(ctx context.Context, service string, fn UnitFunc) (any, error) {
	if fn == nil {
		return nil, errors.New("unit of work is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	u := &unit{
		fn:   fn,
		ctx:  ctx,
		done: make(chan outcome, 1),
	}

	l.mu.Lock()
	s := l.serviceLocked(service)
	s.queue = append(s.queue, u)
	metrics.SetThrottleQueueDepth(s.name, int64(len(s.queue)))
	if !s.draining {
		s.draining = true
		go l.drain(s)
	}
	l.mu.Unlock()

	select {
	case out := <-u.done:
		return out.value, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// QueueLength reports how many units are pending (not yet active) for a
// service.
func (l *Limiter) QueueLength(service string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.services[service]
	if !ok {
		return 0
	}
	return len(s.queue)
}

// Stats returns a point-in-time view of a service's scheduler state. It has
// no side effects beyond lazy window pruning.
func (l *Limiter) Stats(service string) Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.services[service]
	if !ok {
		return Stats{Service: service, CanProceed: true}
	}
	now := l.now()
	s.window.prune(now, s.cfg.Window)
	return Stats{
		Service:            service,
		QueueLength:        len(s.queue),
		RecentRequests:     len(s.window.stamps),
		CanProceed:         len(s.window.stamps) < s.cfg.MaxRequests,
		DelayUntilNextSlot: s.window.delayUntilNextSlot(now, s.cfg),
	}
}

// Services lists the registered service names.
func (l *Limiter) Services() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.services))
	for name := range l.services {
		names = append(names, name)
	}
	return names
}

// ClearQueue discards all pending units for a service, settling each with
// ErrCancelled, and reports how many were cleared. A unit already executing
// (or sleeping out a retry delay) is not affected.
func (l *Limiter) ClearQueue(service string) int {
	l.mu.Lock()
	s, ok := l.services[service]
	if !ok {
		l.mu.Unlock()
		return 0
	}
	cleared := s.queue
	s.queue = nil
	metrics.SetThrottleQueueDepth(s.name, 0)
	l.mu.Unlock()

	for _, u := range cleared {
		u.settle(nil, ErrCancelled)
	}
	return len(cleared)
}

// Snapshot captures every service's in-window call timestamps so a subsequent
// process can keep honoring the window.
func (l *Limiter) Snapshot() []ServiceSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	snaps := make([]ServiceSnapshot, 0, len(l.services))
	for name, s := range l.services {
		s.window.prune(now, s.cfg.Window)
		if len(s.window.stamps) == 0 {
			continue
		}
		snaps = append(snaps, ServiceSnapshot{Service: name, Timestamps: s.window.snapshot()})
	}
	return snaps
}

// Restore seeds service windows from persisted snapshots. Stale timestamps
// are pruned on the next dispatch decision.
func (l *Limiter) Restore(snaps []ServiceSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, snap := range snaps {
		if snap.Service == "" || len(snap.Timestamps) == 0 {
			continue
		}
		s := l.serviceLocked(snap.Service)
		s.window.stamps = append(s.window.stamps, snap.Timestamps...)
	}
}

// serviceLocked returns the named service state, registering a default budget
// for unknown names. Callers must hold l.mu.
func (l *Limiter) serviceLocked(name string) *serviceState {
	s, ok := l.services[name]
	if !ok {
		s = &serviceState{name: name, cfg: defaultConfig(name)}
		l.services[name] = s
	}
	return s
}

// drain is the single-flight loop for one service. It runs while the queue is
// non-empty and exits once it drains; Execute starts a fresh loop on the next
// enqueue. Exactly one drain goroutine exists per service at any time, so the
// window and retry bookkeeping need no extra synchronization beyond l.mu.
func (l *Limiter) drain(s *serviceState) {
	for {
		l.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			l.mu.Unlock()
			return
		}

		now := l.now()
		cfg := s.cfg
		if !s.window.canProceed(now, cfg) {
			wait := s.window.delayUntilNextSlot(now, cfg)
			l.mu.Unlock()
			if wait <= 0 {
				wait = time.Millisecond
			}
			metrics.RecordThrottleWait(s.name, wait)
			l.sleep(wait)
			continue
		}

		u := s.queue[0]
		s.queue = s.queue[1:]
		metrics.SetThrottleQueueDepth(s.name, int64(len(s.queue)))
		s.window.record(now)
		l.mu.Unlock()

		value, err := l.invoke(u, cfg)
		if err == nil {
			u.settle(value, nil)
			continue
		}

		if Classify(err) != Retryable {
			u.settle(nil, err)
			continue
		}

		if u.attempts >= cfg.MaxRetries {
			u.settle(nil, &RetryExhaustedError{Service: s.name, Attempts: u.attempts + 1, Err: err})
			continue
		}

		delay := backoffDelay(u.attempts, cfg, l.baseDelay, l.maxJitter, l.rand)
		u.attempts++
		if l.logger != nil {
			l.logger.Warn("Retrying throttled unit",
				zap.String("service", s.name),
				zap.Int("attempt", u.attempts),
				zap.Duration("delay", delay),
				zap.Error(err))
		}
		metrics.RecordThrottleRetry(s.name)

		// The retry sleeps here, then re-enters at the front of the
		// queue ahead of not-yet-attempted units. Eventual success is
		// favored over strict FIFO fairness.
		l.sleep(delay)
		l.mu.Lock()
		s.queue = append([]*unit{u}, s.queue...)
		metrics.SetThrottleQueueDepth(s.name, int64(len(s.queue)))
		l.mu.Unlock()
	}
}

// invoke runs a unit once, applying the per-unit timeout when configured.
func (l *Limiter) invoke(u *unit, cfg ServiceConfig) (any, error) {
	ctx := u.ctx
	if cfg.UnitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.UnitTimeout)
		defer cancel()
	}
	return u.fn(ctx)
}
