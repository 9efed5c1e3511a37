package throttle

import "time"

// requestWindow tracks the timestamps of recently issued calls for one
// service. Entries older than the configured window are pruned lazily on each
// check. Mutation happens only under the owning Limiter's lock.
type requestWindow struct {
	stamps []time.Time
}

// prune drops timestamps that fell out of the sliding window.
func (w *requestWindow) prune(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}
}

// canProceed reports whether a new call fits in the window right now.
func (w *requestWindow) canProceed(now time.Time, cfg ServiceConfig) bool {
	w.prune(now, cfg.Window)
	return len(w.stamps) < cfg.MaxRequests
}

// record appends a timestamp for an actually-issued call. Callers must invoke
// it exactly once per issued call, never per queued attempt.
func (w *requestWindow) record(now time.Time) {
	w.stamps = append(w.stamps, now)
}

// delayUntilNextSlot returns how long until the oldest in-window call ages
// out. Zero when the window has a free slot.
func (w *requestWindow) delayUntilNextSlot(now time.Time, cfg ServiceConfig) time.Duration {
	w.prune(now, cfg.Window)
	if len(w.stamps) < cfg.MaxRequests {
		return 0
	}
	wait := cfg.Window - now.Sub(w.stamps[0])
	if wait < 0 {
		wait = 0
	}
	return wait
}

// snapshot copies the in-window timestamps.
func (w *requestWindow) snapshot() []time.Time {
	out := make([]time.Time, len(w.stamps))
	copy(out, w.stamps)
	return out
}
