package core

import "time"

// RateLimitState is the persisted form of one service's sliding request
// window. Timestamps are the in-window call times at save; stale entries are
// pruned by the scheduler after restore.
type RateLimitState struct {
	Service    string      `json:"service"`
	Timestamps []time.Time `json:"timestamps"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
