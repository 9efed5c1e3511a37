package cmd

import (
	"context"

	"github.com/fulmenhq/gofulmen/logging"

	"github.com/draftmill/draftmill/internal/config"
	"github.com/draftmill/draftmill/internal/core"
	"github.com/draftmill/draftmill/internal/core/store"
	"github.com/draftmill/draftmill/internal/throttle"
)

// buildLimiter constructs the shared request scheduler from config. When
// window persistence is enabled, previously saved sliding windows are restored
// so a fresh process keeps honoring each service's budget. The returned
// persist func writes the current windows back to the store; call it before
// the process exits.
func buildLimiter(ctx context.Context, cfg *config.Config, db *store.Store, logger *logging.Logger) (*throttle.Limiter, func(context.Context) error, error) {
	opts := []throttle.Option{}
	if logger != nil {
		opts = append(opts, throttle.WithLogger(logger))
	}
	lim := throttle.New(opts...)

	for name, sc := range cfg.Throttle.Services {
		lim.Configure(name, throttle.ServiceConfig{
			MaxRequests:       sc.MaxRequests,
			Window:            sc.Window,
			BackoffMultiplier: sc.BackoffMultiplier,
			BackoffCeiling:    sc.BackoffCeiling,
			MaxRetries:        sc.MaxRetries,
			UnitTimeout:       sc.UnitTimeout,
		})
	}

	persistEnabled := cfg.Throttle.PersistWindows && db != nil

	if persistEnabled {
		states, err := db.ListRateLimits(ctx, store.RateLimitQuery{All: true})
		if err != nil {
			return nil, nil, err
		}
		snaps := make([]throttle.ServiceSnapshot, 0, len(states))
		for _, state := range states {
			snaps = append(snaps, throttle.ServiceSnapshot{
				Service:    state.Service,
				Timestamps: state.Timestamps,
			})
		}
		lim.Restore(snaps)
	}

	persist := func(ctx context.Context) error {
		if !persistEnabled {
			return nil
		}
		snaps := lim.Snapshot()
		states := make([]core.RateLimitState, 0, len(snaps))
		for _, snap := range snaps {
			states = append(states, core.RateLimitState{
				Service:    snap.Service,
				Timestamps: snap.Timestamps,
			})
		}
		return db.SaveRateLimits(ctx, states)
	}

	return lim, persist, nil
}
