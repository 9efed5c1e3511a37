//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/draftmill/draftmill/internal/core"
)

func TestSaveAndGetRateLimit(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	state := core.RateLimitState{
		Service:    "content",
		Timestamps: []time.Time{now.Add(-30 * time.Second), now.Add(-10 * time.Second)},
		UpdatedAt:  now,
	}
	require.NoError(t, store.SaveRateLimit(ctx, state))

	fetched, err := store.GetRateLimit(ctx, "content")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, "content", fetched.Service)
	require.Equal(t, state.Timestamps, fetched.Timestamps)
	require.Equal(t, now, fetched.UpdatedAt)
}

func TestGetRateLimitMissingReturnsNil(t *testing.T) {
	store := newMemoryStore(t)

	fetched, err := store.GetRateLimit(context.Background(), "unknown")
	require.NoError(t, err)
	require.Nil(t, fetched)
}

func TestSaveRateLimitOverwrites(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRateLimit(ctx, core.RateLimitState{
		Service:    "research",
		Timestamps: []time.Time{now.Add(-time.Minute)},
		UpdatedAt:  now.Add(-time.Minute),
	}))
	require.NoError(t, store.SaveRateLimit(ctx, core.RateLimitState{
		Service:    "research",
		Timestamps: []time.Time{now},
		UpdatedAt:  now,
	}))

	fetched, err := store.GetRateLimit(ctx, "research")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, []time.Time{now}, fetched.Timestamps)
}

func TestListAndResetRateLimits(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	for _, service := range []string{"content", "research", "forum"} {
		require.NoError(t, store.SaveRateLimit(ctx, core.RateLimitState{
			Service:    service,
			Timestamps: []time.Time{now},
			UpdatedAt:  now,
		}))
	}

	all, err := store.ListRateLimits(ctx, RateLimitQuery{All: true})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "content", all[0].Service)

	byPrefix, err := store.ListRateLimits(ctx, RateLimitQuery{Prefix: "re"})
	require.NoError(t, err)
	require.Len(t, byPrefix, 1)
	require.Equal(t, "research", byPrefix[0].Service)

	removed, err := store.ResetRateLimits(ctx, RateLimitQuery{Service: "forum"})
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	remaining, err := store.ListRateLimits(ctx, RateLimitQuery{All: true})
	require.NoError(t, err)
	require.Len(t, remaining, 2)
}

func TestRateLimitQueryValidate(t *testing.T) {
	require.Error(t, RateLimitQuery{}.Validate())
	require.NoError(t, RateLimitQuery{All: true}.Validate())
	require.NoError(t, RateLimitQuery{Service: "content"}.Validate())
	require.NoError(t, RateLimitQuery{Prefix: "con"}.Validate())
}
