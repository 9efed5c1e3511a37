package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/draftmill/draftmill/internal/core"
)

// RateLimitQuery selects persisted rate limit rows for listing or reset.
type RateLimitQuery struct {
	All     bool
	Service string
	Prefix  string
}

func (q RateLimitQuery) Validate() error {
	if q.All {
		return nil
	}
	if strings.TrimSpace(q.Service) != "" {
		return nil
	}
	if strings.TrimSpace(q.Prefix) != "" {
		return nil
	}
	return errors.New("must specify --all, --service, or --prefix")
}

func (q RateLimitQuery) whereClause() (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	if q.All {
		return "", nil, nil
	}
	if service := strings.TrimSpace(q.Service); service != "" {
		return "WHERE service = ?", []any{service}, nil
	}
	prefix := strings.TrimSpace(q.Prefix)
	if prefix == "" {
		return "", nil, errors.New("prefix is required")
	}
	return "WHERE service LIKE ?", []any{prefix + "%"}, nil
}

// GetRateLimit returns the stored sliding window for a service, or nil when
// the service has no persisted state.
func (s *Store) GetRateLimit(ctx context.Context, service string) (*core.RateLimitState, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	service = strings.TrimSpace(service)
	if service == "" {
		return nil, errors.New("service is required")
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT service, timestamps, updated_at
		FROM rate_limits
		WHERE service = ?
	`, service)

	state, err := scanRateLimit(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch rate limit: %w", err)
	}
	return state, nil
}

// SaveRateLimit persists the sliding window for one service.
func (s *Store) SaveRateLimit(ctx context.Context, state core.RateLimitState) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	service := strings.TrimSpace(state.Service)
	if service == "" {
		return errors.New("service is required")
	}

	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now().UTC()
	}

	stampsJSON, err := encodeTimestamps(state.Timestamps)
	if err != nil {
		return err
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO rate_limits (service, timestamps, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(service) DO UPDATE SET
			timestamps = excluded.timestamps,
			updated_at = excluded.updated_at
	`, service, stampsJSON, state.UpdatedAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("store rate limit: %w", err)
	}

	return nil
}

// SaveRateLimits persists the windows for several services in one pass.
func (s *Store) SaveRateLimits(ctx context.Context, states []core.RateLimitState) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	for _, state := range states {
		if err := s.SaveRateLimit(ctx, state); err != nil {
			return err
		}
	}
	return nil
}

// ListRateLimits returns persisted windows matching the query, ordered by
// service name.
func (s *Store) ListRateLimits(ctx context.Context, q RateLimitQuery) ([]core.RateLimitState, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT service, timestamps, updated_at
		FROM rate_limits
		%s
		ORDER BY service
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("list rate limits: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	states := []core.RateLimitState{}
	for rows.Next() {
		state, err := scanRateLimit(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan rate limits: %w", err)
		}
		states = append(states, *state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rate limits: %w", err)
	}

	return states, nil
}

// CountRateLimits reports how many persisted windows match the query.
func (s *Store) CountRateLimits(ctx context.Context, q RateLimitQuery) (int, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}

	row := s.DB.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*)
		FROM rate_limits
		%s
	`, where), args...)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count rate limits: %w", err)
	}
	return count, nil
}

// ResetRateLimits deletes persisted windows matching the query and reports
// how many rows were removed.
func (s *Store) ResetRateLimits(ctx context.Context, q RateLimitQuery) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM rate_limits
		%s
	`, where), args...)
	if err != nil {
		return 0, fmt.Errorf("reset rate limits: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset rate limits: %w", err)
	}
	return affected, nil
}

func scanRateLimit(scan func(dest ...any) error) (*core.RateLimitState, error) {
	var (
		service    string
		stampsJSON string
		updatedAt  int64
	)
	if err := scan(&service, &stampsJSON, &updatedAt); err != nil {
		return nil, err
	}

	stamps, err := decodeTimestamps(stampsJSON)
	if err != nil {
		return nil, err
	}

	return &core.RateLimitState{
		Service:    service,
		Timestamps: stamps,
		UpdatedAt:  time.Unix(updatedAt, 0).UTC(),
	}, nil
}

// Timestamps are stored as a JSON array of Unix seconds so rows stay
// readable from the sqlite shell.
func encodeTimestamps(stamps []time.Time) (string, error) {
	seconds := make([]int64, 0, len(stamps))
	for _, stamp := range stamps {
		seconds = append(seconds, stamp.UTC().Unix())
	}
	encoded, err := json.Marshal(seconds)
	if err != nil {
		return "", fmt.Errorf("encode rate limit timestamps: %w", err)
	}
	return string(encoded), nil
}

func decodeTimestamps(raw string) ([]time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var seconds []int64
	if err := json.Unmarshal([]byte(raw), &seconds); err != nil {
		return nil, fmt.Errorf("decode rate limit timestamps: %w", err)
	}

	stamps := make([]time.Time, 0, len(seconds))
	for _, sec := range seconds {
		stamps = append(stamps, time.Unix(sec, 0).UTC())
	}
	return stamps, nil
}
