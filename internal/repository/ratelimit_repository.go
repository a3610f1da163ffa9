package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// RateLimitRepository backs the fixed-window limiter with one counter row
// per (key, window). The increment is a single atomic upsert; no
// coordination happens outside the database.
type RateLimitRepository struct {
	db *sqlx.DB
}

// NewRateLimitRepository constructs a RateLimitRepository.
func NewRateLimitRepository(db *sqlx.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// Increment bumps the counter for the key's current window and returns the
// new count.
func (r *RateLimitRepository) Increment(ctx context.Context, key string, windowStart time.Time) (int, error) {
	const query = `INSERT INTO rate_limits (key, window_start, count)
        VALUES ($1, $2, 1)
        ON CONFLICT (key, window_start) DO UPDATE SET count = rate_limits.count + 1
        RETURNING count`
	var count int
	if err := r.db.GetContext(ctx, &count, query, key, windowStart.UTC()); err != nil {
		return 0, fmt.Errorf("increment rate limit %s: %w", key, err)
	}
	return count, nil
}

// PruneExpired deletes counter rows whose window started before the cutoff
// and returns the number of rows removed.
func (r *RateLimitRepository) PruneExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM rate_limits WHERE window_start < $1", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune rate limits: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rate limits affected: %w", err)
	}
	return removed, nil
}
