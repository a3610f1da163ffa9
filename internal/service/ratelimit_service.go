package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
)

type rateLimitRepository interface {
	Increment(ctx context.Context, key string, windowStart time.Time) (int, error)
	PruneExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// RateLimitService enforces a fixed-window request limit per key. Counters
// live in the database so every instance shares one window; an unavailable
// counter store fails open.
type RateLimitService struct {
	repo      rateLimitRepository
	window    time.Duration
	threshold int
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewRateLimitService constructs the limiter. A zero threshold disables it.
func NewRateLimitService(repo rateLimitRepository, window time.Duration, threshold int, metrics *MetricsService, logger *zap.Logger) *RateLimitService {
	if window <= 0 {
		window = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimitService{
		repo:      repo,
		window:    window,
		threshold: threshold,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Allow records one hit for the key and reports whether it stays under the
// window threshold.
func (s *RateLimitService) Allow(ctx context.Context, key string) error {
	if s.threshold <= 0 {
		return nil
	}
	windowStart := s.now().UTC().Truncate(s.window)
	count, err := s.repo.Increment(ctx, key, windowStart)
	if err != nil {
		s.logger.Warn("rate limit counter unavailable, allowing request",
			zap.String("key", key), zap.Error(err))
		return nil
	}
	if count > s.threshold {
		if s.metrics != nil {
			s.metrics.RecordRateLimited()
		}
		s.logger.Info("request rate limited",
			zap.String("key", key), zap.Int("count", count), zap.Int("threshold", s.threshold))
		return appErrors.Clone(appErrors.ErrRateLimited, "rate limit exceeded, try again later")
	}
	return nil
}

// Cleanup removes counter rows for windows that have fully elapsed. Wired
// both to the scheduler and to the cron endpoint.
func (s *RateLimitService) Cleanup(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-2 * s.window)
	removed, err := s.repo.PruneExpired(ctx, cutoff)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prune rate limit counters")
	}
	if removed > 0 {
		s.logger.Info("pruned rate limit counters", zap.Int64("removed", removed))
	}
	return removed, nil
}
