package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
)

type mockRateLimitRepo struct {
	counts       map[string]int
	incrementErr error
	pruned       int64
	pruneCutoff  time.Time
}

func (m *mockRateLimitRepo) Increment(ctx context.Context, key string, windowStart time.Time) (int, error) {
	if m.incrementErr != nil {
		return 0, m.incrementErr
	}
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	bucket := key + windowStart.Format(time.RFC3339)
	m.counts[bucket]++
	return m.counts[bucket], nil
}

func (m *mockRateLimitRepo) PruneExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	m.pruneCutoff = cutoff
	return m.pruned, nil
}

func TestRateLimitAllowUnderThreshold(t *testing.T) {
	repo := &mockRateLimitRepo{}
	svc := NewRateLimitService(repo, time.Minute, 3, nil, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Allow(context.Background(), "grades:s1"))
	}
}

func TestRateLimitBlocksOverThreshold(t *testing.T) {
	repo := &mockRateLimitRepo{}
	svc := NewRateLimitService(repo, time.Minute, 2, nil, nil)

	require.NoError(t, svc.Allow(context.Background(), "grades:s1"))
	require.NoError(t, svc.Allow(context.Background(), "grades:s1"))

	err := svc.Allow(context.Background(), "grades:s1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrRateLimited.Code, appErr.Code)
	assert.Equal(t, 429, appErr.Status)
}

func TestRateLimitSeparateWindows(t *testing.T) {
	repo := &mockRateLimitRepo{}
	svc := NewRateLimitService(repo, time.Minute, 1, nil, nil)

	base := time.Date(2025, 3, 1, 10, 0, 30, 0, time.UTC)
	svc.now = func() time.Time { return base }
	require.NoError(t, svc.Allow(context.Background(), "grades:s1"))
	require.Error(t, svc.Allow(context.Background(), "grades:s1"))

	// next fixed window resets the counter
	svc.now = func() time.Time { return base.Add(time.Minute) }
	require.NoError(t, svc.Allow(context.Background(), "grades:s1"))
}

func TestRateLimitFailsOpenOnStoreError(t *testing.T) {
	repo := &mockRateLimitRepo{incrementErr: errors.New("db down")}
	svc := NewRateLimitService(repo, time.Minute, 1, nil, nil)

	assert.NoError(t, svc.Allow(context.Background(), "grades:s1"))
}

func TestRateLimitDisabledWithZeroThreshold(t *testing.T) {
	repo := &mockRateLimitRepo{}
	svc := NewRateLimitService(repo, time.Minute, 0, nil, nil)

	for i := 0; i < 10; i++ {
		require.NoError(t, svc.Allow(context.Background(), "grades:s1"))
	}
	assert.Empty(t, repo.counts)
}

func TestRateLimitCleanup(t *testing.T) {
	repo := &mockRateLimitRepo{pruned: 7}
	svc := NewRateLimitService(repo, time.Minute, 5, nil, nil)

	removed, err := svc.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), removed)
	assert.False(t, repo.pruneCutoff.IsZero())
}
