package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateLimitMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRateLimitRepositoryIncrement(t *testing.T) {
	db, mock, cleanup := newRateLimitMock(t)
	defer cleanup()
	repo := NewRateLimitRepository(db)

	window := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO rate_limits .*ON CONFLICT \(key, window_start\) DO UPDATE`).
		WithArgs("grade-list:s1", window).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.Increment(context.Background(), "grade-list:s1", window)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitRepositoryPruneExpired(t *testing.T) {
	db, mock, cleanup := newRateLimitMock(t)
	defer cleanup()
	repo := NewRateLimitRepository(db)

	cutoff := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM rate_limits WHERE window_start < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 42))

	removed, err := repo.PruneExpired(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(42), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
