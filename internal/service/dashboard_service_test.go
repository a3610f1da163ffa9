package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-sis-api/pkg/config"
)

type fakeCounter struct{ n int }

func (f fakeCounter) Count(context.Context) (int, error) { return f.n, nil }

type fakeEventCounter struct{ n int }

func (f fakeEventCounter) CountUpcoming(context.Context, time.Time) (int, error) { return f.n, nil }

func TestDashboardStatsAggregatesCounts(t *testing.T) {
	svc := NewDashboardService(fakeCounter{n: 120}, fakeCounter{n: 4}, fakeEventCounter{n: 2},
		config.WeatherConfig{}, nil, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, stats.Students)
	assert.Equal(t, 4, stats.Announcements)
	assert.Equal(t, 2, stats.UpcomingEvents)
	assert.Nil(t, stats.Weather)
}

func TestDashboardStatsObservesQueryTimings(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewDashboardService(fakeCounter{n: 1}, fakeCounter{n: 1}, fakeEventCounter{n: 1},
		config.WeatherConfig{}, metrics, nil)

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `db_query_duration_seconds_count{query="dashboard_students"} 1`)
	assert.Contains(t, body, `db_query_duration_seconds_count{query="dashboard_announcements"} 1`)
	assert.Contains(t, body, `db_query_duration_seconds_count{query="dashboard_events"} 1`)
}
