package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-sis-api/pkg/config"
)

type studentCounter interface {
	Count(ctx context.Context) (int, error)
}

type announcementCounter interface {
	Count(ctx context.Context) (int, error)
}

type eventCounter interface {
	CountUpcoming(ctx context.Context, since time.Time) (int, error)
}

// WeatherConditions is the trimmed campus weather block on the dashboard.
type WeatherConditions struct {
	City        string  `json:"city"`
	Description string  `json:"description"`
	TempC       float64 `json:"temp_c"`
}

// DashboardStats is the landing-page aggregate.
type DashboardStats struct {
	Students       int                `json:"students"`
	Announcements  int                `json:"announcements"`
	UpcomingEvents int                `json:"upcoming_events"`
	Weather        *WeatherConditions `json:"weather,omitempty"`
}

// DashboardService aggregates entity counts and optional campus weather for
// the portal landing page.
type DashboardService struct {
	students      studentCounter
	announcements announcementCounter
	events        eventCounter
	weather       config.WeatherConfig
	metrics       *MetricsService
	http          *http.Client
	logger        *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(students studentCounter, announcements announcementCounter, events eventCounter, weather config.WeatherConfig, metrics *MetricsService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := weather.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DashboardService{
		students:      students,
		announcements: announcements,
		events:        events,
		weather:       weather,
		metrics:       metrics,
		http:          &http.Client{Timeout: timeout},
		logger:        logger,
	}
}

// Stats collects the dashboard numbers. The weather lookup is best effort
// and skipped entirely without an API key.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	start := time.Now()
	students, err := s.students.Count(ctx)
	s.metrics.ObserveDBQuery("dashboard_students", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}

	start = time.Now()
	announcements, err := s.announcements.Count(ctx)
	s.metrics.ObserveDBQuery("dashboard_announcements", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("count announcements: %w", err)
	}

	start = time.Now()
	upcoming, err := s.events.CountUpcoming(ctx, time.Now().UTC())
	s.metrics.ObserveDBQuery("dashboard_events", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("count upcoming events: %w", err)
	}

	stats := &DashboardStats{
		Students:       students,
		Announcements:  announcements,
		UpcomingEvents: upcoming,
	}
	if s.weather.APIKey != "" && s.weather.City != "" {
		if conditions, err := s.fetchWeather(ctx); err != nil {
			s.logger.Warn("weather lookup failed", zap.Error(err))
		} else {
			stats.Weather = conditions
		}
	}
	return stats, nil
}

func (s *DashboardService) fetchWeather(ctx context.Context) (*WeatherConditions, error) {
	endpoint := fmt.Sprintf("https://api.openweathermap.org/data/2.5/weather?q=%s&appid=%s&units=metric",
		url.QueryEscape(s.weather.City), url.QueryEscape(s.weather.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather api returned %d", resp.StatusCode)
	}

	var payload struct {
		Name    string `json:"name"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	conditions := &WeatherConditions{City: payload.Name, TempC: payload.Main.Temp}
	if len(payload.Weather) > 0 {
		conditions.Description = payload.Weather[0].Description
	}
	return conditions, nil
}
