package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-sis-api/internal/models"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
)

type announcementRepository interface {
	List(ctx context.Context, filter models.ContentFilter) ([]models.Announcement, int, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id string) error
}

type eventRepository interface {
	List(ctx context.Context, filter models.ContentFilter) ([]models.Event, int, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

type newsRepository interface {
	List(ctx context.Context, filter models.ContentFilter) ([]models.News, int, error)
	Create(ctx context.Context, news *models.News) error
	Update(ctx context.Context, news *models.News) error
	Delete(ctx context.Context, id string) error
}

// AnnouncementRequest carries create/update fields for announcements.
type AnnouncementRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// EventRequest carries create/update fields for events.
type EventRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"start_date" validate:"required"`
	EndDate     *time.Time `json:"end_date"`
	Location    string     `json:"location"`
}

// NewsRequest carries create/update fields for news articles.
type NewsRequest struct {
	Title       string    `json:"title" validate:"required"`
	Content     string    `json:"content" validate:"required"`
	PublishedAt time.Time `json:"published_at"`
}

// ContentService manages announcements, events and news articles.
type ContentService struct {
	announcements announcementRepository
	events        eventRepository
	news          newsRepository
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewContentService constructs the content service.
func NewContentService(announcements announcementRepository, events eventRepository, news newsRepository, validate *validator.Validate, logger *zap.Logger) *ContentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{
		announcements: announcements,
		events:        events,
		news:          news,
		validator:     validate,
		logger:        logger,
	}
}

func (s *ContentService) ListAnnouncements(ctx context.Context, filter models.ContentFilter) ([]models.Announcement, *models.Pagination, error) {
	items, total, err := s.announcements.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return items, contentPagination(filter, total), nil
}

func (s *ContentService) CreateAnnouncement(ctx context.Context, req AnnouncementRequest, createdBy string) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	announcement := &models.Announcement{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   createdBy,
	}
	if err := s.announcements.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	return announcement, nil
}

func (s *ContentService) UpdateAnnouncement(ctx context.Context, id string, req AnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	announcement := &models.Announcement{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.announcements.Update(ctx, announcement); err != nil {
		return nil, wrapContentErr(err, "announcement")
	}
	return announcement, nil
}

func (s *ContentService) DeleteAnnouncement(ctx context.Context, id string) error {
	if err := s.announcements.Delete(ctx, id); err != nil {
		return wrapContentErr(err, "announcement")
	}
	return nil
}

func (s *ContentService) ListEvents(ctx context.Context, filter models.ContentFilter) ([]models.Event, *models.Pagination, error) {
	items, total, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return items, contentPagination(filter, total), nil
}

func (s *ContentService) CreateEvent(ctx context.Context, req EventRequest, createdBy string) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}
	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		CreatedBy:   createdBy,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	return event, nil
}

func (s *ContentService) UpdateEvent(ctx context.Context, id string, req EventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}
	event := &models.Event{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
	}
	if err := s.events.Update(ctx, event); err != nil {
		return nil, wrapContentErr(err, "event")
	}
	return event, nil
}

func (s *ContentService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return wrapContentErr(err, "event")
	}
	return nil
}

func (s *ContentService) ListNews(ctx context.Context, filter models.ContentFilter) ([]models.News, *models.Pagination, error) {
	items, total, err := s.news.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list news")
	}
	return items, contentPagination(filter, total), nil
}

func (s *ContentService) CreateNews(ctx context.Context, req NewsRequest, createdBy string) (*models.News, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid news payload")
	}
	publishedAt := req.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now().UTC()
	}
	article := &models.News{
		Title:       req.Title,
		Content:     req.Content,
		PublishedAt: publishedAt,
		CreatedBy:   createdBy,
	}
	if err := s.news.Create(ctx, article); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create news")
	}
	return article, nil
}

func (s *ContentService) UpdateNews(ctx context.Context, id string, req NewsRequest) (*models.News, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid news payload")
	}
	article := &models.News{
		ID:          id,
		Title:       req.Title,
		Content:     req.Content,
		PublishedAt: req.PublishedAt,
	}
	if err := s.news.Update(ctx, article); err != nil {
		return nil, wrapContentErr(err, "news article")
	}
	return article, nil
}

func (s *ContentService) DeleteNews(ctx context.Context, id string) error {
	if err := s.news.Delete(ctx, id); err != nil {
		return wrapContentErr(err, "news article")
	}
	return nil
}

func contentPagination(filter models.ContentFilter, total int) *models.Pagination {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 10
	}
	return models.NewPagination(page, size, total)
}

func wrapContentErr(err error, noun string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, noun+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update "+noun)
}
