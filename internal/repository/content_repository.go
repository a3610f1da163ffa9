package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-sis-api/internal/models"
)

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// List returns announcements in reverse-chronological order.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.ContentFilter) ([]models.Announcement, int, error) {
	base := "FROM announcements WHERE 1=1"
	var args []interface{}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(title) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	size, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT id, title, description, created_by, created_at, updated_at
        %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, base, size, offset)
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}
	return announcements, total, nil
}

// Create inserts an announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	fillContentTimestamps(&announcement.ID, &announcement.CreatedAt, &announcement.UpdatedAt)
	const query = `INSERT INTO announcements (id, title, description, created_by, created_at, updated_at)
        VALUES (:id, :title, :description, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// Update modifies an announcement.
func (r *AnnouncementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	announcement.UpdatedAt = time.Now().UTC()
	const query = `UPDATE announcements SET title = :title, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	return nil
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, r.db, "announcements", id)
}

// Count returns the number of announcements.
func (r *AnnouncementRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM announcements"); err != nil {
		return 0, fmt.Errorf("count announcements: %w", err)
	}
	return total, nil
}

// EventRepository provides persistence for events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events, newest start date first.
func (r *EventRepository) List(ctx context.Context, filter models.ContentFilter) ([]models.Event, int, error) {
	base := "FROM events WHERE 1=1"
	var args []interface{}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(title) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	size, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT id, title, description, start_date, end_date, location, created_by, created_at, updated_at
        %s ORDER BY start_date DESC LIMIT %d OFFSET %d`, base, size, offset)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// CountUpcoming returns events starting at or after the reference time.
func (r *EventRepository) CountUpcoming(ctx context.Context, since time.Time) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM events WHERE start_date >= $1", since); err != nil {
		return 0, fmt.Errorf("count upcoming events: %w", err)
	}
	return total, nil
}

// Create inserts an event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	fillContentTimestamps(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	const query = `INSERT INTO events (id, title, description, start_date, end_date, location, created_by, created_at, updated_at)
        VALUES (:id, :title, :description, :start_date, :end_date, :location, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update modifies an event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE events SET title = :title, description = :description, start_date = :start_date,
        end_date = :end_date, location = :location, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, r.db, "events", id)
}

// NewsRepository provides persistence for news articles.
type NewsRepository struct {
	db *sqlx.DB
}

// NewNewsRepository creates the repository.
func NewNewsRepository(db *sqlx.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

// List returns news in reverse-chronological publication order.
func (r *NewsRepository) List(ctx context.Context, filter models.ContentFilter) ([]models.News, int, error) {
	base := "FROM news WHERE 1=1"
	var args []interface{}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(title) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	size, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT id, title, content, published_at, created_by, created_at, updated_at
        %s ORDER BY published_at DESC LIMIT %d OFFSET %d`, base, size, offset)
	var news []models.News
	if err := r.db.SelectContext(ctx, &news, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list news: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count news: %w", err)
	}
	return news, total, nil
}

// Create inserts a news article.
func (r *NewsRepository) Create(ctx context.Context, news *models.News) error {
	fillContentTimestamps(&news.ID, &news.CreatedAt, &news.UpdatedAt)
	if news.PublishedAt.IsZero() {
		news.PublishedAt = news.CreatedAt
	}
	const query = `INSERT INTO news (id, title, content, published_at, created_by, created_at, updated_at)
        VALUES (:id, :title, :content, :published_at, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, news); err != nil {
		return fmt.Errorf("create news: %w", err)
	}
	return nil
}

// Update modifies a news article.
func (r *NewsRepository) Update(ctx context.Context, news *models.News) error {
	news.UpdatedAt = time.Now().UTC()
	const query = `UPDATE news SET title = :title, content = :content, published_at = :published_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, news); err != nil {
		return fmt.Errorf("update news: %w", err)
	}
	return nil
}

// Delete removes a news article.
func (r *NewsRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, r.db, "news", id)
}

func pageBounds(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return size, (page - 1) * size
}

func fillContentTimestamps(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

func deleteRow(ctx context.Context, db *sqlx.DB, table, id string) error {
	result, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
