package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-sis-api/internal/models"
)

// CurriculumRepository manages curriculum checklist reference rows.
type CurriculumRepository struct {
	db *sqlx.DB
}

// NewCurriculumRepository constructs a CurriculumRepository.
func NewCurriculumRepository(db *sqlx.DB) *CurriculumRepository {
	return &CurriculumRepository{db: db}
}

const checklistColumns = `id, course, major, year_level, semester, course_code, course_title, credit_unit, created_at, updated_at`

// List returns checklist rows matching the filter.
func (r *CurriculumRepository) List(ctx context.Context, filter models.ChecklistFilter) ([]models.CurriculumChecklist, int, error) {
	base := "FROM curriculum_checklists WHERE 1=1"
	var args []interface{}

	if filter.Course != "" {
		base += fmt.Sprintf(" AND course = $%d", len(args)+1)
		args = append(args, filter.Course)
	}
	if filter.Major != "" {
		base += fmt.Sprintf(" AND major = $%d", len(args)+1)
		args = append(args, filter.Major)
	}
	if filter.YearLevel > 0 {
		base += fmt.Sprintf(" AND year_level = $%d", len(args)+1)
		args = append(args, filter.YearLevel)
	}
	if filter.Semester != "" {
		base += fmt.Sprintf(" AND semester = $%d", len(args)+1)
		args = append(args, filter.Semester)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY course, major, year_level, semester, course_code LIMIT %d OFFSET %d",
		checklistColumns, base, size, offset)
	var rows []models.CurriculumChecklist
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list checklists: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count checklists: %w", err)
	}
	return rows, total, nil
}

// ListByCourseMajor returns every checklist row for one (course, major)
// pair, the unit the offering seeder iterates over.
func (r *CurriculumRepository) ListByCourseMajor(ctx context.Context, course, major string) ([]models.CurriculumChecklist, error) {
	query := fmt.Sprintf(`SELECT %s FROM curriculum_checklists WHERE course = $1 AND major = $2
        ORDER BY year_level, semester, course_code`, checklistColumns)
	var rows []models.CurriculumChecklist
	if err := r.db.SelectContext(ctx, &rows, query, course, major); err != nil {
		return nil, fmt.Errorf("list checklist for %s/%s: %w", course, major, err)
	}
	return rows, nil
}

// FindByID fetches one checklist row.
func (r *CurriculumRepository) FindByID(ctx context.Context, id string) (*models.CurriculumChecklist, error) {
	query := fmt.Sprintf("SELECT %s FROM curriculum_checklists WHERE id = $1", checklistColumns)
	var row models.CurriculumChecklist
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a checklist row.
func (r *CurriculumRepository) Create(ctx context.Context, row *models.CurriculumChecklist) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	const query = `INSERT INTO curriculum_checklists (id, course, major, year_level, semester, course_code, course_title, credit_unit, created_at, updated_at)
        VALUES (:id, :course, :major, :year_level, :semester, :course_code, :course_title, :credit_unit, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create checklist row: %w", err)
	}
	return nil
}

// Update modifies a checklist row.
func (r *CurriculumRepository) Update(ctx context.Context, row *models.CurriculumChecklist) error {
	row.UpdatedAt = time.Now().UTC()
	const query = `UPDATE curriculum_checklists SET course = :course, major = :major, year_level = :year_level,
        semester = :semester, course_code = :course_code, course_title = :course_title, credit_unit = :credit_unit,
        updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("update checklist row: %w", err)
	}
	return nil
}

// Delete removes a checklist row.
func (r *CurriculumRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM curriculum_checklists WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete checklist row: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
