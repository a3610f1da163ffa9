package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-sis-api/internal/models"
)

// OfferingRepository manages subject offerings derived from the checklist.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository constructs an OfferingRepository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

// ExistsForTerm reports whether the checklist row is already offered in the
// given term. The seeder's idempotence rests on this check plus the unique
// index on (checklist_id, academic_year, semester).
func (r *OfferingRepository) ExistsForTerm(ctx context.Context, checklistID, academicYear string, semester models.Semester) (bool, error) {
	const query = `SELECT 1 FROM subject_offerings
        WHERE checklist_id = $1 AND academic_year = $2 AND semester = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, checklistID, academicYear, semester); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check offering: %w", err)
	}
	return true, nil
}

// Create inserts an offering row.
func (r *OfferingRepository) Create(ctx context.Context, offering *models.SubjectOffering) error {
	if offering.ID == "" {
		offering.ID = uuid.NewString()
	}
	if offering.CreatedAt.IsZero() {
		offering.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO subject_offerings (id, checklist_id, academic_year, semester, is_active, via_override, created_at)
        VALUES (:id, :checklist_id, :academic_year, :semester, :is_active, :via_override, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, offering); err != nil {
		return fmt.Errorf("create offering: %w", err)
	}
	return nil
}

// ListByTerm returns offering details for one academic term.
func (r *OfferingRepository) ListByTerm(ctx context.Context, academicYear string, semester models.Semester) ([]models.OfferingDetail, error) {
	const query = `SELECT o.id, o.checklist_id, o.academic_year, o.semester, o.is_active, o.via_override, o.created_at,
        c.course, c.major, c.year_level, c.course_code, c.course_title, c.credit_unit
        FROM subject_offerings o
        JOIN curriculum_checklists c ON c.id = o.checklist_id
        WHERE o.academic_year = $1 AND o.semester = $2
        ORDER BY c.course, c.major, c.year_level, c.course_code`
	var offerings []models.OfferingDetail
	if err := r.db.SelectContext(ctx, &offerings, query, academicYear, semester); err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	return offerings, nil
}

// SetActive toggles the availability flag of an offering.
func (r *OfferingRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.ExecContext(ctx, "UPDATE subject_offerings SET is_active = $2 WHERE id = $1", id, active)
	if err != nil {
		return fmt.Errorf("set offering active: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
