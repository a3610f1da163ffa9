package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-sis-api/internal/models"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
)

// GradeRepository manages persistence for grade records.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

const gradeColumns = `id, student_id, course_code, course_title, credit_unit, grade, re_exam, remarks, instructor,
        academic_year, semester, attempt_number, retake_of, created_at, updated_at`

// List returns grades matching the filter, newest first.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, int, error) {
	base := "FROM grades WHERE 1=1"
	var args []interface{}

	if filter.StudentID != "" {
		base += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.AcademicYear != "" {
		base += fmt.Sprintf(" AND academic_year = $%d", len(args)+1)
		args = append(args, filter.AcademicYear)
	}
	if filter.Semester != "" {
		base += fmt.Sprintf(" AND semester = $%d", len(args)+1)
		args = append(args, filter.Semester)
	}
	if filter.CourseCode != "" {
		base += fmt.Sprintf(" AND course_code = $%d", len(args)+1)
		args = append(args, filter.CourseCode)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY academic_year DESC, semester, course_code LIMIT %d OFFSET %d",
		gradeColumns, base, size, offset)
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list grades: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count grades: %w", err)
	}
	return grades, total, nil
}

// ListByStudent returns every grade row for one student ordered for
// transcript grouping.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	query := fmt.Sprintf(`SELECT %s FROM grades WHERE student_id = $1
        ORDER BY academic_year, semester, course_code, attempt_number`, gradeColumns)
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list student grades: %w", err)
	}
	return grades, nil
}

// ListByStudentTerm returns the grade rows of one academic term.
func (r *GradeRepository) ListByStudentTerm(ctx context.Context, studentID, academicYear string, semester models.Semester) ([]models.Grade, error) {
	query := fmt.Sprintf(`SELECT %s FROM grades
        WHERE student_id = $1 AND academic_year = $2 AND semester = $3
        ORDER BY course_code, attempt_number`, gradeColumns)
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, studentID, academicYear, semester); err != nil {
		return nil, fmt.Errorf("list term grades: %w", err)
	}
	return grades, nil
}

// Create inserts a grade row. A unique index on
// (student_id, course_code, academic_year, semester, attempt_number) turns
// duplicates into conflicts.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.AttemptNumber < 1 {
		grade.AttemptNumber = 1
	}
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now
	const query = `INSERT INTO grades (id, student_id, course_code, course_title, credit_unit, grade, re_exam, remarks,
        instructor, academic_year, semester, attempt_number, retake_of, created_at, updated_at)
        VALUES (:id, :student_id, :course_code, :course_title, :credit_unit, :grade, :re_exam, :remarks,
        :instructor, :academic_year, :semester, :attempt_number, :retake_of, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "grade already recorded for this course attempt")
		}
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// Update modifies an existing grade row (grade-preview edits).
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	grade.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grades SET course_title = :course_title, credit_unit = :credit_unit, grade = :grade,
        re_exam = :re_exam, remarks = :remarks, instructor = :instructor, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return nil
}

// FindByID fetches a grade by ID.
func (r *GradeRepository) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE id = $1", gradeColumns)
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, err
	}
	return &grade, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "duplicate key")
}
