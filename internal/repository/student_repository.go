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

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, student_number, username, email, first_name, middle_name, last_name, phone, address,
        course, major, year_level, status, is_approved, is_password_set, created_at, updated_at`

// List returns students matching the provided filters with substring search
// on name and username.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Course != "" {
		conditions = append(conditions, fmt.Sprintf("course = $%d", len(args)+1))
		args = append(args, filter.Course)
	}
	if filter.YearLevel > 0 {
		conditions = append(conditions, fmt.Sprintf("year_level = $%d", len(args)+1))
		args = append(args, filter.YearLevel)
	}
	if filter.IsApproved != nil {
		conditions = append(conditions, fmt.Sprintf("is_approved = $%d", len(args)+1))
		args = append(args, *filter.IsApproved)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(username) LIKE $%d OR LOWER(student_number) LIKE $%d)",
			idx, idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"last_name":      "last_name",
		"student_number": "student_number",
		"created_at":     "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 10
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", studentColumns, base, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByStudentNumber fetches a student by their school-issued number.
func (r *StudentRepository) FindByStudentNumber(ctx context.Context, studentNumber string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE student_number = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, studentNumber); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindDuplicateFields reports which of student_number, username and email
// already belong to another row. Registration reports every offending field
// at once, so all three checks run in one query.
func (r *StudentRepository) FindDuplicateFields(ctx context.Context, studentNumber, username, email, excludeID string) ([]string, error) {
	query := `SELECT student_number, username, email FROM students
        WHERE (student_number = $1 OR username = $2 OR email = $3)`
	args := []interface{}{studentNumber, username, email}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}

	type dup struct {
		StudentNumber string `db:"student_number"`
		Username      string `db:"username"`
		Email         string `db:"email"`
	}
	var rows []dup
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("check duplicate fields: %w", err)
	}

	seen := map[string]bool{}
	var fields []string
	record := func(field string) {
		if !seen[field] {
			seen[field] = true
			fields = append(fields, field)
		}
	}
	for _, row := range rows {
		if row.StudentNumber == studentNumber {
			record("student_number")
		}
		if row.Username == username {
			record("username")
		}
		if row.Email == email {
			record("email")
		}
	}
	return fields, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, student_number, username, email, first_name, middle_name, last_name, phone, address,
        course, major, year_level, status, is_approved, is_password_set, created_at, updated_at)
        VALUES (:id, :student_number, :username, :email, :first_name, :middle_name, :last_name, :phone, :address,
        :course, :major, :year_level, :status, :is_approved, :is_password_set, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET student_number = :student_number, username = :username, email = :email,
        first_name = :first_name, middle_name = :middle_name, last_name = :last_name, phone = :phone, address = :address,
        course = :course, major = :major, year_level = :year_level, status = :status, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// SetApproval flips the approval flag.
func (r *StudentRepository) SetApproval(ctx context.Context, id string, approved bool) error {
	const query = `UPDATE students SET is_approved = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, approved, time.Now().UTC()); err != nil {
		return fmt.Errorf("set approval: %w", err)
	}
	return nil
}

// SetPasswordSet marks that the student replaced the generated password.
func (r *StudentRepository) SetPasswordSet(ctx context.Context, id string, set bool) error {
	const query = `UPDATE students SET is_password_set = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, set, time.Now().UTC()); err != nil {
		return fmt.Errorf("set password flag: %w", err)
	}
	return nil
}

// Delete removes a student row. Grade rows cascade through the FK.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the number of student rows.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}
