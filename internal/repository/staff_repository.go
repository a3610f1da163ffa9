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

// StaffRepository manages administrator/registrar/faculty rows.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// List returns staff users matching the provided filters.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.StaffUser, int, error) {
	base := "FROM staff_users WHERE 1=1"
	var args []interface{}

	if filter.Role != nil {
		base += fmt.Sprintf(" AND role = $%d", len(args)+1)
		args = append(args, *filter.Role)
	}
	if filter.Active != nil {
		base += fmt.Sprintf(" AND active = $%d", len(args)+1)
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		base += fmt.Sprintf(" AND (LOWER(full_name) LIKE $%d OR LOWER(username) LIKE $%d OR LOWER(email) LIKE $%d)", idx, idx, idx)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
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

	query := fmt.Sprintf(`SELECT id, email, username, full_name, phone, role, active, created_at, updated_at
        %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, base, size, offset)
	var staff []models.StaffUser
	if err := r.db.SelectContext(ctx, &staff, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}
	return staff, total, nil
}

// FindByID fetches a staff user by ID.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.StaffUser, error) {
	const query = `SELECT id, email, username, full_name, phone, role, active, created_at, updated_at
        FROM staff_users WHERE id = $1`
	var staff models.StaffUser
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		return nil, err
	}
	return &staff, nil
}

// FindDuplicateFields reports which of username and email already belong to
// another staff row.
func (r *StaffRepository) FindDuplicateFields(ctx context.Context, username, email, excludeID string) ([]string, error) {
	query := "SELECT username, email FROM staff_users WHERE (username = $1 OR email = $2)"
	args := []interface{}{username, email}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}

	type dup struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	var rows []dup
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("check staff duplicates: %w", err)
	}

	seen := map[string]bool{}
	var fields []string
	for _, row := range rows {
		if row.Username == username && !seen["username"] {
			seen["username"] = true
			fields = append(fields, "username")
		}
		if row.Email == email && !seen["email"] {
			seen["email"] = true
			fields = append(fields, "email")
		}
	}
	return fields, nil
}

// Create inserts a new staff user.
func (r *StaffRepository) Create(ctx context.Context, staff *models.StaffUser) error {
	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = now
	}
	staff.UpdatedAt = now
	const query = `INSERT INTO staff_users (id, email, username, full_name, phone, role, active, created_at, updated_at)
        VALUES (:id, :email, :username, :full_name, :phone, :role, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, staff); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

// Update modifies an existing staff user.
func (r *StaffRepository) Update(ctx context.Context, staff *models.StaffUser) error {
	staff.UpdatedAt = time.Now().UTC()
	const query = `UPDATE staff_users SET email = :email, username = :username, full_name = :full_name,
        phone = :phone, role = :role, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, staff); err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	return nil
}

// Delete removes a staff row.
func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM staff_users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
