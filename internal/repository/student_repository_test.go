package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-sis-api/internal/models"
)

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_number", "username", "email", "first_name", "middle_name", "last_name",
		"phone", "address", "course", "major", "year_level", "status", "is_approved",
		"is_password_set", "created_at", "updated_at",
	}).AddRow("s1", "2024-0001", "jdoe", "jdoe@example.edu", "Jane", "", "Doe",
		"", "", "BSCS", "", 2, "REGULAR", true, true, time.Now(), time.Now())
}

func TestStudentRepositoryListDefaultPaging(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT .* FROM students WHERE 1=1 ORDER BY created_at DESC LIMIT 10 OFFSET 0`).
		WillReturnRows(studentRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM students WHERE 1=1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListSearch(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT .*LOWER\(first_name\) LIKE \$1 .* LIMIT 10 OFFSET 0`).
		WithArgs("%doe%").
		WillReturnRows(studentRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM students`).
		WithArgs("%doe%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Search: "Doe"})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindDuplicateFields(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"student_number", "username", "email"}).
		AddRow("2024-0001", "someone_else", "other@example.edu").
		AddRow("2024-9999", "jdoe", "jdoe@example.edu")
	mock.ExpectQuery(`SELECT student_number, username, email FROM students`).
		WithArgs("2024-0001", "jdoe", "jdoe@example.edu").
		WillReturnRows(rows)

	fields, err := repo.FindDuplicateFields(context.Background(), "2024-0001", "jdoe", "jdoe@example.edu", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"student_number", "username", "email"}, fields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindDuplicateFieldsNone(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT student_number, username, email FROM students`).
		WillReturnRows(sqlmock.NewRows([]string{"student_number", "username", "email"}))

	fields, err := repo.FindDuplicateFields(context.Background(), "2024-0001", "jdoe", "jdoe@example.edu", "")
	require.NoError(t, err)
	assert.Empty(t, fields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{
		StudentNumber: "2024-0001",
		Username:      "jdoe",
		Email:         "jdoe@example.edu",
		FirstName:     "Jane",
		LastName:      "Doe",
		Course:        "BSCS",
		YearLevel:     2,
		Status:        models.StudentStatusRegular,
	}
	err := repo.Create(context.Background(), student)
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("DELETE FROM students").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySetApproval(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET is_approved").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetApproval(context.Background(), "s1", true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
