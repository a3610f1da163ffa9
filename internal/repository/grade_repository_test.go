package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-sis-api/internal/models"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
)

func newGradeMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func gradeRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_id", "course_code", "course_title", "credit_unit", "grade", "re_exam",
		"remarks", "instructor", "academic_year", "semester", "attempt_number", "retake_of",
		"created_at", "updated_at",
	}).AddRow("g1", "s1", "CS101", "Intro to Computing", 3.0, "1.75", nil,
		"", "Prof. Reyes", "2024-2025", "FIRST", 1, nil, time.Now(), time.Now())
}

func TestGradeRepositoryListByStudentTerm(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery(`SELECT .* FROM grades\s+WHERE student_id = \$1 AND academic_year = \$2 AND semester = \$3`).
		WithArgs("s1", "2024-2025", models.SemesterFirst).
		WillReturnRows(gradeRows())

	grades, err := repo.ListByStudentTerm(context.Background(), "s1", "2024-2025", models.SemesterFirst)
	require.NoError(t, err)
	assert.Len(t, grades, 1)
	assert.Equal(t, "CS101", grades[0].CourseCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec("INSERT INTO grades").
		WillReturnResult(sqlmock.NewResult(1, 1))

	grade := &models.Grade{
		StudentID:    "s1",
		CourseCode:   "CS101",
		CourseTitle:  "Intro to Computing",
		CreditUnit:   3,
		Grade:        "1.75",
		AcademicYear: "2024-2025",
		Semester:     models.SemesterFirst,
	}
	err := repo.Create(context.Background(), grade)
	require.NoError(t, err)
	assert.NotEmpty(t, grade.ID)
	assert.Equal(t, 1, grade.AttemptNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec("INSERT INTO grades").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Grade{
		StudentID:    "s1",
		CourseCode:   "CS101",
		AcademicYear: "2024-2025",
		Semester:     models.SemesterFirst,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
