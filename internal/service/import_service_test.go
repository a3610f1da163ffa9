package service

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/campus-sis-api/internal/models"
)

const importStudentID = "3b241101-e2bb-4255-8caf-4136c566a962"

type mockStudentLookup struct {
	byNumber map[string]*models.Student
}

func (m *mockStudentLookup) FindByStudentNumber(ctx context.Context, number string) (*models.Student, error) {
	if s, ok := m.byNumber[number]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func buildWorkbook(t *testing.T, headers []string, rows [][]string) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for rowIdx, cells := range rows {
		for colIdx, value := range cells {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func newImportFixture(gradeRepo *mockGradeRepo, studentRepo *mockStudentRepo) *ImportService {
	grades := NewGradeService(gradeRepo, &mockTermRepo{}, nil, nil, nil)
	students := NewStudentService(studentRepo, newMockIdentity(), nil, nil)
	lookup := &mockStudentLookup{byNumber: map[string]*models.Student{
		"2024-0001": {ID: importStudentID, StudentNumber: "2024-0001"},
	}}
	return NewImportService(grades, students, lookup, nil)
}

func TestImportGradesMapsHeaderAliases(t *testing.T) {
	gradeRepo := &mockGradeRepo{}
	svc := newImportFixture(gradeRepo, newMockStudentRepo())

	workbook := buildWorkbook(t,
		[]string{"Student Number", "Course Code", "Course Title", "Units", "Grade", "Academic Year", "Semester"},
		[][]string{
			{"2024-0001", "CS101", "Intro to Computing", "3", "1.75", "2024-2025", "First"},
		})

	summary, err := svc.ImportGrades(context.Background(), workbook)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, gradeRepo.created, 1)
	created := gradeRepo.created[0]
	assert.Equal(t, importStudentID, created.StudentID)
	assert.Equal(t, "CS101", created.CourseCode)
	assert.Equal(t, 3.0, created.CreditUnit)
	assert.Equal(t, models.SemesterFirst, created.Semester)
}

func TestImportGradesReportsPerRowFailures(t *testing.T) {
	gradeRepo := &mockGradeRepo{}
	svc := newImportFixture(gradeRepo, newMockStudentRepo())

	workbook := buildWorkbook(t,
		[]string{"student_number", "course_code", "course_title", "credit_unit", "grade", "academic_year", "semester"},
		[][]string{
			{"2024-0001", "CS101", "Intro to Computing", "3", "1.75", "2024-2025", "FIRST"},
			{"9999-0000", "CS102", "Programming 1", "3", "2.00", "2024-2025", "FIRST"},
			{"2024-0001", "CS103", "Discrete Math", "3", "9.99", "2024-2025", "FIRST"},
		})

	summary, err := svc.ImportGrades(context.Background(), workbook)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Outcomes, 3)

	assert.True(t, summary.Outcomes[0].Success)
	assert.Equal(t, "2024-0001", summary.Outcomes[0].Ref)

	assert.False(t, summary.Outcomes[1].Success)
	assert.Equal(t, "9999-0000", summary.Outcomes[1].Ref)
	assert.Contains(t, summary.Outcomes[1].Error, "unknown student number")

	assert.False(t, summary.Outcomes[2].Success)

	// The good row still lands even though later rows fail.
	require.Len(t, gradeRepo.created, 1)
	assert.Equal(t, "CS101", gradeRepo.created[0].CourseCode)
}

func TestImportStudentsGeneratesPasswordPerRow(t *testing.T) {
	studentRepo := newMockStudentRepo()
	svc := newImportFixture(&mockGradeRepo{}, studentRepo)

	workbook := buildWorkbook(t,
		[]string{"Student Number", "Username", "Email", "First Name", "last_name", "Course", "Year Level"},
		[][]string{
			{"2025-0001", "asantos", "asantos@example.edu", "Ana", "Santos", "BSCS", "1"},
			{"2025-0002", "breyes", "breyes@example.edu", "Ben", "Reyes", "BSIT", "2"},
		})

	summary, err := svc.ImportStudents(context.Background(), workbook)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, summary.Outcomes, 2)
	assert.NotEmpty(t, summary.Outcomes[0].Detail)
	assert.NotEmpty(t, summary.Outcomes[1].Detail)
	assert.NotEqual(t, summary.Outcomes[0].Detail, summary.Outcomes[1].Detail)

	require.Len(t, studentRepo.students, 2)
	for _, s := range studentRepo.students {
		assert.True(t, s.IsApproved)
	}
}

func TestImportGradesRejectsUnreadableWorkbook(t *testing.T) {
	svc := newImportFixture(&mockGradeRepo{}, newMockStudentRepo())

	_, err := svc.ImportGrades(context.Background(), bytes.NewReader([]byte("not a workbook")))
	require.Error(t, err)
}
