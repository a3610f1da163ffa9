package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-sis-api/internal/models"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
)

type mockGradeRepo struct {
	grades    []models.Grade
	created   []*models.Grade
	createErr error
}

func (m *mockGradeRepo) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, int, error) {
	return m.grades, len(m.grades), nil
}

func (m *mockGradeRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	return m.grades, nil
}

func (m *mockGradeRepo) ListByStudentTerm(ctx context.Context, studentID, academicYear string, semester models.Semester) ([]models.Grade, error) {
	return m.grades, nil
}

func (m *mockGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, grade)
	return nil
}

func (m *mockGradeRepo) Update(ctx context.Context, grade *models.Grade) error { return nil }

func (m *mockGradeRepo) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	return nil, nil
}

type mockTermRepo struct {
	active *models.Term
	err    error
}

func (m *mockTermRepo) FindActive(ctx context.Context) (*models.Term, error) {
	return m.active, m.err
}

func strPtr(s string) *string { return &s }

func gradeRow(code string, credit float64, value string) models.Grade {
	return models.Grade{
		CourseCode:   code,
		CourseTitle:  code,
		CreditUnit:   credit,
		Grade:        value,
		AcademicYear: "2024-2025",
		Semester:     models.SemesterFirst,
	}
}

func TestGradeServiceSummaryWeightedGPA(t *testing.T) {
	repo := &mockGradeRepo{grades: []models.Grade{
		gradeRow("CS101", 3, "1.50"),
		gradeRow("MATH1", 5, "2.25"),
	}}
	svc := NewGradeService(repo, &mockTermRepo{}, nil, nil, nil)

	summary, err := svc.Summary(context.Background(), "s1", "2024-2025", models.SemesterFirst)
	require.NoError(t, err)
	// (3*1.50 + 5*2.25)/8 = 1.96875
	assert.Equal(t, "1.97", summary.GPA)
	assert.Equal(t, 8.0, summary.CreditsEnrolled)
	assert.Equal(t, 8.0, summary.CreditsEarned)
	assert.Equal(t, 2, summary.Courses)
}

func TestGradeServiceSummarySkipsIncompleteAndDropped(t *testing.T) {
	repo := &mockGradeRepo{grades: []models.Grade{
		gradeRow("CS101", 3, "1.00"),
		gradeRow("PE1", 2, models.GradeIncomplete),
		gradeRow("NSTP1", 3, models.GradeDropped),
	}}
	svc := NewGradeService(repo, &mockTermRepo{}, nil, nil, nil)

	summary, err := svc.Summary(context.Background(), "s1", "2024-2025", models.SemesterFirst)
	require.NoError(t, err)
	assert.Equal(t, "1.00", summary.GPA)
	assert.Equal(t, 3.0, summary.CreditsEnrolled)
	assert.Equal(t, 1, summary.Courses)
}

func TestGradeServiceSummaryReExamOverrides(t *testing.T) {
	failing := gradeRow("CS101", 3, "5.00")
	failing.ReExam = strPtr("3.00")
	repo := &mockGradeRepo{grades: []models.Grade{failing}}
	svc := NewGradeService(repo, &mockTermRepo{}, nil, nil, nil)

	summary, err := svc.Summary(context.Background(), "s1", "2024-2025", models.SemesterFirst)
	require.NoError(t, err)
	assert.Equal(t, "3.00", summary.GPA)
	assert.Equal(t, 3.0, summary.CreditsEarned)
}

func TestGradeServiceSummaryEmptyTerm(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, &mockTermRepo{}, nil, nil, nil)

	summary, err := svc.Summary(context.Background(), "s1", "2024-2025", models.SemesterSecond)
	require.NoError(t, err)
	assert.Equal(t, "0.00", summary.GPA)
	assert.Zero(t, summary.CreditsEnrolled)
	assert.Zero(t, summary.CreditsEarned)
}

func TestGradeServiceSummaryDerivesPreviousTerm(t *testing.T) {
	repo := &mockGradeRepo{}
	terms := &mockTermRepo{active: &models.Term{AcademicYear: "2024-2025", Semester: models.SemesterSecond}}
	svc := NewGradeService(repo, terms, nil, nil, nil)

	summary, err := svc.Summary(context.Background(), "s1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-2025", summary.AcademicYear)
	assert.Equal(t, models.SemesterFirst, summary.Semester)
}

func TestPreviousTermCrossesAcademicYear(t *testing.T) {
	year, semester := previousTerm("2024-2025", models.SemesterFirst)
	assert.Equal(t, "2023-2024", year)
	assert.Equal(t, models.SemesterSummer, semester)
}

func TestGradeServiceCreateRejectsBadGradeValue(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, &mockTermRepo{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateGradeRequest{
		StudentID:    "0c3f9a1e-9d20-4c5a-8f27-2f6fb1b5a111",
		CourseCode:   "CS101",
		CourseTitle:  "Intro",
		CreditUnit:   3,
		Grade:        "A+",
		AcademicYear: "2024-2025",
		Semester:     models.SemesterFirst,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestGradeServiceTranscriptGroupsByTerm(t *testing.T) {
	first := gradeRow("CS101", 3, "1.50")
	second := gradeRow("CS102", 3, "1.75")
	second.Semester = models.SemesterSecond
	older := gradeRow("MATH1", 5, "2.00")
	older.AcademicYear = "2023-2024"

	repo := &mockGradeRepo{grades: []models.Grade{older, first, second}}
	svc := NewGradeService(repo, &mockTermRepo{}, nil, nil, nil)

	transcript, err := svc.Transcript(context.Background(), &models.Student{
		ID: "s1", FirstName: "Jane", LastName: "Doe", StudentNumber: "2024-0001",
	})
	require.NoError(t, err)
	require.Len(t, transcript.Terms, 3)
	// most recent term first
	assert.Equal(t, "2024-2025", transcript.Terms[0].AcademicYear)
	assert.Equal(t, models.SemesterSecond, transcript.Terms[0].Semester)
	assert.Equal(t, "2023-2024", transcript.Terms[2].AcademicYear)
	assert.Equal(t, "Jane Doe", transcript.StudentName)
}
