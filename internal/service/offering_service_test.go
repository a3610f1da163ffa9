package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-sis-api/internal/models"
)

type mockChecklistReader struct {
	rows map[string][]models.CurriculumChecklist
}

func (m *mockChecklistReader) ListByCourseMajor(ctx context.Context, course, major string) ([]models.CurriculumChecklist, error) {
	return m.rows[course+"/"+major], nil
}

type mockOfferingRepo struct {
	existing map[string]bool
	created  []*models.SubjectOffering
}

func (m *mockOfferingRepo) ExistsForTerm(ctx context.Context, checklistID, academicYear string, semester models.Semester) (bool, error) {
	return m.existing[checklistID], nil
}

func (m *mockOfferingRepo) Create(ctx context.Context, offering *models.SubjectOffering) error {
	if m.existing == nil {
		m.existing = make(map[string]bool)
	}
	m.existing[offering.ChecklistID] = true
	m.created = append(m.created, offering)
	return nil
}

func (m *mockOfferingRepo) ListByTerm(ctx context.Context, academicYear string, semester models.Semester) ([]models.OfferingDetail, error) {
	return nil, nil
}

func (m *mockOfferingRepo) SetActive(ctx context.Context, id string, active bool) error {
	return nil
}

func checklistRow(id, code string, semester models.Semester) models.CurriculumChecklist {
	return models.CurriculumChecklist{
		ID:          id,
		Course:      "BSCS",
		Major:       "",
		YearLevel:   1,
		Semester:    semester,
		CourseCode:  code,
		CourseTitle: code,
		CreditUnit:  3,
	}
}

func seedRequest(overrides ...string) SeedOfferingsRequest {
	return SeedOfferingsRequest{
		AcademicYear:    "2024-2025",
		Semester:        models.SemesterFirst,
		CourseMajors:    map[string][]string{"BSCS": {""}},
		ManualOverrides: overrides,
	}
}

func TestOfferingSeedMatchingSemester(t *testing.T) {
	checklists := &mockChecklistReader{rows: map[string][]models.CurriculumChecklist{
		"BSCS/": {
			checklistRow("c1", "CS101", models.SemesterFirst),
			checklistRow("c2", "CS102", models.SemesterSecond),
		},
	}}
	offerings := &mockOfferingRepo{}
	svc := NewOfferingService(checklists, offerings, nil, nil)

	report, err := svc.Seed(context.Background(), seedRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Offered)
	assert.Equal(t, 0, report.OfferedOverride)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, offerings.created, 1)
	assert.Equal(t, "c1", offerings.created[0].ChecklistID)
	assert.False(t, offerings.created[0].ViaOverride)
}

func TestOfferingSeedManualOverride(t *testing.T) {
	checklists := &mockChecklistReader{rows: map[string][]models.CurriculumChecklist{
		"BSCS/": {
			checklistRow("c2", "CS102", models.SemesterSecond),
		},
	}}
	offerings := &mockOfferingRepo{}
	svc := NewOfferingService(checklists, offerings, nil, nil)

	report, err := svc.Seed(context.Background(), seedRequest("CS102"))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Offered)
	assert.Equal(t, 1, report.OfferedOverride)
	require.Len(t, offerings.created, 1)
	assert.True(t, offerings.created[0].ViaOverride)
}

func TestOfferingSeedIdempotent(t *testing.T) {
	checklists := &mockChecklistReader{rows: map[string][]models.CurriculumChecklist{
		"BSCS/": {
			checklistRow("c1", "CS101", models.SemesterFirst),
			checklistRow("c2", "CS102", models.SemesterSecond),
		},
	}}
	offerings := &mockOfferingRepo{}
	svc := NewOfferingService(checklists, offerings, nil, nil)

	first, err := svc.Seed(context.Background(), seedRequest("CS102"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Offered)
	assert.Equal(t, 1, first.OfferedOverride)

	second, err := svc.Seed(context.Background(), seedRequest("CS102"))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Offered)
	assert.Equal(t, 0, second.OfferedOverride)
	assert.Equal(t, 2, second.AlreadyExists)
	assert.Len(t, offerings.created, 2)
}

func TestOfferingSeedRejectsUnknownSemester(t *testing.T) {
	svc := NewOfferingService(&mockChecklistReader{}, &mockOfferingRepo{}, nil, nil)

	req := seedRequest()
	req.Semester = "WINTER"
	_, err := svc.Seed(context.Background(), req)
	assert.Error(t, err)
}
