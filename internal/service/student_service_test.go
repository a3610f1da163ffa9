package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-sis-api/internal/models"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
	"github.com/noah-isme/campus-sis-api/pkg/identity"
)

type mockStudentRepo struct {
	students   map[string]*models.Student
	duplicates []string
	deleteErr  map[string]error
	deleted    []string
	seq        int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*models.Student)}
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, s := range m.students {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) FindDuplicateFields(ctx context.Context, studentNumber, username, email, excludeID string) ([]string, error) {
	return m.duplicates, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		m.seq++
		student.ID = fmt.Sprintf("generated-id-%d", m.seq)
	}
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) SetApproval(ctx context.Context, id string, approved bool) error {
	if s, ok := m.students[id]; ok {
		s.IsApproved = approved
	}
	return nil
}

func (m *mockStudentRepo) SetPasswordSet(ctx context.Context, id string, set bool) error {
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	if err := m.deleteErr[id]; err != nil {
		return err
	}
	delete(m.students, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockIdentity struct {
	accounts  map[string]identity.Account
	createErr error
	deleted   []string
}

func newMockIdentity() *mockIdentity {
	return &mockIdentity{accounts: make(map[string]identity.Account)}
}

func (m *mockIdentity) Enabled() bool { return true }

func (m *mockIdentity) CreateAccount(ctx context.Context, account identity.Account) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *mockIdentity) DeleteAccount(ctx context.Context, id string) error {
	delete(m.accounts, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockIdentity) SetPassword(ctx context.Context, id, password string) error { return nil }

func (m *mockIdentity) SetRole(ctx context.Context, id, role string) error { return nil }

func registerRequest() RegisterStudentRequest {
	return RegisterStudentRequest{
		StudentNumber: "2024-0001",
		Username:      "jdoe",
		Email:         "jdoe@example.edu",
		Password:      "s3cretpass",
		FirstName:     "Jane",
		LastName:      "Doe",
		Course:        "BSCS",
		YearLevel:     1,
	}
}

func TestStudentRegisterStartsUnapproved(t *testing.T) {
	repo := newMockStudentRepo()
	provider := newMockIdentity()
	svc := NewStudentService(repo, provider, nil, nil)

	student, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)
	assert.False(t, student.IsApproved)
	assert.Len(t, provider.accounts, 1)
	assert.Equal(t, string(models.RoleStudent), provider.accounts[student.ID].Role)
}

func TestStudentRegisterReportsEveryDuplicateField(t *testing.T) {
	repo := newMockStudentRepo()
	repo.duplicates = []string{"student_number", "username", "email"}
	provider := newMockIdentity()
	svc := NewStudentService(repo, provider, nil, nil)

	_, err := svc.Register(context.Background(), registerRequest())
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, []string{"student_number", "username", "email"}, appErr.Fields)
	// nothing was created on either side
	assert.Empty(t, repo.students)
	assert.Empty(t, provider.accounts)
}

func TestStudentRegisterRollsBackOnIdentityFailure(t *testing.T) {
	repo := newMockStudentRepo()
	provider := newMockIdentity()
	provider.createErr = errors.New("provider down")
	svc := NewStudentService(repo, provider, nil, nil)

	_, err := svc.Register(context.Background(), registerRequest())
	require.Error(t, err)
	assert.Empty(t, repo.students)
}

func TestStudentCreateGeneratesRandomPassword(t *testing.T) {
	repo := newMockStudentRepo()
	provider := newMockIdentity()
	svc := NewStudentService(repo, provider, nil, nil)

	req := CreateStudentRequest{
		StudentNumber: "2024-0002",
		Username:      "asantos",
		Email:         "asantos@example.edu",
		FirstName:     "Ana",
		LastName:      "Santos",
		Course:        "BSIT",
		YearLevel:     1,
	}
	first, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, first.Student.IsApproved)
	assert.NotEmpty(t, first.GeneratedPassword)
	// not derived from any profile field
	assert.NotContains(t, first.GeneratedPassword, req.Username)
	assert.NotContains(t, first.GeneratedPassword, req.StudentNumber)

	req.StudentNumber = "2024-0003"
	req.Username = "bsantos"
	req.Email = "bsantos@example.edu"
	second, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.GeneratedPassword, second.GeneratedPassword)
}

func TestStudentDeleteCascadesIdentity(t *testing.T) {
	repo := newMockStudentRepo()
	repo.students["s1"] = &models.Student{ID: "s1"}
	provider := newMockIdentity()
	provider.accounts["s1"] = identity.Account{ID: "s1"}
	svc := NewStudentService(repo, provider, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "s1"))
	assert.Empty(t, repo.students)
	assert.Equal(t, []string{"s1"}, provider.deleted)
}

func TestStudentBulkDeleteReportsPartialFailures(t *testing.T) {
	repo := newMockStudentRepo()
	repo.students["s1"] = &models.Student{ID: "s1"}
	repo.students["s2"] = &models.Student{ID: "s2"}
	repo.deleteErr = map[string]error{"s2": errors.New("fk violation")}
	provider := newMockIdentity()
	svc := NewStudentService(repo, provider, nil, nil)

	summary := svc.BulkDelete(context.Background(), []string{"s1", "s2", "missing"})
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Outcomes, 3)
	assert.True(t, summary.Outcomes[0].Success)
	assert.False(t, summary.Outcomes[1].Success)
	assert.NotEmpty(t, summary.Outcomes[1].Error)
	// earlier deletions stay committed
	assert.Equal(t, []string{"s1"}, repo.deleted)
}

func TestStudentListPaginationTotals(t *testing.T) {
	repo := newMockStudentRepo()
	for i := 0; i < 3; i++ {
		id := string(rune('a' + i))
		repo.students[id] = &models.Student{ID: id}
	}
	svc := NewStudentService(repo, newMockIdentity(), nil, nil)

	_, pagination, err := svc.List(context.Background(), models.StudentFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, pagination.TotalCount)
	assert.Equal(t, 2, pagination.TotalPages)
}
