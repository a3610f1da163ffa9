package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-sis-api/internal/models"
	"github.com/noah-isme/campus-sis-api/internal/service"
	"github.com/noah-isme/campus-sis-api/pkg/identity"
)

type fakeStudentRepo struct {
	created  []*models.Student
	approval map[string]bool
}

func (f *fakeStudentRepo) List(context.Context, models.StudentFilter) ([]models.Student, int, error) {
	return nil, 0, nil
}

func (f *fakeStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	return &models.Student{ID: id}, nil
}

func (f *fakeStudentRepo) FindDuplicateFields(context.Context, string, string, string, string) ([]string, error) {
	return nil, nil
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	student.ID = "stu-1"
	f.created = append(f.created, student)
	return nil
}

func (f *fakeStudentRepo) Update(context.Context, *models.Student) error { return nil }

func (f *fakeStudentRepo) SetApproval(_ context.Context, id string, approved bool) error {
	if f.approval == nil {
		f.approval = map[string]bool{}
	}
	f.approval[id] = approved
	return nil
}

func (f *fakeStudentRepo) SetPasswordSet(context.Context, string, bool) error { return nil }
func (f *fakeStudentRepo) Delete(context.Context, string) error               { return nil }

type fakeIdentity struct{}

func (fakeIdentity) Enabled() bool                                       { return false }
func (fakeIdentity) CreateAccount(context.Context, identity.Account) error { return nil }
func (fakeIdentity) DeleteAccount(context.Context, string) error         { return nil }
func (fakeIdentity) SetPassword(context.Context, string, string) error   { return nil }
func (fakeIdentity) SetRole(context.Context, string, string) error       { return nil }

func newStudentHandler(repo *fakeStudentRepo) *StudentHandler {
	return NewStudentHandler(service.NewStudentService(repo, fakeIdentity{}, nil, nil))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestStudentHandlerRegisterCreatesUnapproved(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStudentRepo{}
	handler := newStudentHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/students/register", `{
		"student_number": "2024-00017",
		"username": "jdoe",
		"email": "jdoe@example.edu",
		"password": "hunter2hunter2",
		"first_name": "Jane",
		"last_name": "Doe",
		"course": "BSCS",
		"year_level": 1
	}`)

	handler.Register(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.created, 1)
	assert.False(t, repo.created[0].IsApproved)

	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "2024-00017", envelope.Data["student_number"])
	assert.Equal(t, false, envelope.Data["is_approved"])
}

func TestStudentHandlerRegisterRejectsBadPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandler(&fakeStudentRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/students/register", `{"username": "jdoe"`)

	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentHandlerSetApprovalRequiresFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandler(&fakeStudentRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPatch, "/students/stu-1/approval", `{}`)
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}

	handler.SetApproval(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentHandlerSetApprovalRevokes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStudentRepo{}
	handler := newStudentHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPatch, "/students/stu-1/approval", `{"approved": false}`)
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}

	handler.SetApproval(c)

	require.Equal(t, http.StatusOK, rec.Code)
	approved, ok := repo.approval["stu-1"]
	require.True(t, ok)
	assert.False(t, approved)
}
