package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-sis-api/internal/models"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
	"github.com/noah-isme/campus-sis-api/pkg/identity"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindDuplicateFields(ctx context.Context, studentNumber, username, email, excludeID string) ([]string, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	SetApproval(ctx context.Context, id string, approved bool) error
	SetPasswordSet(ctx context.Context, id string, set bool) error
	Delete(ctx context.Context, id string) error
}

type identityProvider interface {
	Enabled() bool
	CreateAccount(ctx context.Context, account identity.Account) error
	DeleteAccount(ctx context.Context, id string) error
	SetPassword(ctx context.Context, id, password string) error
	SetRole(ctx context.Context, id, role string) error
}

// RegisterStudentRequest is the self-service registration payload. The
// account starts unapproved.
type RegisterStudentRequest struct {
	StudentNumber string `json:"student_number" validate:"required"`
	Username      string `json:"username" validate:"required,min=3"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	FirstName     string `json:"first_name" validate:"required"`
	MiddleName    string `json:"middle_name"`
	LastName      string `json:"last_name" validate:"required"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Course        string `json:"course" validate:"required"`
	Major         string `json:"major"`
	YearLevel     int    `json:"year_level" validate:"required,min=1,max=6"`
}

// CreateStudentRequest is the admin-side creation payload. The account is
// auto-approved and receives a generated password.
type CreateStudentRequest struct {
	StudentNumber string               `json:"student_number" validate:"required"`
	Username      string               `json:"username" validate:"required,min=3"`
	Email         string               `json:"email" validate:"required,email"`
	FirstName     string               `json:"first_name" validate:"required"`
	MiddleName    string               `json:"middle_name"`
	LastName      string               `json:"last_name" validate:"required"`
	Phone         string               `json:"phone"`
	Address       string               `json:"address"`
	Course        string               `json:"course" validate:"required"`
	Major         string               `json:"major"`
	YearLevel     int                  `json:"year_level" validate:"required,min=1,max=6"`
	Status        models.StudentStatus `json:"status"`
}

// UpdateStudentRequest holds profile edits.
type UpdateStudentRequest struct {
	StudentNumber string               `json:"student_number" validate:"required"`
	Username      string               `json:"username" validate:"required,min=3"`
	Email         string               `json:"email" validate:"required,email"`
	FirstName     string               `json:"first_name" validate:"required"`
	MiddleName    string               `json:"middle_name"`
	LastName      string               `json:"last_name" validate:"required"`
	Phone         string               `json:"phone"`
	Address       string               `json:"address"`
	Course        string               `json:"course" validate:"required"`
	Major         string               `json:"major"`
	YearLevel     int                  `json:"year_level" validate:"required,min=1,max=6"`
	Status        models.StudentStatus `json:"status"`
}

// CreatedStudent pairs the stored row with the one-time generated password.
type CreatedStudent struct {
	Student           models.Student `json:"student"`
	GeneratedPassword string         `json:"generated_password,omitempty"`
}

// StudentService handles student lifecycle use-cases.
type StudentService struct {
	repo      studentRepository
	provider  identityProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, provider identityProvider, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, provider: provider, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 10
	}
	return students, models.NewPagination(page, size, total), nil
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Register creates an unapproved student from self-service sign-up. The
// duplicate check precedes both the identity call and the insert so a
// rejected registration leaves nothing behind.
func (s *StudentService) Register(ctx context.Context, req RegisterStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if err := s.rejectDuplicates(ctx, req.StudentNumber, req.Username, req.Email, ""); err != nil {
		return nil, err
	}

	student := &models.Student{
		StudentNumber: req.StudentNumber,
		Username:      req.Username,
		Email:         req.Email,
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		Address:       req.Address,
		Course:        req.Course,
		Major:         req.Major,
		YearLevel:     req.YearLevel,
		Status:        models.StudentStatusRegular,
		IsApproved:    false,
		IsPasswordSet: true,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	if err := s.provider.CreateAccount(ctx, identity.Account{
		ID:       student.ID,
		Email:    student.Email,
		Username: student.Username,
		Password: req.Password,
		Role:     string(models.RoleStudent),
	}); err != nil {
		// undo the local row so registration stays all-or-nothing
		if delErr := s.repo.Delete(ctx, student.ID); delErr != nil {
			s.logger.Error("failed to roll back student after identity failure",
				zap.String("student_id", student.ID), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to provision identity account")
	}

	return student, nil
}

// Create registers a student on behalf of an administrator. The account is
// approved immediately and receives a random generated password returned
// exactly once.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*CreatedStudent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	if err := s.rejectDuplicates(ctx, req.StudentNumber, req.Username, req.Email, ""); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.StudentStatusRegular
	}

	password, err := generatePassword()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate password")
	}

	student := &models.Student{
		StudentNumber: req.StudentNumber,
		Username:      req.Username,
		Email:         req.Email,
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		Address:       req.Address,
		Course:        req.Course,
		Major:         req.Major,
		YearLevel:     req.YearLevel,
		Status:        status,
		IsApproved:    true,
		IsPasswordSet: false,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	if err := s.provider.CreateAccount(ctx, identity.Account{
		ID:       student.ID,
		Email:    student.Email,
		Username: student.Username,
		Password: password,
		Role:     string(models.RoleStudent),
	}); err != nil {
		if delErr := s.repo.Delete(ctx, student.ID); delErr != nil {
			s.logger.Error("failed to roll back student after identity failure",
				zap.String("student_id", student.ID), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to provision identity account")
	}

	return &CreatedStudent{Student: *student, GeneratedPassword: password}, nil
}

// Update modifies an existing student profile.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.rejectDuplicates(ctx, req.StudentNumber, req.Username, req.Email, id); err != nil {
		return nil, err
	}

	student.StudentNumber = req.StudentNumber
	student.Username = req.Username
	student.Email = req.Email
	student.FirstName = req.FirstName
	student.MiddleName = req.MiddleName
	student.LastName = req.LastName
	student.Phone = req.Phone
	student.Address = req.Address
	student.Course = req.Course
	student.Major = req.Major
	student.YearLevel = req.YearLevel
	if req.Status != "" {
		student.Status = req.Status
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// SetApproval approves or rejects a pending registration.
func (s *StudentService) SetApproval(ctx context.Context, id string, approved bool) (*models.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetApproval(ctx, id, approved); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update approval")
	}
	student.IsApproved = approved
	s.logger.Info("student approval updated",
		zap.String("student_id", id), zap.Bool("approved", approved))
	return student, nil
}

// ApprovalStatus returns the probe payload consumed by the access gate.
func (s *StudentService) ApprovalStatus(ctx context.Context, id string) (*models.ApprovalStatus, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ApprovalStatus{
		StudentID:     student.ID,
		IsApproved:    student.IsApproved,
		IsPasswordSet: student.IsPasswordSet,
	}, nil
}

// SetPassword forwards a password change to the identity provider and marks
// the local flag.
func (s *StudentService) SetPassword(ctx context.Context, id, password string) error {
	if len(password) < 8 {
		return appErrors.Clone(appErrors.ErrValidation, "password must be at least 8 characters")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.provider.SetPassword(ctx, id, password); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set password")
	}
	if err := s.repo.SetPasswordSet(ctx, id, true); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record password flag")
	}
	return nil
}

// Delete removes the student row and the linked identity account.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if err := s.provider.DeleteAccount(ctx, id); err != nil {
		// the local row is gone; log loudly so the orphaned identity
		// account can be reaped manually
		s.logger.Error("failed to delete identity account", zap.String("student_id", id), zap.Error(err))
	}
	return nil
}

// BulkDelete removes students independently and reports per-item outcomes.
func (s *StudentService) BulkDelete(ctx context.Context, ids []string) *models.BulkSummary {
	summary := &models.BulkSummary{Outcomes: make([]models.BulkOutcome, 0, len(ids))}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, models.BulkOutcome{Ref: id, Error: err.Error()})
			continue
		}
		summary.Succeeded++
		summary.Outcomes = append(summary.Outcomes, models.BulkOutcome{Ref: id, Success: true})
	}
	s.logger.Info("bulk delete finished",
		zap.Int("succeeded", summary.Succeeded), zap.Int("failed", summary.Failed))
	return summary
}

func (s *StudentService) rejectDuplicates(ctx context.Context, studentNumber, username, email, excludeID string) error {
	fields, err := s.repo.FindDuplicateFields(ctx, studentNumber, username, email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check duplicates")
	}
	if len(fields) > 0 {
		msg := fmt.Sprintf("already in use: %s", strings.Join(fields, ", "))
		return appErrors.WithFields(appErrors.Clone(appErrors.ErrConflict, msg), fields)
	}
	return nil
}

// generatePassword returns a random URL-safe password. Predictable default
// passwords derived from profile fields are deliberately not supported.
func generatePassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
