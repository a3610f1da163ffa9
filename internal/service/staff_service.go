package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-sis-api/internal/models"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
	"github.com/noah-isme/campus-sis-api/pkg/identity"
)

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.StaffUser, int, error)
	FindByID(ctx context.Context, id string) (*models.StaffUser, error)
	FindDuplicateFields(ctx context.Context, username, email, excludeID string) ([]string, error)
	Create(ctx context.Context, staff *models.StaffUser) error
	Update(ctx context.Context, staff *models.StaffUser) error
	Delete(ctx context.Context, id string) error
}

// CreateStaffRequest is the payload for creating a staff account.
type CreateStaffRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Username string          `json:"username" validate:"required,min=3"`
	FullName string          `json:"full_name" validate:"required"`
	Phone    string          `json:"phone"`
	Role     models.UserRole `json:"role" validate:"required"`
}

// UpdateStaffRequest is the payload for editing a staff account.
type UpdateStaffRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Username string          `json:"username" validate:"required,min=3"`
	FullName string          `json:"full_name" validate:"required"`
	Phone    string          `json:"phone"`
	Role     models.UserRole `json:"role" validate:"required"`
	Active   bool            `json:"active"`
}

// CreatedStaff pairs the stored row with the one-time generated password.
type CreatedStaff struct {
	Staff             models.StaffUser `json:"staff"`
	GeneratedPassword string           `json:"generated_password,omitempty"`
}

// StaffService manages staff accounts and their mirrored identity-provider
// accounts.
type StaffService struct {
	repo      staffRepository
	provider  identityProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService constructs the staff service.
func NewStaffService(repo staffRepository, provider identityProvider, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{repo: repo, provider: provider, validator: validate, logger: logger}
}

// List returns staff users with pagination metadata.
func (s *StaffService) List(ctx context.Context, filter models.StaffFilter) ([]models.StaffUser, *models.Pagination, error) {
	staff, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 10
	}
	return staff, models.NewPagination(page, size, total), nil
}

// Get returns one staff user.
func (s *StaffService) Get(ctx context.Context, id string) (*models.StaffUser, error) {
	staff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff user")
	}
	return staff, nil
}

// Create stores a staff row, provisions the identity account with the role
// tag, and returns the generated password once.
func (s *StaffService) Create(ctx context.Context, req CreateStaffRequest) (*CreatedStaff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}
	if err := validateStaffRole(req.Role); err != nil {
		return nil, err
	}
	if err := s.rejectDuplicates(ctx, req.Username, req.Email, ""); err != nil {
		return nil, err
	}

	password, err := generatePassword()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate password")
	}

	staff := &models.StaffUser{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     req.Role,
		Active:   true,
	}
	if err := s.repo.Create(ctx, staff); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff user")
	}

	if err := s.provider.CreateAccount(ctx, identity.Account{
		ID:       staff.ID,
		Email:    staff.Email,
		Username: staff.Username,
		Password: password,
		Role:     string(staff.Role),
	}); err != nil {
		if delErr := s.repo.Delete(ctx, staff.ID); delErr != nil {
			s.logger.Error("failed to roll back staff after identity failure",
				zap.String("staff_id", staff.ID), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to provision identity account")
	}

	return &CreatedStaff{Staff: *staff, GeneratedPassword: password}, nil
}

// Update edits a staff row. A role change is mirrored to the identity
// provider.
func (s *StaffService) Update(ctx context.Context, id string, req UpdateStaffRequest) (*models.StaffUser, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}
	if err := validateStaffRole(req.Role); err != nil {
		return nil, err
	}

	staff, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.rejectDuplicates(ctx, req.Username, req.Email, id); err != nil {
		return nil, err
	}

	roleChanged := staff.Role != req.Role
	staff.Email = req.Email
	staff.Username = req.Username
	staff.FullName = req.FullName
	staff.Phone = req.Phone
	staff.Role = req.Role
	staff.Active = req.Active
	if err := s.repo.Update(ctx, staff); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff user")
	}

	if roleChanged {
		if err := s.provider.SetRole(ctx, staff.ID, string(staff.Role)); err != nil {
			s.logger.Error("failed to mirror role change", zap.String("staff_id", staff.ID), zap.Error(err))
		}
	}
	return staff, nil
}

// Delete removes the staff row and the linked identity account.
func (s *StaffService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete staff user")
	}
	if err := s.provider.DeleteAccount(ctx, id); err != nil {
		s.logger.Error("failed to delete identity account", zap.String("staff_id", id), zap.Error(err))
	}
	return nil
}

func (s *StaffService) rejectDuplicates(ctx context.Context, username, email, excludeID string) error {
	fields, err := s.repo.FindDuplicateFields(ctx, username, email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check duplicates")
	}
	if len(fields) > 0 {
		msg := fmt.Sprintf("already in use: %s", strings.Join(fields, ", "))
		return appErrors.WithFields(appErrors.Clone(appErrors.ErrConflict, msg), fields)
	}
	return nil
}

func validateStaffRole(role models.UserRole) error {
	for _, r := range models.StaffRoles {
		if role == r {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("role %q is not assignable to staff", role))
}
