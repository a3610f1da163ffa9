package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-sis-api/internal/models"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
)

type checklistRepository interface {
	List(ctx context.Context, filter models.ChecklistFilter) ([]models.CurriculumChecklist, int, error)
	FindByID(ctx context.Context, id string) (*models.CurriculumChecklist, error)
	Create(ctx context.Context, row *models.CurriculumChecklist) error
	Update(ctx context.Context, row *models.CurriculumChecklist) error
	Delete(ctx context.Context, id string) error
}

// ChecklistRequest carries create/update fields for one curriculum row.
type ChecklistRequest struct {
	Course      string          `json:"course" validate:"required"`
	Major       string          `json:"major"`
	YearLevel   int             `json:"year_level" validate:"required,min=1,max=6"`
	Semester    models.Semester `json:"semester" validate:"required"`
	CourseCode  string          `json:"course_code" validate:"required"`
	CourseTitle string          `json:"course_title" validate:"required"`
	CreditUnit  float64         `json:"credit_unit" validate:"required,gt=0"`
}

// ChecklistService manages curriculum reference data.
type ChecklistService struct {
	repo      checklistRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChecklistService constructs the checklist service.
func NewChecklistService(repo checklistRepository, validate *validator.Validate, logger *zap.Logger) *ChecklistService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChecklistService{repo: repo, validator: validate, logger: logger}
}

// List returns checklist rows with pagination metadata.
func (s *ChecklistService) List(ctx context.Context, filter models.ChecklistFilter) ([]models.CurriculumChecklist, *models.Pagination, error) {
	if filter.Semester != "" && !models.ValidSemester(filter.Semester) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown semester %q", filter.Semester))
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list checklist rows")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 10
	}
	return rows, models.NewPagination(page, size, total), nil
}

// Get returns one checklist row.
func (s *ChecklistService) Get(ctx context.Context, id string) (*models.CurriculumChecklist, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "checklist row not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load checklist row")
	}
	return row, nil
}

// Create stores a checklist row.
func (s *ChecklistService) Create(ctx context.Context, req ChecklistRequest) (*models.CurriculumChecklist, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	row := &models.CurriculumChecklist{
		Course:      req.Course,
		Major:       req.Major,
		YearLevel:   req.YearLevel,
		Semester:    req.Semester,
		CourseCode:  req.CourseCode,
		CourseTitle: req.CourseTitle,
		CreditUnit:  req.CreditUnit,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create checklist row")
	}
	return row, nil
}

// Update edits a checklist row.
func (s *ChecklistService) Update(ctx context.Context, id string, req ChecklistRequest) (*models.CurriculumChecklist, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	row.Course = req.Course
	row.Major = req.Major
	row.YearLevel = req.YearLevel
	row.Semester = req.Semester
	row.CourseCode = req.CourseCode
	row.CourseTitle = req.CourseTitle
	row.CreditUnit = req.CreditUnit
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update checklist row")
	}
	return row, nil
}

// Delete removes a checklist row.
func (s *ChecklistService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "checklist row not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete checklist row")
	}
	return nil
}

func (s *ChecklistService) validate(req ChecklistRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid checklist payload")
	}
	if !models.ValidSemester(req.Semester) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown semester %q", req.Semester))
	}
	return nil
}
