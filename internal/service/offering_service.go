package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-sis-api/internal/models"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
)

type checklistReader interface {
	ListByCourseMajor(ctx context.Context, course, major string) ([]models.CurriculumChecklist, error)
}

type offeringRepository interface {
	ExistsForTerm(ctx context.Context, checklistID, academicYear string, semester models.Semester) (bool, error)
	Create(ctx context.Context, offering *models.SubjectOffering) error
	ListByTerm(ctx context.Context, academicYear string, semester models.Semester) ([]models.OfferingDetail, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// SeedOfferingsRequest drives one seeding run: which term to open, which
// courses/majors to walk, and which course codes to offer out of their own
// semester (petition case).
type SeedOfferingsRequest struct {
	AcademicYear    string              `json:"academic_year" validate:"required"`
	Semester        models.Semester     `json:"semester" validate:"required"`
	CourseMajors    map[string][]string `json:"course_majors" validate:"required,min=1"`
	ManualOverrides []string            `json:"manual_overrides"`
}

// OfferingService seeds and lists per-term subject offerings.
type OfferingService struct {
	checklists checklistReader
	offerings  offeringRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewOfferingService constructs the offering service.
func NewOfferingService(checklists checklistReader, offerings offeringRepository, validate *validator.Validate, logger *zap.Logger) *OfferingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferingService{checklists: checklists, offerings: offerings, validator: validate, logger: logger}
}

// Seed walks every (course, major) pair's checklist and opens matching rows
// for the requested term. A row is offered when its own semester matches the
// term, or when its course code is in the manual override list. Rows already
// offered for the term are skipped, so a second identical run creates
// nothing. The loop is single-pass; a repository failure aborts the run and
// leaves prior creations in place.
func (s *OfferingService) Seed(ctx context.Context, req SeedOfferingsRequest) (*models.SeedReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid seed payload")
	}
	if !models.ValidSemester(req.Semester) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown semester %q", req.Semester))
	}

	overrides := make(map[string]struct{}, len(req.ManualOverrides))
	for _, code := range req.ManualOverrides {
		overrides[code] = struct{}{}
	}

	report := &models.SeedReport{AcademicYear: req.AcademicYear, Semester: req.Semester}
	for course, majors := range req.CourseMajors {
		for _, major := range majors {
			rows, err := s.checklists.ListByCourseMajor(ctx, course, major)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
					fmt.Sprintf("failed to load checklist for %s/%s", course, major))
			}
			for _, row := range rows {
				_, viaOverride := overrides[row.CourseCode]
				if row.Semester != req.Semester && !viaOverride {
					report.Skipped++
					continue
				}

				exists, err := s.offerings.ExistsForTerm(ctx, row.ID, req.AcademicYear, req.Semester)
				if err != nil {
					return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
						fmt.Sprintf("failed to check offering for %s", row.CourseCode))
				}
				if exists {
					report.AlreadyExists++
					s.logger.Info("offering already exists",
						zap.String("course_code", row.CourseCode),
						zap.String("academic_year", req.AcademicYear),
						zap.String("semester", string(req.Semester)))
					continue
				}

				offering := &models.SubjectOffering{
					ChecklistID:  row.ID,
					AcademicYear: req.AcademicYear,
					Semester:     req.Semester,
					IsActive:     true,
					ViaOverride:  viaOverride && row.Semester != req.Semester,
				}
				if err := s.offerings.Create(ctx, offering); err != nil {
					return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
						fmt.Sprintf("failed to offer %s", row.CourseCode))
				}
				if offering.ViaOverride {
					report.OfferedOverride++
					s.logger.Info("offered via override",
						zap.String("course_code", row.CourseCode),
						zap.String("academic_year", req.AcademicYear),
						zap.String("semester", string(req.Semester)))
				} else {
					report.Offered++
					s.logger.Info("offered",
						zap.String("course_code", row.CourseCode),
						zap.String("academic_year", req.AcademicYear),
						zap.String("semester", string(req.Semester)))
				}
			}
		}
	}

	s.logger.Info("offering seed finished",
		zap.String("academic_year", report.AcademicYear),
		zap.String("semester", string(report.Semester)),
		zap.Int("offered", report.Offered),
		zap.Int("offered_via_override", report.OfferedOverride),
		zap.Int("already_exists", report.AlreadyExists),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

// ListByTerm returns offerings joined with their checklist rows.
func (s *OfferingService) ListByTerm(ctx context.Context, academicYear string, semester models.Semester) ([]models.OfferingDetail, error) {
	if !models.ValidSemester(semester) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown semester %q", semester))
	}
	details, err := s.offerings.ListByTerm(ctx, academicYear, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offerings")
	}
	return details, nil
}

// SetActive toggles one offering.
func (s *OfferingService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.offerings.SetActive(ctx, id, active); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update offering")
	}
	return nil
}
