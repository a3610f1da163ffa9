package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-sis-api/internal/models"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
)

// passingThreshold is the highest numeric grade that still earns credit.
const passingThreshold = 3.0

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, int, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error)
	ListByStudentTerm(ctx context.Context, studentID, academicYear string, semester models.Semester) ([]models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	FindByID(ctx context.Context, id string) (*models.Grade, error)
}

type termRepository interface {
	FindActive(ctx context.Context) (*models.Term, error)
}

// CreateGradeRequest is the manual grade-entry payload.
type CreateGradeRequest struct {
	StudentID     string          `json:"student_id" validate:"required,uuid4"`
	CourseCode    string          `json:"course_code" validate:"required"`
	CourseTitle   string          `json:"course_title" validate:"required"`
	CreditUnit    float64         `json:"credit_unit" validate:"required,gt=0"`
	Grade         string          `json:"grade" validate:"required"`
	ReExam        *string         `json:"re_exam"`
	Remarks       string          `json:"remarks"`
	Instructor    string          `json:"instructor"`
	AcademicYear  string          `json:"academic_year" validate:"required"`
	Semester      models.Semester `json:"semester" validate:"required"`
	AttemptNumber int             `json:"attempt_number"`
	RetakeOf      *string         `json:"retake_of"`
}

// GradeService handles grade entry, listing and aggregation.
type GradeService struct {
	repo      gradeRepository
	terms     termRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(repo gradeRepository, terms termRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, terms: terms, cache: cache, validator: validate, logger: logger}
}

// Create records one grade row. A duplicate (student, course, term, attempt)
// surfaces as a conflict.
func (s *GradeService) Create(ctx context.Context, req CreateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if !models.ValidSemester(req.Semester) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown semester %q", req.Semester))
	}
	if err := validateGradeValue(req.Grade); err != nil {
		return nil, err
	}
	if req.ReExam != nil && *req.ReExam != "" {
		if err := validateGradeValue(*req.ReExam); err != nil {
			return nil, err
		}
	}

	attempt := req.AttemptNumber
	if attempt < 1 {
		attempt = 1
	}
	grade := &models.Grade{
		StudentID:     req.StudentID,
		CourseCode:    req.CourseCode,
		CourseTitle:   req.CourseTitle,
		CreditUnit:    req.CreditUnit,
		Grade:         req.Grade,
		ReExam:        req.ReExam,
		Remarks:       req.Remarks,
		Instructor:    req.Instructor,
		AcademicYear:  req.AcademicYear,
		Semester:      req.Semester,
		AttemptNumber: attempt,
		RetakeOf:      req.RetakeOf,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}
	s.invalidateSummary(ctx, grade.StudentID)
	return grade, nil
}

// List returns grade rows with pagination metadata.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, *models.Pagination, error) {
	if filter.Semester != "" && !models.ValidSemester(filter.Semester) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown semester %q", filter.Semester))
	}
	grades, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 10
	}
	return grades, models.NewPagination(page, size, total), nil
}

// Summary aggregates the student's previous-semester grades into a GPA and
// credit summary. The term defaults to one semester before the active term
// and the result is cached per student+term.
func (s *GradeService) Summary(ctx context.Context, studentID, academicYear string, semester models.Semester) (*models.GradeSummary, error) {
	if academicYear == "" || semester == "" {
		active, err := s.terms.FindActive(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "no active term configured")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve active term")
		}
		academicYear, semester = previousTerm(active.AcademicYear, active.Semester)
	}
	if !models.ValidSemester(semester) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown semester %q", semester))
	}

	cacheKey := summaryCacheKey(studentID, academicYear, semester)
	if s.cache != nil {
		var cached models.GradeSummary
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	grades, err := s.repo.ListByStudentTerm(ctx, studentID, academicYear, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term grades")
	}

	summary := summarize(studentID, academicYear, semester, grades)
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, 0); err != nil {
			s.logger.Warn("failed to cache grade summary", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return summary, nil
}

// Transcript groups all of the student's grades by academic year and
// semester, most recent first.
func (s *GradeService) Transcript(ctx context.Context, student *models.Student) (*models.Transcript, error) {
	grades, err := s.repo.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	type termKey struct {
		year     string
		semester models.Semester
	}
	grouped := make(map[termKey][]models.Grade)
	order := make([]termKey, 0)
	for _, g := range grades {
		k := termKey{g.AcademicYear, g.Semester}
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], g)
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].year != order[j].year {
			return order[i].year > order[j].year
		}
		return semesterRank(order[i].semester) > semesterRank(order[j].semester)
	})

	terms := make([]models.TranscriptTerm, 0, len(order))
	for _, k := range order {
		terms = append(terms, models.TranscriptTerm{
			AcademicYear: k.year,
			Semester:     k.semester,
			Grades:       grouped[k],
		})
	}

	name := strings.TrimSpace(strings.Join([]string{student.FirstName, student.MiddleName, student.LastName}, " "))
	name = strings.Join(strings.Fields(name), " ")
	return &models.Transcript{
		StudentID:     student.ID,
		StudentNumber: student.StudentNumber,
		StudentName:   name,
		Course:        student.Course,
		Major:         student.Major,
		Terms:         terms,
	}, nil
}

func (s *GradeService) invalidateSummary(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("grades:summary:%s:*", studentID)); err != nil {
		s.logger.Warn("failed to invalidate grade summary cache", zap.String("student_id", studentID), zap.Error(err))
	}
}

func summaryCacheKey(studentID, academicYear string, semester models.Semester) string {
	return fmt.Sprintf("grades:summary:%s:%s:%s", studentID, academicYear, semester)
}

// summarize folds term grades into the GPA/credit summary. INC and DRP rows
// are excluded from every sum; credit is earned only at or below the passing
// threshold.
func summarize(studentID, academicYear string, semester models.Semester, grades []models.Grade) *models.GradeSummary {
	var enrolled, earned, weighted float64
	courses := 0
	for _, g := range grades {
		value := g.EffectiveGrade()
		if value == models.GradeIncomplete || value == models.GradeDropped {
			continue
		}
		numeric, err := strconv.ParseFloat(value, 64)
		if err != nil {
			continue
		}
		enrolled += g.CreditUnit
		weighted += g.CreditUnit * numeric
		courses++
		if numeric <= passingThreshold {
			earned += g.CreditUnit
		}
	}
	gpa := "0.00"
	if enrolled > 0 {
		gpa = fmt.Sprintf("%.2f", weighted/enrolled)
	}
	return &models.GradeSummary{
		StudentID:       studentID,
		AcademicYear:    academicYear,
		Semester:        semester,
		GPA:             gpa,
		CreditsEnrolled: enrolled,
		CreditsEarned:   earned,
		Courses:         courses,
	}
}

func validateGradeValue(value string) error {
	if value == models.GradeIncomplete || value == models.GradeDropped {
		return nil
	}
	numeric, err := strconv.ParseFloat(value, 64)
	if err != nil || numeric < 1.0 || numeric > 5.0 {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("grade must be numeric (1.00-5.00), INC or DRP; got %q", value))
	}
	return nil
}

func semesterRank(s models.Semester) int {
	switch s {
	case models.SemesterFirst:
		return 1
	case models.SemesterSecond:
		return 2
	case models.SemesterSummer:
		return 3
	}
	return 0
}

// previousTerm steps one semester back in the school calendar. An academic
// year is written "2023-2024"; stepping back from FIRST crosses into the
// prior year's SUMMER.
func previousTerm(academicYear string, semester models.Semester) (string, models.Semester) {
	switch semester {
	case models.SemesterSummer:
		return academicYear, models.SemesterSecond
	case models.SemesterSecond:
		return academicYear, models.SemesterFirst
	default:
		return previousAcademicYear(academicYear), models.SemesterSummer
	}
}

func previousAcademicYear(academicYear string) string {
	parts := strings.SplitN(academicYear, "-", 2)
	if len(parts) != 2 {
		return academicYear
	}
	start, err1 := strconv.Atoi(parts[0])
	end, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return academicYear
	}
	return fmt.Sprintf("%d-%d", start-1, end-1)
}
