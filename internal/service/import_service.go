package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-sis-api/internal/models"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
	"github.com/noah-isme/campus-sis-api/pkg/spreadsheet"
)

// Spreadsheet header names accepted by the bulk uploads. Matching is
// case-insensitive after trimming.
var (
	gradeColumnAliases = map[string]string{
		"student number": "student_number",
		"student_number": "student_number",
		"course code":    "course_code",
		"course_code":    "course_code",
		"course title":   "course_title",
		"course_title":   "course_title",
		"credit unit":    "credit_unit",
		"credit_unit":    "credit_unit",
		"units":          "credit_unit",
		"grade":          "grade",
		"re-exam":        "re_exam",
		"re_exam":        "re_exam",
		"remarks":        "remarks",
		"instructor":     "instructor",
		"academic year":  "academic_year",
		"academic_year":  "academic_year",
		"semester":       "semester",
	}
	studentColumnAliases = map[string]string{
		"student number": "student_number",
		"student_number": "student_number",
		"username":       "username",
		"email":          "email",
		"first name":     "first_name",
		"first_name":     "first_name",
		"middle name":    "middle_name",
		"middle_name":    "middle_name",
		"last name":      "last_name",
		"last_name":      "last_name",
		"phone":          "phone",
		"address":        "address",
		"course":         "course",
		"major":          "major",
		"year level":     "year_level",
		"year_level":     "year_level",
		"birth date":     "birth_date",
		"birth_date":     "birth_date",
	}
)

type studentLookup interface {
	FindByStudentNumber(ctx context.Context, studentNumber string) (*models.Student, error)
}

// ImportService turns uploaded xlsx workbooks into grade and student rows.
// Rows are processed independently; a bad row is reported and does not stop
// the rest.
type ImportService struct {
	grades   *GradeService
	students *StudentService
	lookup   studentLookup
	logger   *zap.Logger
}

// NewImportService constructs the import service.
func NewImportService(grades *GradeService, students *StudentService, lookup studentLookup, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{grades: grades, students: students, lookup: lookup, logger: logger}
}

// ImportGrades reads an xlsx workbook and creates one grade row per sheet
// row. Student numbers are resolved to ids; date-like cells are normalised
// from Excel serials.
func (s *ImportService) ImportGrades(ctx context.Context, r io.Reader) (*models.BulkSummary, error) {
	rows, err := spreadsheet.ReadSheet(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable workbook")
	}

	summary := &models.BulkSummary{Outcomes: make([]models.BulkOutcome, 0, len(rows))}
	for i, raw := range rows {
		ref := fmt.Sprintf("row %d", i+2)
		row := canonicalize(raw, gradeColumnAliases)
		if number := row["student_number"]; number != "" {
			ref = number
		}

		req, err := s.gradeRequestFromRow(ctx, row)
		if err != nil {
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, models.BulkOutcome{Ref: ref, Error: err.Error()})
			continue
		}
		if _, err := s.grades.Create(ctx, *req); err != nil {
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, models.BulkOutcome{Ref: ref, Error: err.Error()})
			continue
		}
		summary.Succeeded++
		summary.Outcomes = append(summary.Outcomes, models.BulkOutcome{Ref: ref, Success: true})
	}

	s.logger.Info("grade import finished",
		zap.Int("succeeded", summary.Succeeded), zap.Int("failed", summary.Failed))
	return summary, nil
}

// ImportStudents reads an xlsx workbook and creates one approved student per
// sheet row, each with a generated password included in the row outcome.
func (s *ImportService) ImportStudents(ctx context.Context, r io.Reader) (*models.BulkSummary, error) {
	rows, err := spreadsheet.ReadSheet(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable workbook")
	}

	summary := &models.BulkSummary{Outcomes: make([]models.BulkOutcome, 0, len(rows))}
	for i, raw := range rows {
		ref := fmt.Sprintf("row %d", i+2)
		row := canonicalize(raw, studentColumnAliases)
		if number := row["student_number"]; number != "" {
			ref = number
		}

		yearLevel, _ := strconv.Atoi(row["year_level"])
		created, err := s.students.Create(ctx, CreateStudentRequest{
			StudentNumber: row["student_number"],
			Username:      row["username"],
			Email:         row["email"],
			FirstName:     row["first_name"],
			MiddleName:    row["middle_name"],
			LastName:      row["last_name"],
			Phone:         row["phone"],
			Address:       row["address"],
			Course:        row["course"],
			Major:         row["major"],
			YearLevel:     yearLevel,
		})
		if err != nil {
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, models.BulkOutcome{Ref: ref, Error: err.Error()})
			continue
		}
		summary.Succeeded++
		summary.Outcomes = append(summary.Outcomes, models.BulkOutcome{
			Ref:     ref,
			Success: true,
			Detail:  created.GeneratedPassword,
		})
	}

	s.logger.Info("student import finished",
		zap.Int("succeeded", summary.Succeeded), zap.Int("failed", summary.Failed))
	return summary, nil
}

func (s *ImportService) gradeRequestFromRow(ctx context.Context, row map[string]string) (*CreateGradeRequest, error) {
	number := row["student_number"]
	if number == "" {
		return nil, fmt.Errorf("missing student number")
	}
	student, err := s.lookup.FindByStudentNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("unknown student number %q", number)
	}

	credit, err := strconv.ParseFloat(row["credit_unit"], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid credit unit %q", row["credit_unit"])
	}

	var reExam *string
	if v := row["re_exam"]; v != "" {
		reExam = &v
	}
	return &CreateGradeRequest{
		StudentID:    student.ID,
		CourseCode:   row["course_code"],
		CourseTitle:  row["course_title"],
		CreditUnit:   credit,
		Grade:        row["grade"],
		ReExam:       reExam,
		Remarks:      row["remarks"],
		Instructor:   row["instructor"],
		AcademicYear: row["academic_year"],
		Semester:     models.Semester(strings.ToUpper(row["semester"])),
	}, nil
}

// canonicalize lowers header names and maps known aliases onto canonical
// field keys. Date-like columns are normalised from Excel serials.
func canonicalize(row spreadsheet.Row, aliases map[string]string) map[string]string {
	out := make(map[string]string, len(row))
	for header, value := range row {
		key, ok := aliases[strings.ToLower(strings.TrimSpace(header))]
		if !ok {
			continue
		}
		if strings.Contains(key, "date") {
			value = spreadsheet.ParseDateCell(value)
		}
		out[key] = value
	}
	return out
}
