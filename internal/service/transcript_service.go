package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-sis-api/internal/models"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
	"github.com/noah-isme/campus-sis-api/pkg/export"
)

// gradeTemplateHeaders is the column set accepted by the grade upload,
// published verbatim in the downloadable template.
var gradeTemplateHeaders = []string{
	"Student Number", "Course Code", "Course Title", "Credit Unit",
	"Grade", "Re-Exam", "Remarks", "Instructor", "Academic Year", "Semester",
}

// studentTemplateHeaders is the column set for the student bulk upload.
var studentTemplateHeaders = []string{
	"Student Number", "Username", "Email", "First Name", "Middle Name",
	"Last Name", "Phone", "Address", "Course", "Major", "Year Level",
}

// TranscriptService renders transcripts and upload templates to file
// formats.
type TranscriptService struct {
	grades *GradeService
	pdf    *export.PDFExporter
	xlsx   *export.XLSXExporter
	csv    *export.CSVExporter
	logger *zap.Logger
}

// NewTranscriptService constructs the transcript service.
func NewTranscriptService(grades *GradeService, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{
		grades: grades,
		pdf:    export.NewPDFExporter(),
		xlsx:   export.NewXLSXExporter(),
		csv:    export.NewCSVExporter(),
		logger: logger,
	}
}

// RenderPDF builds the transcript and renders one table per academic term.
func (s *TranscriptService) RenderPDF(ctx context.Context, student *models.Student) ([]byte, error) {
	transcript, err := s.grades.Transcript(ctx, student)
	if err != nil {
		return nil, err
	}

	sections := make([]export.Section, 0, len(transcript.Terms))
	for _, term := range transcript.Terms {
		rows := make([]map[string]string, 0, len(term.Grades))
		for _, g := range term.Grades {
			rows = append(rows, map[string]string{
				"Code":       g.CourseCode,
				"Title":      g.CourseTitle,
				"Units":      fmt.Sprintf("%.1f", g.CreditUnit),
				"Grade":      g.EffectiveGrade(),
				"Instructor": g.Instructor,
			})
		}
		sections = append(sections, export.Section{
			Title: fmt.Sprintf("%s - %s SEMESTER", term.AcademicYear, term.Semester),
			Data: export.Dataset{
				Headers: []string{"Code", "Title", "Units", "Grade", "Instructor"},
				Rows:    rows,
			},
		})
	}
	if len(sections) == 0 {
		sections = []export.Section{{
			Title: "NO GRADES ON RECORD",
			Data:  export.Dataset{Headers: []string{"Code", "Title", "Units", "Grade", "Instructor"}},
		}}
	}

	title := fmt.Sprintf("Transcript of Records - %s (%s)", transcript.StudentName, transcript.StudentNumber)
	out, err := s.pdf.RenderSections(title, sections)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript pdf")
	}
	return out, nil
}

// RenderCSV flattens the transcript into one CSV table with term columns.
func (s *TranscriptService) RenderCSV(ctx context.Context, student *models.Student) ([]byte, error) {
	transcript, err := s.grades.Transcript(ctx, student)
	if err != nil {
		return nil, err
	}

	headers := []string{"Academic Year", "Semester", "Code", "Title", "Units", "Grade", "Instructor"}
	rows := make([]map[string]string, 0)
	for _, term := range transcript.Terms {
		for _, g := range term.Grades {
			rows = append(rows, map[string]string{
				"Academic Year": term.AcademicYear,
				"Semester":      string(term.Semester),
				"Code":          g.CourseCode,
				"Title":         g.CourseTitle,
				"Units":         fmt.Sprintf("%.1f", g.CreditUnit),
				"Grade":         g.EffectiveGrade(),
				"Instructor":    g.Instructor,
			})
		}
	}
	out, err := s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript csv")
	}
	return out, nil
}

// GradeTemplate returns an empty xlsx workbook with the upload headers and
// fixed column widths.
func (s *TranscriptService) GradeTemplate() ([]byte, error) {
	out, err := s.xlsx.Render("Grades", export.Dataset{Headers: gradeTemplateHeaders}, 18)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render grade template")
	}
	return out, nil
}

// StudentTemplate returns an empty xlsx workbook for the student bulk
// upload.
func (s *TranscriptService) StudentTemplate() ([]byte, error) {
	out, err := s.xlsx.Render("Students", export.Dataset{Headers: studentTemplateHeaders}, 18)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render student template")
	}
	return out, nil
}
