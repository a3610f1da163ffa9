package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-sis-api/internal/models"
	"github.com/noah-isme/campus-sis-api/internal/service"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
	"github.com/noah-isme/campus-sis-api/pkg/response"
)

// GradeHandler exposes grade entry, upload and aggregation endpoints.
type GradeHandler struct {
	grades      *service.GradeService
	students    *service.StudentService
	imports     *service.ImportService
	transcripts *service.TranscriptService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService, students *service.StudentService, imports *service.ImportService, transcripts *service.TranscriptService) *GradeHandler {
	return &GradeHandler{grades: grades, students: students, imports: imports, transcripts: transcripts}
}

// Create godoc
// @Summary Record one grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.CreateGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Create(c *gin.Context) {
	var req service.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.grades.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// List godoc
// @Summary List grades
// @Tags Grades
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param academicYear query string false "Filter by academic year"
// @Param semester query string false "Filter by semester"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	var filter models.GradeFilter
	filter.StudentID = c.Query("studentId")
	filter.AcademicYear = c.Query("academicYear")
	filter.Semester = models.Semester(strings.ToUpper(c.Query("semester")))
	filter.CourseCode = c.Query("courseCode")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil {
		filter.PageSize = size
	}

	grades, pagination, err := h.grades.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, pagination)
}

// Upload godoc
// @Summary Bulk-upload grades from a spreadsheet
// @Tags Grades
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "xlsx workbook"
// @Success 200 {object} response.Envelope
// @Router /grades/upload [post]
func (h *GradeHandler) Upload(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing file upload"))
		return
	}
	defer file.Close()

	summary, err := h.imports.ImportGrades(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Template godoc
// @Summary Download the grade upload template
// @Tags Grades
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200
// @Router /grades/template [get]
func (h *GradeHandler) Template(c *gin.Context) {
	out, err := h.transcripts.GradeTemplate()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="grade-upload-template.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", out)
}

// Summary godoc
// @Summary Previous-semester GPA and credit summary
// @Tags Grades
// @Produce json
// @Param id path string true "Student ID"
// @Param academicYear query string false "Override academic year"
// @Param semester query string false "Override semester"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/grades/summary [get]
func (h *GradeHandler) Summary(c *gin.Context) {
	semester := models.Semester(strings.ToUpper(c.Query("semester")))
	summary, err := h.grades.Summary(c.Request.Context(), c.Param("id"), c.Query("academicYear"), semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Transcript godoc
// @Summary Transcript grouped by academic term
// @Tags Grades
// @Produce json
// @Param id path string true "Student ID"
// @Param format query string false "pdf or csv for file downloads"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/transcript [get]
func (h *GradeHandler) Transcript(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	switch strings.ToLower(c.Query("format")) {
	case "pdf":
		out, err := h.transcripts.RenderPDF(c.Request.Context(), student)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="transcript.pdf"`)
		c.Data(http.StatusOK, "application/pdf", out)
	case "csv":
		out, err := h.transcripts.RenderCSV(c.Request.Context(), student)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="transcript.csv"`)
		c.Data(http.StatusOK, "text/csv", out)
	default:
		transcript, err := h.grades.Transcript(c.Request.Context(), student)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, transcript, nil)
	}
}
