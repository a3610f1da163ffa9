package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-sis-api/internal/service"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
	"github.com/noah-isme/campus-sis-api/pkg/response"
)

// ImportHandler exposes the student bulk-upload endpoints.
type ImportHandler struct {
	imports     *service.ImportService
	transcripts *service.TranscriptService
}

// NewImportHandler constructs ImportHandler.
func NewImportHandler(imports *service.ImportService, transcripts *service.TranscriptService) *ImportHandler {
	return &ImportHandler{imports: imports, transcripts: transcripts}
}

// UploadStudents godoc
// @Summary Bulk-upload students from a spreadsheet
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "xlsx workbook"
// @Success 200 {object} response.Envelope
// @Router /students/upload [post]
func (h *ImportHandler) UploadStudents(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing file upload"))
		return
	}
	defer file.Close()

	summary, err := h.imports.ImportStudents(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// StudentTemplate godoc
// @Summary Download the student upload template
// @Tags Students
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200
// @Router /students/template [get]
func (h *ImportHandler) StudentTemplate(c *gin.Context) {
	out, err := h.transcripts.StudentTemplate()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="student-upload-template.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", out)
}
