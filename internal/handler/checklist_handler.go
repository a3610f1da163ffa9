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

// ChecklistHandler exposes curriculum checklist endpoints.
type ChecklistHandler struct {
	checklists *service.ChecklistService
}

// NewChecklistHandler constructs ChecklistHandler.
func NewChecklistHandler(checklists *service.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{checklists: checklists}
}

// List godoc
// @Summary List curriculum checklist rows
// @Tags Curriculum
// @Produce json
// @Param course query string false "Filter by course"
// @Param major query string false "Filter by major"
// @Param yearLevel query int false "Filter by year level"
// @Param semester query string false "Filter by semester"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /checklists [get]
func (h *ChecklistHandler) List(c *gin.Context) {
	var filter models.ChecklistFilter
	filter.Course = c.Query("course")
	filter.Major = c.Query("major")
	if yearLevel, err := strconv.Atoi(c.Query("yearLevel")); err == nil {
		filter.YearLevel = yearLevel
	}
	filter.Semester = models.Semester(strings.ToUpper(c.Query("semester")))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil {
		filter.PageSize = size
	}

	rows, pagination, err := h.checklists.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// Get godoc
// @Summary Get one checklist row
// @Tags Curriculum
// @Produce json
// @Param id path string true "Checklist ID"
// @Success 200 {object} response.Envelope
// @Router /checklists/{id} [get]
func (h *ChecklistHandler) Get(c *gin.Context) {
	row, err := h.checklists.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// Create godoc
// @Summary Create a checklist row
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param payload body service.ChecklistRequest true "Checklist payload"
// @Success 201 {object} response.Envelope
// @Router /checklists [post]
func (h *ChecklistHandler) Create(c *gin.Context) {
	var req service.ChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	row, err := h.checklists.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, row)
}

// Update godoc
// @Summary Update a checklist row
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param id path string true "Checklist ID"
// @Param payload body service.ChecklistRequest true "Checklist payload"
// @Success 200 {object} response.Envelope
// @Router /checklists/{id} [put]
func (h *ChecklistHandler) Update(c *gin.Context) {
	var req service.ChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	row, err := h.checklists.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// Delete godoc
// @Summary Delete a checklist row
// @Tags Curriculum
// @Param id path string true "Checklist ID"
// @Success 204
// @Router /checklists/{id} [delete]
func (h *ChecklistHandler) Delete(c *gin.Context) {
	if err := h.checklists.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
