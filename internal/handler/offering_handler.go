package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-sis-api/internal/models"
	"github.com/noah-isme/campus-sis-api/internal/service"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
	"github.com/noah-isme/campus-sis-api/pkg/response"
)

// OfferingHandler exposes subject-offering endpoints.
type OfferingHandler struct {
	offerings *service.OfferingService
}

// NewOfferingHandler constructs OfferingHandler.
func NewOfferingHandler(offerings *service.OfferingService) *OfferingHandler {
	return &OfferingHandler{offerings: offerings}
}

// Seed godoc
// @Summary Seed subject offerings for a term
// @Tags Offerings
// @Accept json
// @Produce json
// @Param payload body service.SeedOfferingsRequest true "Seed payload"
// @Success 200 {object} response.Envelope
// @Router /offerings/seed [post]
func (h *OfferingHandler) Seed(c *gin.Context) {
	var req service.SeedOfferingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	report, err := h.offerings.Seed(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// List godoc
// @Summary List offerings for a term
// @Tags Offerings
// @Produce json
// @Param academicYear query string true "Academic year"
// @Param semester query string true "Semester"
// @Success 200 {object} response.Envelope
// @Router /offerings [get]
func (h *OfferingHandler) List(c *gin.Context) {
	academicYear := c.Query("academicYear")
	semester := models.Semester(strings.ToUpper(c.Query("semester")))
	if academicYear == "" || semester == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academicYear and semester are required"))
		return
	}
	details, err := h.offerings.ListByTerm(c.Request.Context(), academicYear, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// SetActive godoc
// @Summary Activate or deactivate one offering
// @Tags Offerings
// @Accept json
// @Param id path string true "Offering ID"
// @Success 204
// @Router /offerings/{id}/active [patch]
func (h *OfferingHandler) SetActive(c *gin.Context) {
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.offerings.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
