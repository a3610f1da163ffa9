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

// ContentHandler exposes announcement, event and news endpoints.
type ContentHandler struct {
	content *service.ContentService
}

// NewContentHandler constructs ContentHandler.
func NewContentHandler(content *service.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

func contentFilter(c *gin.Context) models.ContentFilter {
	var filter models.ContentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil {
		filter.PageSize = size
	}
	return filter
}

// ListAnnouncements godoc
// @Summary List announcements
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /announcements [get]
func (h *ContentHandler) ListAnnouncements(c *gin.Context) {
	items, pagination, err := h.content.ListAnnouncements(c.Request.Context(), contentFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// CreateAnnouncement godoc
// @Summary Create an announcement
// @Tags Content
// @Accept json
// @Produce json
// @Param payload body service.AnnouncementRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Router /announcements [post]
func (h *ContentHandler) CreateAnnouncement(c *gin.Context) {
	var req service.AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.content.CreateAnnouncement(c.Request.Context(), req, authorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateAnnouncement godoc
// @Summary Update an announcement
// @Tags Content
// @Accept json
// @Produce json
// @Param id path string true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Router /announcements/{id} [put]
func (h *ContentHandler) UpdateAnnouncement(c *gin.Context) {
	var req service.AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.content.UpdateAnnouncement(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// DeleteAnnouncement godoc
// @Summary Delete an announcement
// @Tags Content
// @Param id path string true "Announcement ID"
// @Success 204
// @Router /announcements/{id} [delete]
func (h *ContentHandler) DeleteAnnouncement(c *gin.Context) {
	if err := h.content.DeleteAnnouncement(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListEvents godoc
// @Summary List events
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *ContentHandler) ListEvents(c *gin.Context) {
	items, pagination, err := h.content.ListEvents(c.Request.Context(), contentFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// CreateEvent godoc
// @Summary Create an event
// @Tags Content
// @Accept json
// @Produce json
// @Param payload body service.EventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /events [post]
func (h *ContentHandler) CreateEvent(c *gin.Context) {
	var req service.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.content.CreateEvent(c.Request.Context(), req, authorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateEvent godoc
// @Summary Update an event
// @Tags Content
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [put]
func (h *ContentHandler) UpdateEvent(c *gin.Context) {
	var req service.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.content.UpdateEvent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags Content
// @Param id path string true "Event ID"
// @Success 204
// @Router /events/{id} [delete]
func (h *ContentHandler) DeleteEvent(c *gin.Context) {
	if err := h.content.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListNews godoc
// @Summary List news articles
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /news [get]
func (h *ContentHandler) ListNews(c *gin.Context) {
	items, pagination, err := h.content.ListNews(c.Request.Context(), contentFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// CreateNews godoc
// @Summary Create a news article
// @Tags Content
// @Accept json
// @Produce json
// @Param payload body service.NewsRequest true "News payload"
// @Success 201 {object} response.Envelope
// @Router /news [post]
func (h *ContentHandler) CreateNews(c *gin.Context) {
	var req service.NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.content.CreateNews(c.Request.Context(), req, authorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateNews godoc
// @Summary Update a news article
// @Tags Content
// @Accept json
// @Produce json
// @Param id path string true "News ID"
// @Success 200 {object} response.Envelope
// @Router /news/{id} [put]
func (h *ContentHandler) UpdateNews(c *gin.Context) {
	var req service.NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.content.UpdateNews(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// DeleteNews godoc
// @Summary Delete a news article
// @Tags Content
// @Param id path string true "News ID"
// @Success 204
// @Router /news/{id} [delete]
func (h *ContentHandler) DeleteNews(c *gin.Context) {
	if err := h.content.DeleteNews(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func authorID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}
