package handlers

import (
	"net/http"
	"time"

	"github.com/JoaoZanelato/galeria-web/internal/gallery"
	"github.com/JoaoZanelato/galeria-web/pkg/responses"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SiteHandler struct {
	service *gallery.Service
}

func NewSiteHandler(service *gallery.Service) *SiteHandler {
	return &SiteHandler{service: service}
}

// GET /shared-with-me
func (h *SiteHandler) SharedWithMe(c *gin.Context) {
	actorID := c.MustGet("user_id").(uuid.UUID)

	albums, images, err := h.service.SharedWithMe(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to fetch shared resources", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Shared resources retrieved successfully", gin.H{
		"albums": albums,
		"images": images,
	}))
}

// GET /search?tagId=&categoryId=&startDate=&endDate=
func (h *SiteHandler) Search(c *gin.Context) {
	actorID := c.MustGet("user_id").(uuid.UUID)

	var f gallery.SearchFilters

	if raw := c.Query("tagId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid tagId", err.Error()))
			return
		}
		f.TagID = &id
	}
	if raw := c.Query("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid categoryId", err.Error()))
			return
		}
		f.CategoryID = &id
	}
	if raw := c.Query("startDate"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid startDate", err.Error()))
			return
		}
		f.StartDate = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid endDate", err.Error()))
			return
		}
		f.EndDate = &t
	}

	images, err := h.service.Search(c.Request.Context(), actorID, f)
	if err != nil {
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Search failed", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Search results retrieved successfully", images))
}

// GET /search/tags?q=term
func (h *SiteHandler) SearchByTag(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Missing search term", "query parameter q is required"))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	images, err := h.service.SearchByTagName(c.Request.Context(), actorID, term)
	if err != nil {
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Search failed", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Search results retrieved successfully", images))
}

// GET /categories
func (h *SiteHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to list categories", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Categories retrieved successfully", categories))
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
