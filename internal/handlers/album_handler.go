package handlers

import (
	"log"
	"net/http"

	"github.com/JoaoZanelato/galeria-web/internal/access"
	"github.com/JoaoZanelato/galeria-web/internal/dto"
	"github.com/JoaoZanelato/galeria-web/internal/gallery"
	"github.com/JoaoZanelato/galeria-web/internal/sharing"
	"github.com/JoaoZanelato/galeria-web/pkg/responses"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AlbumHandler struct {
	service *gallery.Service
	shares  *sharing.Manager
}

func NewAlbumHandler(service *gallery.Service, shares *sharing.Manager) *AlbumHandler {
	return &AlbumHandler{service: service, shares: shares}
}

// POST /albums
func (h *AlbumHandler) CreateAlbum(c *gin.Context) {
	var req dto.CreateAlbumReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	album, err := h.service.CreateAlbum(c.Request.Context(), actorID, req.Name, req.Description)
	if err != nil {
		log.Printf("Failed to create album: %v", err)
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to create album", err.Error()))
		return
	}

	c.JSON(http.StatusCreated, responses.NewSuccessResponse("Album created successfully", album))
}

// GET /albums
func (h *AlbumHandler) ListAlbums(c *gin.Context) {
	actorID := c.MustGet("user_id").(uuid.UUID)

	albums, err := h.service.ListAlbums(c.Request.Context(), actorID)
	if err != nil {
		log.Printf("Failed to list albums: %v", err)
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to list albums", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Albums retrieved successfully", albums))
}

// GET /albums/:albumId
func (h *AlbumHandler) GetAlbum(c *gin.Context) {
	albumID, err := uuid.Parse(c.Param("albumId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid albumId", err.Error()))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	details, err := h.service.GetAlbum(c.Request.Context(), actorID, albumID)
	if err != nil {
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to fetch album", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Album retrieved successfully", details))
}

// PUT /albums/:albumId
func (h *AlbumHandler) UpdateAlbum(c *gin.Context) {
	albumID, err := uuid.Parse(c.Param("albumId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid albumId", err.Error()))
		return
	}

	var req dto.UpdateAlbumReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	album, err := h.service.UpdateAlbum(c.Request.Context(), actorID, albumID, req.Name, req.Description)
	if err != nil {
		log.Printf("Failed to update album %s: %v", albumID, err)
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to update album", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Album updated successfully", album))
}

// DELETE /albums/:albumId
func (h *AlbumHandler) DeleteAlbum(c *gin.Context) {
	albumID, err := uuid.Parse(c.Param("albumId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid albumId", err.Error()))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	if err := h.service.DeleteAlbum(c.Request.Context(), actorID, albumID); err != nil {
		log.Printf("Failed to delete album %s: %v", albumID, err)
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to delete album", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Album deleted successfully", nil))
}

// PUT /albums/:albumId/shares
func (h *AlbumHandler) SetAlbumShares(c *gin.Context) {
	albumID, err := uuid.Parse(c.Param("albumId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid albumId", err.Error()))
		return
	}

	var req dto.SetSharesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	applied, err := h.shares.SetShares(c.Request.Context(), actorID, access.ResourceAlbum, albumID, req.Entries())
	if err != nil {
		log.Printf("Failed to set album shares %s: %v", albumID, err)
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to update shares", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Shares updated successfully", applied))
}

// POST /albums/:albumId/images
func (h *AlbumHandler) AddImageToAlbum(c *gin.Context) {
	albumID, err := uuid.Parse(c.Param("albumId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid albumId", err.Error()))
		return
	}

	var req dto.AddImageToAlbumReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	if err := h.service.AddImageToAlbum(c.Request.Context(), actorID, req.ImageID, albumID); err != nil {
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to add image to album", err.Error()))
		return
	}

	c.JSON(http.StatusCreated, responses.NewSuccessResponse("Image added to album", nil))
}
