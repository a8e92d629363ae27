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

type ImageHandler struct {
	service *gallery.Service
	shares  *sharing.Manager
}

func NewImageHandler(service *gallery.Service, shares *sharing.Manager) *ImageHandler {
	return &ImageHandler{service: service, shares: shares}
}

// POST /images
func (h *ImageHandler) CreateImage(c *gin.Context) {
	var req dto.CreateImageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	image, err := h.service.CreateImage(c.Request.Context(), actorID, gallery.CreateImageParams{
		StorageKey:   req.StorageKey,
		URL:          req.URL,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		AlbumID:      req.AlbumID,
		NewAlbumName: req.NewAlbumName,
		NewAlbumDesc: req.NewAlbumDesc,
		Tags:         req.Tags,
	})
	if err != nil {
		log.Printf("Failed to create image: %v", err)
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to create image", err.Error()))
		return
	}

	c.JSON(http.StatusCreated, responses.NewSuccessResponse("Image created successfully", image))
}

// GET /images/:imageId
func (h *ImageHandler) GetImage(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("imageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid imageId", err.Error()))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	details, err := h.service.GetImage(c.Request.Context(), actorID, imageID)
	if err != nil {
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to fetch image", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Image retrieved successfully", details))
}

// PUT /images/:imageId
func (h *ImageHandler) UpdateImage(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("imageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid imageId", err.Error()))
		return
	}

	var req dto.UpdateImageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	image, err := h.service.UpdateImage(c.Request.Context(), actorID, imageID, req.Description, req.CategoryID, req.Tags)
	if err != nil {
		log.Printf("Failed to update image %s: %v", imageID, err)
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to update image", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Image updated successfully", image))
}

// DELETE /images/:imageId
func (h *ImageHandler) DeleteImage(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("imageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid imageId", err.Error()))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	if err := h.service.DeleteImage(c.Request.Context(), actorID, imageID); err != nil {
		log.Printf("Failed to delete image %s: %v", imageID, err)
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to delete image", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Image deleted successfully", nil))
}

// PUT /images/:imageId/shares
func (h *ImageHandler) SetImageShares(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("imageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid imageId", err.Error()))
		return
	}

	var req dto.SetSharesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	applied, err := h.shares.SetShares(c.Request.Context(), actorID, access.ResourceImage, imageID, req.Entries())
	if err != nil {
		log.Printf("Failed to set image shares %s: %v", imageID, err)
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to update shares", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Shares updated successfully", applied))
}

// DELETE /albums/:albumId/images/:imageId
func (h *ImageHandler) RemoveImageFromAlbum(c *gin.Context) {
	albumID, err := uuid.Parse(c.Param("albumId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid albumId", err.Error()))
		return
	}
	imageID, err := uuid.Parse(c.Param("imageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid imageId", err.Error()))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	if err := h.service.RemoveImageFromAlbum(c.Request.Context(), actorID, imageID, albumID); err != nil {
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to remove image from album", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Image removed from album", nil))
}
