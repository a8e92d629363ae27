package router

import (
	"github.com/JoaoZanelato/galeria-web/internal/handlers"

	"github.com/gin-gonic/gin"
)

// ImageRoutes defines routes for image metadata management
func ImageRoutes(rg *gin.RouterGroup, imageHandler *handlers.ImageHandler) {
	images := rg.Group("/images")
	{
		images.POST("", imageHandler.CreateImage)
		images.GET("/:imageId", imageHandler.GetImage)
		images.PUT("/:imageId", imageHandler.UpdateImage)
		images.DELETE("/:imageId", imageHandler.DeleteImage)

		// Sharing
		images.PUT("/:imageId/shares", imageHandler.SetImageShares)
	}
}
