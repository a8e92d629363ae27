package router

import (
	"github.com/JoaoZanelato/galeria-web/internal/handlers"

	"github.com/gin-gonic/gin"
)

// AlbumRoutes defines routes for album management
func AlbumRoutes(rg *gin.RouterGroup, albumHandler *handlers.AlbumHandler, imageHandler *handlers.ImageHandler) {
	albums := rg.Group("/albums")
	{
		albums.POST("", albumHandler.CreateAlbum)
		albums.GET("", albumHandler.ListAlbums)
		albums.GET("/:albumId", albumHandler.GetAlbum)
		albums.PUT("/:albumId", albumHandler.UpdateAlbum)
		albums.DELETE("/:albumId", albumHandler.DeleteAlbum)

		// Membership
		albums.POST("/:albumId/images", albumHandler.AddImageToAlbum)
		albums.DELETE("/:albumId/images/:imageId", imageHandler.RemoveImageFromAlbum)

		// Sharing
		albums.PUT("/:albumId/shares", albumHandler.SetAlbumShares)
	}
}
