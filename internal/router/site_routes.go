package router

import (
	"github.com/JoaoZanelato/galeria-web/internal/handlers"
	"github.com/JoaoZanelato/galeria-web/internal/middleware"
	"github.com/JoaoZanelato/galeria-web/internal/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handlers bundles everything SetupRouter wires into the engine.
type Handlers struct {
	Auth   *handlers.AuthHandler
	Album  *handlers.AlbumHandler
	Image  *handlers.ImageHandler
	Friend *handlers.FriendHandler
	Site   *handlers.SiteHandler
}

func SetupRouter(router *gin.Engine, db *gorm.DB, hub *notify.Hub, h Handlers) {

	//v1 api
	v1 := router.Group("/api/v1")

	v1.POST("/auth/register", h.Auth.Register)
	v1.POST("/auth/login", h.Auth.Login)

	protectedRoutes := v1.Group("/")
	protectedRoutes.Use(middleware.AuthMiddleware(db))

	AlbumRoutes(protectedRoutes, h.Album, h.Image)
	ImageRoutes(protectedRoutes, h.Image)
	FriendRoutes(protectedRoutes, h.Friend)

	protectedRoutes.GET("/shared-with-me", h.Site.SharedWithMe)
	protectedRoutes.GET("/search", h.Site.Search)
	protectedRoutes.GET("/search/tags", h.Site.SearchByTag)
	protectedRoutes.GET("/categories", h.Site.ListCategories)

	// WebSocket endpoint authenticates via ?token= since browsers cannot
	// set headers on the upgrade request.
	router.GET("/ws", func(c *gin.Context) {
		notify.Handle(hub, c.Writer, c.Request)
	})
}
