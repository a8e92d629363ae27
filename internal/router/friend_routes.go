package router

import (
	"github.com/JoaoZanelato/galeria-web/internal/handlers"

	"github.com/gin-gonic/gin"
)

// FriendRoutes defines routes for friendship management
func FriendRoutes(rg *gin.RouterGroup, friendHandler *handlers.FriendHandler) {
	friends := rg.Group("/friends")
	{
		friends.GET("", friendHandler.ListFriends)
		friends.GET("/search", friendHandler.SearchUsers)
		friends.DELETE("/:friendshipId", friendHandler.RemoveFriend)

		friends.GET("/requests", friendHandler.PendingRequests)
		friends.POST("/requests", friendHandler.SendRequest)
		friends.PUT("/requests/:friendshipId", friendHandler.RespondToRequest)
	}
}
