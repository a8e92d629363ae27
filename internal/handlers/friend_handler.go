package handlers

import (
	"log"
	"net/http"

	"github.com/JoaoZanelato/galeria-web/internal/dto"
	"github.com/JoaoZanelato/galeria-web/internal/friends"
	"github.com/JoaoZanelato/galeria-web/pkg/responses"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FriendHandler struct {
	service *friends.Service
}

func NewFriendHandler(service *friends.Service) *FriendHandler {
	return &FriendHandler{service: service}
}

// POST /friends/requests
func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req dto.FriendRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	friendship, err := h.service.Request(c.Request.Context(), actorID, req.UserID)
	if err != nil {
		log.Printf("Failed to send friend request: %v", err)
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to send friend request", err.Error()))
		return
	}

	c.JSON(http.StatusCreated, responses.NewSuccessResponse("Friend request sent", friendship))
}

// PUT /friends/requests/:friendshipId
func (h *FriendHandler) RespondToRequest(c *gin.Context) {
	friendshipID, err := uuid.Parse(c.Param("friendshipId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid friendshipId", err.Error()))
		return
	}

	var req dto.FriendRespondReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	friendship, err := h.service.Respond(c.Request.Context(), actorID, friendshipID, req.Action)
	if err != nil {
		log.Printf("Failed to respond to friend request %s: %v", friendshipID, err)
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to respond to friend request", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Friend request updated", friendship))
}

// DELETE /friends/:friendshipId
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	friendshipID, err := uuid.Parse(c.Param("friendshipId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid friendshipId", err.Error()))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	if err := h.service.Remove(c.Request.Context(), actorID, friendshipID); err != nil {
		log.Printf("Failed to remove friendship %s: %v", friendshipID, err)
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to remove friend", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Friend removed", nil))
}

// GET /friends
func (h *FriendHandler) ListFriends(c *gin.Context) {
	actorID := c.MustGet("user_id").(uuid.UUID)

	list, err := h.service.ListFriends(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to list friends", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Friends retrieved successfully", list))
}

// GET /friends/requests
func (h *FriendHandler) PendingRequests(c *gin.Context) {
	actorID := c.MustGet("user_id").(uuid.UUID)

	list, err := h.service.PendingRequests(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to list pending requests", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Pending requests retrieved successfully", list))
}

// GET /friends/search?q=term
func (h *FriendHandler) SearchUsers(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Missing search term", "query parameter q is required"))
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)

	users, err := h.service.SearchUsers(c.Request.Context(), actorID, term)
	if err != nil {
		c.JSON(responses.StatusFor(err), responses.NewErrorResponse("Failed to search users", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Users retrieved successfully", users))
}
