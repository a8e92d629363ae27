package dto

import (
	"github.com/google/uuid"
)

type FriendRequestReq struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}

type FriendRespondReq struct {
	Action string `json:"action" binding:"required,oneof=accept decline"`
}
