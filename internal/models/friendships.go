package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDeclined FriendshipStatus = "declined"
)

// Friendship tracks the request lifecycle between two users. At most one row
// exists per unordered (requester, accepter) pair regardless of direction.
type Friendship struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	RequesterID uuid.UUID        `gorm:"type:uuid;not null;index" json:"requesterId"`
	AccepterID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"accepterId"`
	Status      FriendshipStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	AcceptedAt  *time.Time       `json:"acceptedAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (f *Friendship) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}

// Involves reports whether the given user is one of the two parties.
func (f *Friendship) Involves(userID uuid.UUID) bool {
	return f.RequesterID == userID || f.AccepterID == userID
}

// OtherParty returns the opposite side of the friendship from userID.
func (f *Friendship) OtherParty(userID uuid.UUID) uuid.UUID {
	if f.RequesterID == userID {
		return f.AccepterID
	}
	return f.RequesterID
}
