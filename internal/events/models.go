package events

import (
	"time"

	"github.com/google/uuid"
)

// GalleryEvent describes a change to an album or image.
type GalleryEvent struct {
	EventType    string    `json:"eventType"`
	ResourceType string    `json:"resourceType"`
	ResourceID   string    `json:"resourceId"`
	OwnerID      string    `json:"ownerId"`
	ActionBy     string    `json:"actionBy"`
	Timestamp    time.Time `json:"timestamp"`
}

// ShareEvent describes a sharing change addressed to a recipient.
type ShareEvent struct {
	EventType    string    `json:"eventType"`
	ResourceType string    `json:"resourceType"`
	ResourceID   string    `json:"resourceId"`
	SenderID     string    `json:"senderId"`
	RecipientID  string    `json:"recipientId"`
	Permission   string    `json:"permission,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// FriendEvent describes a friendship lifecycle change.
type FriendEvent struct {
	EventType    string    `json:"eventType"`
	FriendshipID string    `json:"friendshipId"`
	ActionBy     string    `json:"actionBy"`
	TargetUserID string    `json:"targetUserId"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewGalleryEvent creates a new gallery event.
func NewGalleryEvent(eventType, resourceType string, resourceID, ownerID, actionBy uuid.UUID) *GalleryEvent {
	return &GalleryEvent{
		EventType:    eventType,
		ResourceType: resourceType,
		ResourceID:   resourceID.String(),
		OwnerID:      ownerID.String(),
		ActionBy:     actionBy.String(),
		Timestamp:    time.Now(),
	}
}

// NewShareEvent creates a new share event.
func NewShareEvent(eventType, resourceType string, resourceID, senderID, recipientID uuid.UUID, permission string) *ShareEvent {
	return &ShareEvent{
		EventType:    eventType,
		ResourceType: resourceType,
		ResourceID:   resourceID.String(),
		SenderID:     senderID.String(),
		RecipientID:  recipientID.String(),
		Permission:   permission,
		Timestamp:    time.Now(),
	}
}

// NewFriendEvent creates a new friend event.
func NewFriendEvent(eventType string, friendshipID, actionBy, targetUserID uuid.UUID) *FriendEvent {
	return &FriendEvent{
		EventType:    eventType,
		FriendshipID: friendshipID.String(),
		ActionBy:     actionBy.String(),
		TargetUserID: targetUserID.String(),
		Timestamp:    time.Now(),
	}
}
