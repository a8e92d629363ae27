package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Permission string

const (
	View Permission = "view"
	Edit Permission = "edit"
)

// ParsePermission canonicalizes the permission strings seen across schema
// evolutions of the original gallery ("compartilhado"/"editavel",
// "visualizar"/"editar"). The second return is false for unknown values and
// for the "no_share" sentinel callers use to mean "remove this recipient".
func ParsePermission(s string) (Permission, bool) {
	switch s {
	case "view", "visualizar", "compartilhado":
		return View, true
	case "edit", "editar", "editavel":
		return Edit, true
	default:
		return "", false
	}
}

// Share grants a recipient VIEW or EDIT access to exactly one album or one
// image. At most one row exists per (recipient, target); re-sharing replaces
// the whole set for a target rather than appending.
type Share struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	SenderID    uuid.UUID  `gorm:"type:uuid;not null" json:"senderId"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_recipient_album;uniqueIndex:idx_recipient_image" json:"recipientId"`
	AlbumID     *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_recipient_album" json:"albumId,omitempty"`
	ImageID     *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_recipient_image" json:"imageId,omitempty"`
	Permission  Permission `gorm:"size:20;not null" json:"permission"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (s *Share) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
