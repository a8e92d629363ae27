package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Album struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (a *Album) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// AlbumImage is the membership link between albums and images. An image can
// appear in any number of albums; the link carries no ownership.
type AlbumImage struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AlbumID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_album_image" json:"albumId"`
	ImageID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_album_image" json:"imageId"`

	Album Album `gorm:"foreignKey:AlbumID" json:"-"`
	Image Image `gorm:"foreignKey:ImageID" json:"-"`
}

func (ai *AlbumImage) BeforeCreate(tx *gorm.DB) (err error) {
	if ai.ID == uuid.Nil {
		ai.ID = uuid.New()
	}
	return
}
