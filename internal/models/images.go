package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Image struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	StorageKey  string     `gorm:"size:255;not null" json:"storageKey"`
	URL         string     `gorm:"size:512" json:"url"`
	Description string     `gorm:"type:text" json:"description"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"ownerId"`
	CategoryID  *uuid.UUID `gorm:"type:uuid" json:"categoryId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// Tag is scoped per owner: two users can hold same-named tags as distinct rows.
type Tag struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name    string    `gorm:"size:100;not null;uniqueIndex:idx_owner_tag" json:"name"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_owner_tag" json:"ownerId"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

type ImageTag struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ImageID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_image_tag" json:"imageId"`
	TagID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_image_tag" json:"tagId"`

	Tag Tag `gorm:"foreignKey:TagID" json:"-"`
}

func (it *ImageTag) BeforeCreate(tx *gorm.DB) (err error) {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return
}
