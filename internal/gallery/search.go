package gallery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JoaoZanelato/galeria-web/internal/apperr"
	"github.com/JoaoZanelato/galeria-web/internal/models"

	"github.com/google/uuid"
)

// SharedAlbum is an album shared with the viewer, with the owner's display
// name and the granted permission attached.
type SharedAlbum struct {
	models.Album
	OwnerName  string            `json:"ownerName"`
	Permission models.Permission `json:"permission"`
}

// SharedImage is an image shared directly with the viewer.
type SharedImage struct {
	models.Image
	OwnerName  string            `json:"ownerName"`
	Permission models.Permission `json:"permission"`
}

// SharedWithMe lists the albums and individual images other users have
// shared with the acting user.
func (s *Service) SharedWithMe(ctx context.Context, actorID uuid.UUID) ([]SharedAlbum, []SharedImage, error) {
	var albums []SharedAlbum
	err := s.db.Model(&models.Album{}).
		Select("albums.*, users.username AS owner_name, shares.permission").
		Joins("JOIN shares ON shares.album_id = albums.id").
		Joins("JOIN users ON users.id = albums.owner_id").
		Where("shares.recipient_id = ?", actorID).
		Scan(&albums).Error
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	var images []SharedImage
	err = s.db.Model(&models.Image{}).
		Select("images.*, users.username AS owner_name, shares.permission").
		Joins("JOIN shares ON shares.image_id = images.id").
		Joins("JOIN users ON users.id = images.owner_id").
		Where("shares.recipient_id = ?", actorID).
		Scan(&images).Error
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	return albums, images, nil
}

// SearchFilters narrows the gallery search. Zero values mean "no filter".
type SearchFilters struct {
	TagID      *uuid.UUID
	CategoryID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// Search returns images the actor can see (own, directly shared, or inside a
// shared album) matching every supplied filter.
func (s *Service) Search(ctx context.Context, actorID uuid.UUID, f SearchFilters) ([]models.Image, error) {
	q := s.db.Model(&models.Image{}).Distinct("images.*").
		Joins("LEFT JOIN album_images ON album_images.image_id = images.id").
		Joins("LEFT JOIN shares s_img ON s_img.image_id = images.id AND s_img.recipient_id = ?", actorID).
		Joins("LEFT JOIN shares s_alb ON s_alb.album_id = album_images.album_id AND s_alb.recipient_id = ?", actorID).
		Where("images.owner_id = ? OR s_img.id IS NOT NULL OR s_alb.id IS NOT NULL", actorID)

	if f.TagID != nil {
		q = q.Joins("JOIN image_tags ON image_tags.image_id = images.id").
			Where("image_tags.tag_id = ?", *f.TagID)
	}
	if f.CategoryID != nil {
		q = q.Where("images.category_id = ?", *f.CategoryID)
	}
	if f.StartDate != nil {
		q = q.Where("images.created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("images.created_at <= ?", *f.EndDate)
	}

	var images []models.Image
	if err := q.Find(&images).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return images, nil
}

// SearchByTagName finds the actor's own images carrying a tag whose name
// contains the given term.
func (s *Service) SearchByTagName(ctx context.Context, actorID uuid.UUID, term string) ([]models.Image, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("%w: tag term is required", apperr.ErrValidation)
	}

	var images []models.Image
	err := s.db.Model(&models.Image{}).Distinct("images.*").
		Joins("JOIN image_tags ON image_tags.image_id = images.id").
		Joins("JOIN tags ON tags.id = image_tags.tag_id").
		Where("tags.name LIKE ? AND images.owner_id = ?", "%"+term+"%", actorID).
		Scan(&images).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return images, nil
}

// ListCategories returns all global categories ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return categories, nil
}

// ListAlbums returns the actor's own albums, newest first.
func (s *Service) ListAlbums(ctx context.Context, actorID uuid.UUID) ([]models.Album, error) {
	var albums []models.Album
	if err := s.db.Where("owner_id = ?", actorID).Order("created_at DESC").Find(&albums).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return albums, nil
}
