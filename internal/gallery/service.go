// Package gallery owns album and image lifecycle: creation, metadata updates
// and cascade deletion.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/JoaoZanelato/galeria-web/internal/access"
	"github.com/JoaoZanelato/galeria-web/internal/apperr"
	"github.com/JoaoZanelato/galeria-web/internal/blobstore"
	"github.com/JoaoZanelato/galeria-web/internal/events"
	"github.com/JoaoZanelato/galeria-web/internal/kafka"
	"github.com/JoaoZanelato/galeria-web/internal/models"
	"github.com/JoaoZanelato/galeria-web/internal/redis"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	resolver *access.Resolver
	blobs    blobstore.Store
	producer *kafka.Producer
	cache    *redis.Service
	log      zerolog.Logger
}

func NewService(db *gorm.DB, resolver *access.Resolver, blobs blobstore.Store, producer *kafka.Producer, cache *redis.Service, logger zerolog.Logger) *Service {
	return &Service{
		db:       db,
		resolver: resolver,
		blobs:    blobs,
		producer: producer,
		cache:    cache,
		log:      logger,
	}
}

// Resolver exposes the permission resolver for the route layer.
func (s *Service) Resolver() *access.Resolver {
	return s.resolver
}

func (s *Service) CreateAlbum(ctx context.Context, actorID uuid.UUID, name, description string) (*models.Album, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: album name is required", apperr.ErrValidation)
	}

	album := models.Album{
		Name:        name,
		Description: description,
		OwnerID:     actorID,
	}
	if err := s.db.Create(&album).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	if s.producer != nil {
		event := events.NewGalleryEvent(events.AlbumCreated, events.ResourceAlbum, album.ID, actorID, actorID)
		if err := s.producer.PublishGalleryEvent(ctx, event); err != nil {
			log.Printf("Failed to publish album created event: %v", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.SetAlbumMetadata(ctx, &album); err != nil {
			log.Printf("Failed to cache album metadata: %v", err)
		}
	}

	return &album, nil
}

// AlbumDetails is what the album page renders: the album, the viewer's
// resolved access, its images and, for the owner, the current share set.
type AlbumDetails struct {
	Album  models.Album   `json:"album"`
	Access access.Access  `json:"access"`
	Images []models.Image `json:"images"`
	Shares []models.Share `json:"shares,omitempty"`
}

func (s *Service) GetAlbum(ctx context.Context, actorID, albumID uuid.UUID) (*AlbumDetails, error) {
	album, err := s.loadAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}

	acc, err := s.resolver.ResolveAccess(ctx, actorID, access.ResourceAlbum, albumID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if acc.Level == access.None {
		return nil, fmt.Errorf("%w: no access to album %s", apperr.ErrPermissionDenied, albumID)
	}

	details := AlbumDetails{Album: *album, Access: acc}

	err = s.db.
		Joins("JOIN album_images ON album_images.image_id = images.id").
		Where("album_images.album_id = ?", albumID).
		Find(&details.Images).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	if acc.IsOwner {
		if err := s.db.Where("album_id = ?", albumID).Find(&details.Shares).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		}
	}

	return &details, nil
}

// UpdateAlbum renames or re-describes an album. Allowed for the owner and
// for recipients of an edit-level album share.
func (s *Service) UpdateAlbum(ctx context.Context, actorID, albumID uuid.UUID, name, description string) (*models.Album, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: album name is required", apperr.ErrValidation)
	}

	album, err := s.loadAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}

	acc, err := s.resolver.ResolveAccess(ctx, actorID, access.ResourceAlbum, albumID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if acc.Level < access.Edit {
		return nil, fmt.Errorf("%w: edit access required to update this album", apperr.ErrPermissionDenied)
	}

	album.Name = name
	album.Description = description
	if err := s.db.Save(album).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	if s.producer != nil {
		event := events.NewGalleryEvent(events.AlbumUpdated, events.ResourceAlbum, album.ID, album.OwnerID, actorID)
		if err := s.producer.PublishGalleryEvent(ctx, event); err != nil {
			log.Printf("Failed to publish album updated event: %v", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.SetAlbumMetadata(ctx, album); err != nil {
			log.Printf("Failed to update album cache: %v", err)
		}
	}

	return album, nil
}

// CreateImageParams registers an already-uploaded blob into the gallery.
// Either AlbumID targets an existing album the actor may edit, or
// NewAlbumName asks for a fresh album owned by the actor.
type CreateImageParams struct {
	StorageKey   string
	URL          string
	Description  string
	CategoryID   *uuid.UUID
	AlbumID      *uuid.UUID
	NewAlbumName string
	NewAlbumDesc string
	Tags         []string
}

func (s *Service) CreateImage(ctx context.Context, actorID uuid.UUID, p CreateImageParams) (*models.Image, error) {
	if strings.TrimSpace(p.StorageKey) == "" {
		return nil, fmt.Errorf("%w: storage key is required", apperr.ErrValidation)
	}
	if p.AlbumID == nil && strings.TrimSpace(p.NewAlbumName) == "" {
		return nil, fmt.Errorf("%w: an existing album or a new album name is required", apperr.ErrValidation)
	}

	if p.AlbumID != nil {
		if _, err := s.loadAlbum(ctx, *p.AlbumID); err != nil {
			return nil, err
		}
		acc, err := s.resolver.ResolveAccess(ctx, actorID, access.ResourceAlbum, *p.AlbumID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		}
		if acc.Level < access.Edit {
			return nil, fmt.Errorf("%w: edit access required to add images to this album", apperr.ErrPermissionDenied)
		}
	}

	var image models.Image
	err := s.db.Transaction(func(tx *gorm.DB) error {
		albumID := uuid.Nil
		if p.AlbumID != nil {
			albumID = *p.AlbumID
		} else {
			album := models.Album{Name: p.NewAlbumName, Description: p.NewAlbumDesc, OwnerID: actorID}
			if err := tx.Create(&album).Error; err != nil {
				return err
			}
			albumID = album.ID
		}

		image = models.Image{
			StorageKey:  p.StorageKey,
			URL:         p.URL,
			Description: p.Description,
			OwnerID:     actorID,
			CategoryID:  p.CategoryID,
		}
		if err := tx.Create(&image).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.AlbumImage{AlbumID: albumID, ImageID: image.ID}).Error; err != nil {
			return err
		}

		return s.replaceTags(tx, actorID, image.ID, p.Tags)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	if s.producer != nil {
		event := events.NewGalleryEvent(events.ImageCreated, events.ResourceImage, image.ID, actorID, actorID)
		if err := s.producer.PublishGalleryEvent(ctx, event); err != nil {
			log.Printf("Failed to publish image created event: %v", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.SetImageMetadata(ctx, &image); err != nil {
			log.Printf("Failed to cache image metadata: %v", err)
		}
	}

	return &image, nil
}

// UpdateImage changes description, category and the full tag set of an
// image. The actor needs edit access (owner, direct edit share, or edit
// share on a containing album).
func (s *Service) UpdateImage(ctx context.Context, actorID, imageID uuid.UUID, description string, categoryID *uuid.UUID, tags []string) (*models.Image, error) {
	var image models.Image
	if err := s.db.First(&image, "id = ?", imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: image %s", apperr.ErrNotFound, imageID)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	acc, err := s.resolver.ResolveAccess(ctx, actorID, access.ResourceImage, imageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if acc.Level < access.Edit {
		return nil, fmt.Errorf("%w: edit access required to update this image", apperr.ErrPermissionDenied)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		image.Description = description
		image.CategoryID = categoryID
		if err := tx.Save(&image).Error; err != nil {
			return err
		}
		// Tags stay scoped to the image owner even when an edit-share
		// recipient performs the update.
		return s.replaceTags(tx, image.OwnerID, image.ID, tags)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	if s.producer != nil {
		event := events.NewGalleryEvent(events.ImageUpdated, events.ResourceImage, image.ID, image.OwnerID, actorID)
		if err := s.producer.PublishGalleryEvent(ctx, event); err != nil {
			log.Printf("Failed to publish image updated event: %v", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.SetImageMetadata(ctx, &image); err != nil {
			log.Printf("Failed to update image cache: %v", err)
		}
	}

	return &image, nil
}

// AddImageToAlbum links an existing image into another album. The actor
// needs edit access on both sides.
func (s *Service) AddImageToAlbum(ctx context.Context, actorID, imageID, albumID uuid.UUID) error {
	if _, err := s.loadAlbum(ctx, albumID); err != nil {
		return err
	}
	if err := s.db.First(&models.Image{}, "id = ?", imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: image %s", apperr.ErrNotFound, imageID)
		}
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	for _, check := range []struct {
		rt access.ResourceType
		id uuid.UUID
	}{
		{access.ResourceAlbum, albumID},
		{access.ResourceImage, imageID},
	} {
		acc, err := s.resolver.ResolveAccess(ctx, actorID, check.rt, check.id)
		if err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		}
		if acc.Level < access.Edit {
			return fmt.Errorf("%w: edit access required on the %s", apperr.ErrPermissionDenied, check.rt)
		}
	}

	var existing int64
	if err := s.db.Model(&models.AlbumImage{}).Where("album_id = ? AND image_id = ?", albumID, imageID).Count(&existing).Error; err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if existing > 0 {
		return fmt.Errorf("%w: image already in album", apperr.ErrConflict)
	}

	if err := s.db.Create(&models.AlbumImage{AlbumID: albumID, ImageID: imageID}).Error; err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return nil
}

// ImageDetails mirrors AlbumDetails for a single image: the viewer's
// resolved access, its tags and, for the owner, the current share set.
type ImageDetails struct {
	Image  models.Image   `json:"image"`
	Access access.Access  `json:"access"`
	Tags   []models.Tag   `json:"tags"`
	Shares []models.Share `json:"shares,omitempty"`
}

func (s *Service) GetImage(ctx context.Context, actorID, imageID uuid.UUID) (*ImageDetails, error) {
	var image models.Image
	if err := s.db.First(&image, "id = ?", imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: image %s", apperr.ErrNotFound, imageID)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	acc, err := s.resolver.ResolveAccess(ctx, actorID, access.ResourceImage, imageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if acc.Level == access.None {
		return nil, fmt.Errorf("%w: no access to image %s", apperr.ErrPermissionDenied, imageID)
	}

	details := ImageDetails{Image: image, Access: acc}

	err = s.db.
		Joins("JOIN image_tags ON image_tags.tag_id = tags.id").
		Where("image_tags.image_id = ?", imageID).
		Find(&details.Tags).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	if acc.IsOwner {
		if err := s.db.Where("image_id = ?", imageID).Find(&details.Shares).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		}
	}

	return &details, nil
}

// RemoveImageFromAlbum unlinks an image from an album without touching the
// image itself. Requires edit access on the album.
func (s *Service) RemoveImageFromAlbum(ctx context.Context, actorID, imageID, albumID uuid.UUID) error {
	if _, err := s.loadAlbum(ctx, albumID); err != nil {
		return err
	}

	acc, err := s.resolver.ResolveAccess(ctx, actorID, access.ResourceAlbum, albumID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if acc.Level < access.Edit {
		return fmt.Errorf("%w: edit access required on the album", apperr.ErrPermissionDenied)
	}

	res := s.db.Where("album_id = ? AND image_id = ?", albumID, imageID).Delete(&models.AlbumImage{})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: image not in album", apperr.ErrNotFound)
	}
	return nil
}

// replaceTags swaps the image's tag set for the given names, creating
// missing per-owner tags on the way. Runs inside the caller's transaction.
func (s *Service) replaceTags(tx *gorm.DB, ownerID, imageID uuid.UUID, tags []string) error {
	if err := tx.Where("image_id = ?", imageID).Delete(&models.ImageTag{}).Error; err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, raw := range tags {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var tag models.Tag
		err := tx.Where("name = ? AND owner_id = ?", name, ownerID).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.Tag{Name: name, OwnerID: ownerID}
			err = tx.Create(&tag).Error
		}
		if err != nil {
			return err
		}

		if err := tx.Create(&models.ImageTag{ImageID: imageID, TagID: tag.ID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// loadAlbum fetches an album, trying the metadata cache first.
func (s *Service) loadAlbum(ctx context.Context, albumID uuid.UUID) (*models.Album, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetAlbumMetadata(ctx, albumID); err != nil {
			log.Printf("Cache error when getting album metadata: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	var album models.Album
	if err := s.db.First(&album, "id = ?", albumID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: album %s", apperr.ErrNotFound, albumID)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	if s.cache != nil {
		if err := s.cache.SetAlbumMetadata(ctx, &album); err != nil {
			log.Printf("Failed to cache album metadata: %v", err)
		}
	}
	return &album, nil
}
