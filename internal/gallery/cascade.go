package gallery

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/JoaoZanelato/galeria-web/internal/access"
	"github.com/JoaoZanelato/galeria-web/internal/apperr"
	"github.com/JoaoZanelato/galeria-web/internal/events"
	"github.com/JoaoZanelato/galeria-web/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeleteAlbum removes an album and everything that depends on it. Images
// whose only membership was this album are orphaned by the deletion and are
// removed too, along with their tags, shares and remote blobs. Images still
// linked to other albums keep their rows and blobs; only the one membership
// goes.
//
// Database rows are deleted first, inside one transaction. Blobs are deleted
// only after commit: a blob-delete failure then leaves no dangling rows and
// is logged as a degraded-success warning instead of failing the operation.
func (s *Service) DeleteAlbum(ctx context.Context, actorID, albumID uuid.UUID) error {
	var album models.Album
	if err := s.db.First(&album, "id = ?", albumID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: album %s", apperr.ErrNotFound, albumID)
		}
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if album.OwnerID != actorID {
		return fmt.Errorf("%w: only the owner can delete this album", apperr.ErrPermissionDenied)
	}

	var orphans []models.Image
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var links []models.AlbumImage
		if err := tx.Where("album_id = ?", albumID).Find(&links).Error; err != nil {
			return err
		}

		for _, link := range links {
			var memberships int64
			if err := tx.Model(&models.AlbumImage{}).Where("image_id = ?", link.ImageID).Count(&memberships).Error; err != nil {
				return err
			}
			if memberships != 1 {
				continue // still referenced from another album
			}

			var image models.Image
			if err := tx.First(&image, "id = ?", link.ImageID).Error; err != nil {
				return err
			}

			if err := tx.Where("image_id = ?", image.ID).Delete(&models.ImageTag{}).Error; err != nil {
				return err
			}
			if err := tx.Where("image_id = ?", image.ID).Delete(&models.Share{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Image{}, "id = ?", image.ID).Error; err != nil {
				return err
			}
			orphans = append(orphans, image)
		}

		if err := tx.Where("album_id = ?", albumID).Delete(&models.AlbumImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("album_id = ?", albumID).Delete(&models.Share{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Album{}, "id = ?", albumID).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	for _, image := range orphans {
		s.deleteBlob(ctx, image.StorageKey)
	}

	if s.producer != nil {
		event := events.NewGalleryEvent(events.AlbumDeleted, events.ResourceAlbum, albumID, album.OwnerID, actorID)
		if err := s.producer.PublishGalleryEvent(ctx, event); err != nil {
			log.Printf("Failed to publish album deleted event: %v", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.InvalidateAlbumMetadata(ctx, albumID); err != nil {
			log.Printf("Failed to invalidate album cache: %v", err)
		}
		if err := s.cache.InvalidateResourceACL(ctx, albumID); err != nil {
			log.Printf("Failed to invalidate album ACL cache: %v", err)
		}
		for _, image := range orphans {
			if err := s.cache.InvalidateImageMetadata(ctx, image.ID); err != nil {
				log.Printf("Failed to invalidate image cache: %v", err)
			}
			if err := s.cache.InvalidateResourceACL(ctx, image.ID); err != nil {
				log.Printf("Failed to invalidate image ACL cache: %v", err)
			}
		}
	}

	return nil
}

// DeleteImage removes a single image, its tag links, memberships, shares and
// remote blob. The actor must own the image or hold edit access on it,
// directly or through a shared album.
func (s *Service) DeleteImage(ctx context.Context, actorID, imageID uuid.UUID) error {
	var image models.Image
	if err := s.db.First(&image, "id = ?", imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: image %s", apperr.ErrNotFound, imageID)
		}
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	acc, err := s.resolver.ResolveAccess(ctx, actorID, access.ResourceImage, imageID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if acc.Level < access.Edit {
		return fmt.Errorf("%w: edit access required to delete this image", apperr.ErrPermissionDenied)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", imageID).Delete(&models.ImageTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("image_id = ?", imageID).Delete(&models.AlbumImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("image_id = ?", imageID).Delete(&models.Share{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Image{}, "id = ?", imageID).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	s.deleteBlob(ctx, image.StorageKey)

	if s.producer != nil {
		event := events.NewGalleryEvent(events.ImageDeleted, events.ResourceImage, imageID, image.OwnerID, actorID)
		if err := s.producer.PublishGalleryEvent(ctx, event); err != nil {
			log.Printf("Failed to publish image deleted event: %v", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.InvalidateImageMetadata(ctx, imageID); err != nil {
			log.Printf("Failed to invalidate image cache: %v", err)
		}
		if err := s.cache.InvalidateResourceACL(ctx, imageID); err != nil {
			log.Printf("Failed to invalidate image ACL cache: %v", err)
		}
	}

	return nil
}

// deleteBlob removes a blob after the owning rows are already committed away.
// A failure here cannot be rolled back, so it is surfaced in the logs only.
func (s *Service) deleteBlob(ctx context.Context, storageKey string) {
	if s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(ctx, storageKey); err != nil {
		s.log.Warn().
			Str("storageKey", storageKey).
			Err(err).
			Msg("Blob delete failed after commit; rows already removed")
	}
}
