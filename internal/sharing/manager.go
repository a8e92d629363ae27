// Package sharing replaces the share set of an album or image and fans out
// notifications to the new recipients.
package sharing

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/JoaoZanelato/galeria-web/internal/access"
	"github.com/JoaoZanelato/galeria-web/internal/apperr"
	"github.com/JoaoZanelato/galeria-web/internal/events"
	"github.com/JoaoZanelato/galeria-web/internal/kafka"
	"github.com/JoaoZanelato/galeria-web/internal/models"
	"github.com/JoaoZanelato/galeria-web/internal/notify"
	"github.com/JoaoZanelato/galeria-web/internal/redis"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventShareCreated is the live-notification event name for new shares.
const EventShareCreated = "share-created"

// Entry is one requested grant. Permission accepts the canonical values as
// well as the legacy strings still sent by older clients; anything else
// (including the "no_share" sentinel) means "do not share with this user".
type Entry struct {
	RecipientID uuid.UUID `json:"recipientId"`
	Permission  string    `json:"permission"`
}

type Manager struct {
	db       *gorm.DB
	notifier notify.Notifier
	producer *kafka.Producer
	cache    *redis.Service
}

func NewManager(db *gorm.DB, notifier notify.Notifier, producer *kafka.Producer, cache *redis.Service) *Manager {
	return &Manager{db: db, notifier: notifier, producer: producer, cache: cache}
}

// SetShares replaces the whole share set for the resource inside one
// transaction: every existing share for the target is deleted, then one share
// is inserted per entry whose permission is valid and whose recipient is an
// accepted friend of the acting user. Calling it twice with the same list is
// idempotent at the data level, though notifications refire.
func (m *Manager) SetShares(ctx context.Context, actorID uuid.UUID, resourceType access.ResourceType, resourceID uuid.UUID, entries []Entry) ([]models.Share, error) {
	name, ownerID, err := m.resourceInfo(resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	if ownerID != actorID {
		return nil, fmt.Errorf("%w: only the owner can share this %s", apperr.ErrPermissionDenied, resourceType)
	}

	friends, err := m.acceptedFriends(actorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	// When a recipient appears more than once the last entry wins, matching
	// the replace semantics of the whole call.
	lastEntry := make(map[uuid.UUID]int, len(entries))
	for i, entry := range entries {
		lastEntry[entry.RecipientID] = i
	}

	var applied, previous []models.Share
	err = m.db.Transaction(func(tx *gorm.DB) error {
		targetCond := "album_id = ?"
		if resourceType == access.ResourceImage {
			targetCond = "image_id = ?"
		}
		if err := tx.Where(targetCond, resourceID).Find(&previous).Error; err != nil {
			return err
		}
		if err := tx.Where(targetCond, resourceID).Delete(&models.Share{}).Error; err != nil {
			return err
		}

		for i, entry := range entries {
			if lastEntry[entry.RecipientID] != i {
				continue
			}
			perm, ok := models.ParsePermission(entry.Permission)
			if !ok {
				continue // "no_share" and unknown values mean remove
			}
			if entry.RecipientID == actorID || !friends[entry.RecipientID] {
				continue
			}

			share := models.Share{
				SenderID:    actorID,
				RecipientID: entry.RecipientID,
				Permission:  perm,
			}
			if resourceType == access.ResourceAlbum {
				id := resourceID
				share.AlbumID = &id
			} else {
				id := resourceID
				share.ImageID = &id
			}

			if err := tx.Create(&share).Error; err != nil {
				return err
			}
			applied = append(applied, share)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	m.publish(ctx, actorID, resourceType, resourceID, name, applied, previous)
	return applied, nil
}

// resourceInfo loads the display name and owner of the target resource.
func (m *Manager) resourceInfo(resourceType access.ResourceType, resourceID uuid.UUID) (string, uuid.UUID, error) {
	switch resourceType {
	case access.ResourceAlbum:
		var album models.Album
		if err := m.db.First(&album, "id = ?", resourceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", uuid.Nil, fmt.Errorf("%w: album %s", apperr.ErrNotFound, resourceID)
			}
			return "", uuid.Nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		}
		return album.Name, album.OwnerID, nil
	case access.ResourceImage:
		var image models.Image
		if err := m.db.First(&image, "id = ?", resourceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", uuid.Nil, fmt.Errorf("%w: image %s", apperr.ErrNotFound, resourceID)
			}
			return "", uuid.Nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		}
		name := image.Description
		if name == "" {
			name = image.StorageKey
		}
		return name, image.OwnerID, nil
	default:
		return "", uuid.Nil, fmt.Errorf("%w: unknown resource type %q", apperr.ErrValidation, resourceType)
	}
}

// acceptedFriends returns the set of users holding an accepted friendship
// with userID, in either direction.
func (m *Manager) acceptedFriends(userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var rows []models.Friendship
	err := m.db.
		Where("(requester_id = ? OR accepter_id = ?) AND status = ?", userID, userID, models.FriendshipAccepted).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	friends := make(map[uuid.UUID]bool, len(rows))
	for _, f := range rows {
		friends[f.OtherParty(userID)] = true
	}
	return friends, nil
}

// droppedRecipients returns the previous shares whose recipient no longer
// holds a share after the replace.
func droppedRecipients(previous, applied []models.Share) []models.Share {
	kept := make(map[uuid.UUID]bool, len(applied))
	for _, share := range applied {
		kept[share.RecipientID] = true
	}

	var dropped []models.Share
	for _, share := range previous {
		if !kept[share.RecipientID] {
			dropped = append(dropped, share)
		}
	}
	return dropped
}

// publish runs the post-commit side effects: live notifications, Kafka
// events and the ACL cache replacement. All best-effort; failures never
// surface to the caller.
func (m *Manager) publish(ctx context.Context, actorID uuid.UUID, resourceType access.ResourceType, resourceID uuid.UUID, resourceName string, applied, previous []models.Share) {
	senderName := actorID.String()
	var sender models.User
	if err := m.db.First(&sender, "id = ?", actorID).Error; err == nil {
		senderName = sender.Username
	}

	acl := make(map[string]string, len(applied))
	for _, share := range applied {
		acl[share.RecipientID.String()] = string(share.Permission)

		if m.notifier != nil {
			m.notifier.SendToUser(share.RecipientID, EventShareCreated, map[string]any{
				"message":      fmt.Sprintf("%s shared the %s %q with you.", senderName, resourceType, resourceName),
				"sender":       senderName,
				"resourceType": string(resourceType),
				"resourceName": resourceName,
				"permission":   string(share.Permission),
			})
		}

		if m.producer != nil {
			event := events.NewShareEvent(events.ShareCreated, string(resourceType), resourceID, actorID, share.RecipientID, string(share.Permission))
			if err := m.producer.PublishShareEvent(ctx, event); err != nil {
				log.Printf("Failed to publish share created event: %v", err)
			}
		}
	}

	if m.producer != nil {
		for _, share := range droppedRecipients(previous, applied) {
			event := events.NewShareEvent(events.ShareRevoked, string(resourceType), resourceID, actorID, share.RecipientID, "")
			if err := m.producer.PublishShareEvent(ctx, event); err != nil {
				log.Printf("Failed to publish share revoked event: %v", err)
			}
		}
	}

	if m.cache != nil {
		if err := m.cache.SetResourceACL(ctx, resourceID, acl); err != nil {
			log.Printf("Failed to update resource ACL cache: %v", err)
		}
	}
}
