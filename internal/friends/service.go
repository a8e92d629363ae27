// Package friends runs the friendship lifecycle: pending requests, the
// accept/decline transition, and removal. Removal also tears down every
// share the two users granted each other, in both directions, since shares
// only exist under an accepted friendship.
package friends

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/JoaoZanelato/galeria-web/internal/apperr"
	"github.com/JoaoZanelato/galeria-web/internal/events"
	"github.com/JoaoZanelato/galeria-web/internal/kafka"
	"github.com/JoaoZanelato/galeria-web/internal/models"
	"github.com/JoaoZanelato/galeria-web/internal/notify"
	"github.com/JoaoZanelato/galeria-web/internal/redis"
	"github.com/JoaoZanelato/galeria-web/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Live-notification event names.
const (
	EventFriendRequested   = "friend-requested"
	EventFriendAccepted    = "friend-accepted"
	EventFriendshipRemoved = "friendship-removed"
)

// Response actions accepted by Respond.
const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
)

// Options tunes lifecycle policy.
type Options struct {
	// AllowRetryAfterDecline lets a declined pair be re-requested. The
	// original gallery only blocked re-requests on pending and accepted
	// rows, so this defaults to true in the server wiring.
	AllowRetryAfterDecline bool
}

type Service struct {
	db       *gorm.DB
	repo     repositories.FriendshipRepository
	notifier notify.Notifier
	producer *kafka.Producer
	cache    *redis.Service
	opts     Options
}

func NewService(db *gorm.DB, notifier notify.Notifier, producer *kafka.Producer, cache *redis.Service, opts Options) *Service {
	return &Service{
		db:       db,
		repo:     repositories.NewFriendshipRepository(db),
		notifier: notifier,
		producer: producer,
		cache:    cache,
		opts:     opts,
	}
}

// Request creates a pending friendship from requester to accepter. At most
// one row ever exists per unordered pair: a request in either direction
// against an existing pending or accepted row is a Conflict.
func (s *Service) Request(ctx context.Context, requesterID, accepterID uuid.UUID) (*models.Friendship, error) {
	if requesterID == accepterID {
		return nil, fmt.Errorf("%w: cannot befriend yourself", apperr.ErrValidation)
	}

	var accepter models.User
	if err := s.db.First(&accepter, "id = ?", accepterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, accepterID)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	existing, err := s.repo.FindByPair(requesterID, accepterID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	var friendship *models.Friendship
	switch {
	case existing == nil:
		friendship = &models.Friendship{
			RequesterID: requesterID,
			AccepterID:  accepterID,
			Status:      models.FriendshipPending,
		}
		if err := s.repo.Create(friendship); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		}
	case existing.Status == models.FriendshipDeclined && s.opts.AllowRetryAfterDecline:
		existing.RequesterID = requesterID
		existing.AccepterID = accepterID
		existing.Status = models.FriendshipPending
		existing.AcceptedAt = nil
		if err := s.repo.Update(existing); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		}
		friendship = existing
	default:
		return nil, fmt.Errorf("%w: friendship already %s", apperr.ErrConflict, existing.Status)
	}

	var requester models.User
	requesterName := requesterID.String()
	if err := s.db.First(&requester, "id = ?", requesterID).Error; err == nil {
		requesterName = requester.Username
	}

	if s.notifier != nil {
		s.notifier.SendToUser(accepterID, EventFriendRequested, map[string]any{
			"message":   fmt.Sprintf("You received a new friend request from %s.", requesterName),
			"requester": requesterName,
		})
	}
	if s.producer != nil {
		event := events.NewFriendEvent(events.FriendRequested, friendship.ID, requesterID, accepterID)
		if err := s.producer.PublishFriendEvent(ctx, event); err != nil {
			log.Printf("Failed to publish friend requested event: %v", err)
		}
	}

	return friendship, nil
}

// Respond accepts or declines a pending request. Only the accepter may
// respond, only once: accepted and declined are terminal for this operation.
func (s *Service) Respond(ctx context.Context, responderID, friendshipID uuid.UUID, action string) (*models.Friendship, error) {
	if action != ActionAccept && action != ActionDecline {
		return nil, fmt.Errorf("%w: unknown action %q", apperr.ErrValidation, action)
	}

	friendship, err := s.repo.FindByID(friendshipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: friendship %s", apperr.ErrNotFound, friendshipID)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if friendship.AccepterID != responderID {
		return nil, fmt.Errorf("%w: only the request recipient can respond", apperr.ErrPermissionDenied)
	}
	if friendship.Status != models.FriendshipPending {
		return nil, fmt.Errorf("%w: request already %s", apperr.ErrConflict, friendship.Status)
	}

	if action == ActionAccept {
		friendship.Status = models.FriendshipAccepted
		now := time.Now()
		friendship.AcceptedAt = &now
	} else {
		friendship.Status = models.FriendshipDeclined
	}

	// Guard the pending->terminal transition against a concurrent responder.
	res := s.db.Model(&models.Friendship{}).
		Where("id = ? AND status = ?", friendshipID, models.FriendshipPending).
		Updates(map[string]any{"status": friendship.Status, "accepted_at": friendship.AcceptedAt})
	if res.Error != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: request already responded to", apperr.ErrConflict)
	}

	if action == ActionAccept {
		var responder models.User
		responderName := responderID.String()
		if err := s.db.First(&responder, "id = ?", responderID).Error; err == nil {
			responderName = responder.Username
		}

		if s.notifier != nil {
			s.notifier.SendToUser(friendship.RequesterID, EventFriendAccepted, map[string]any{
				"message": fmt.Sprintf("%s accepted your friend request!", responderName),
				"friend":  responderName,
			})
		}
		if s.producer != nil {
			event := events.NewFriendEvent(events.FriendAccepted, friendship.ID, responderID, friendship.RequesterID)
			if err := s.producer.PublishFriendEvent(ctx, event); err != nil {
				log.Printf("Failed to publish friend accepted event: %v", err)
			}
		}
	}

	return friendship, nil
}

// Remove deletes the friendship and, inside the same transaction, every
// share between the two users in both directions. Either party may remove.
func (s *Service) Remove(ctx context.Context, actorID, friendshipID uuid.UUID) error {
	friendship, err := s.repo.FindByID(friendshipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: friendship %s", apperr.ErrNotFound, friendshipID)
		}
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if !friendship.Involves(actorID) {
		return fmt.Errorf("%w: not a party to this friendship", apperr.ErrPermissionDenied)
	}

	otherID := friendship.OtherParty(actorID)

	var removedShares []models.Share
	err = s.db.Transaction(func(tx *gorm.DB) error {
		removedShares, err = s.repo.SharesBetweenInTx(tx, actorID, otherID)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteSharesBetweenInTx(tx, actorID, otherID); err != nil {
			return err
		}
		return s.repo.DeleteInTx(tx, friendship)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	for _, share := range removedShares {
		resourceID := share.AlbumID
		resourceType := "album"
		if resourceID == nil {
			resourceID = share.ImageID
			resourceType = "image"
		}
		if resourceID == nil {
			continue
		}
		if s.cache != nil {
			if err := s.cache.RemoveResourceAccess(ctx, *resourceID, share.RecipientID); err != nil {
				log.Printf("Failed to update resource ACL cache: %v", err)
			}
		}
		if s.producer != nil {
			event := events.NewShareEvent(events.ShareRevoked, resourceType, *resourceID, actorID, share.RecipientID, "")
			if err := s.producer.PublishShareEvent(ctx, event); err != nil {
				log.Printf("Failed to publish share revoked event: %v", err)
			}
		}
	}

	var actor models.User
	actorName := actorID.String()
	if err := s.db.First(&actor, "id = ?", actorID).Error; err == nil {
		actorName = actor.Username
	}

	if s.notifier != nil {
		s.notifier.SendToUser(otherID, EventFriendshipRemoved, map[string]any{
			"message": fmt.Sprintf("%s ended the friendship with you.", actorName),
		})
	}
	if s.producer != nil {
		event := events.NewFriendEvent(events.FriendRemoved, friendshipID, actorID, otherID)
		if err := s.producer.PublishFriendEvent(ctx, event); err != nil {
			log.Printf("Failed to publish friend removed event: %v", err)
		}
	}

	return nil
}

// FriendInfo pairs a friendship row with the other party's display name.
type FriendInfo struct {
	FriendshipID uuid.UUID `json:"friendshipId"`
	UserID       uuid.UUID `json:"userId"`
	Username     string    `json:"username"`
}

// ListFriends returns the accepted friends of userID.
func (s *Service) ListFriends(ctx context.Context, userID uuid.UUID) ([]FriendInfo, error) {
	rows, err := s.repo.AcceptedFor(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return s.withUsernames(userID, rows)
}

// PendingRequests returns requests awaiting userID's response.
func (s *Service) PendingRequests(ctx context.Context, userID uuid.UUID) ([]FriendInfo, error) {
	rows, err := s.repo.PendingFor(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return s.withUsernames(userID, rows)
}

func (s *Service) withUsernames(userID uuid.UUID, rows []models.Friendship) ([]FriendInfo, error) {
	infos := make([]FriendInfo, 0, len(rows))
	for _, f := range rows {
		other := f.OtherParty(userID)
		var u models.User
		if err := s.db.First(&u, "id = ?", other).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		}
		infos = append(infos, FriendInfo{FriendshipID: f.ID, UserID: other, Username: u.Username})
	}
	return infos, nil
}

// SearchUsers finds candidate friends by username substring, excluding the
// searcher and anyone already in a pending or accepted pair with them.
func (s *Service) SearchUsers(ctx context.Context, userID uuid.UUID, term string) ([]models.User, error) {
	var users []models.User
	err := s.db.
		Where("username LIKE ? AND id != ?", "%"+term+"%", userID).
		Where("id NOT IN (?)",
			s.db.Model(&models.Friendship{}).
				Select("CASE WHEN requester_id = ? THEN accepter_id ELSE requester_id END", userID).
				Where("(requester_id = ? OR accepter_id = ?) AND status IN ?",
					userID, userID, []models.FriendshipStatus{models.FriendshipPending, models.FriendshipAccepted}),
		).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return users, nil
}
