package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/JoaoZanelato/galeria-web/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cacheTTL = 24 * time.Hour

type Service struct {
	client *redis.Client
}

// NewService creates a new Redis service. Returns nil when the server is
// unreachable; callers nil-check and degrade to database-only operation.
func NewService(addr, password string, db int) *Service {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		return nil
	}

	log.Println("Successfully connected to Redis")
	return &Service{client: client}
}

// Album Metadata Cache Methods

func (s *Service) SetAlbumMetadata(ctx context.Context, album *models.Album) error {
	key := fmt.Sprintf("album:%s", album.ID.String())

	data, err := json.Marshal(album)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		log.Printf("Failed to cache album metadata for %s: %v", album.ID, err)
		return err
	}
	return nil
}

func (s *Service) GetAlbumMetadata(ctx context.Context, albumID uuid.UUID) (*models.Album, error) {
	key := fmt.Sprintf("album:%s", albumID.String())

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var album models.Album
	if err := json.Unmarshal([]byte(data), &album); err != nil {
		return nil, err
	}
	return &album, nil
}

func (s *Service) InvalidateAlbumMetadata(ctx context.Context, albumID uuid.UUID) error {
	key := fmt.Sprintf("album:%s", albumID.String())
	return s.client.Del(ctx, key).Err()
}

// Image Metadata Cache Methods

func (s *Service) SetImageMetadata(ctx context.Context, image *models.Image) error {
	key := fmt.Sprintf("image:%s", image.ID.String())

	data, err := json.Marshal(image)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		log.Printf("Failed to cache image metadata for %s: %v", image.ID, err)
		return err
	}
	return nil
}

func (s *Service) GetImageMetadata(ctx context.Context, imageID uuid.UUID) (*models.Image, error) {
	key := fmt.Sprintf("image:%s", imageID.String())

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var image models.Image
	if err := json.Unmarshal([]byte(data), &image); err != nil {
		return nil, err
	}
	return &image, nil
}

func (s *Service) InvalidateImageMetadata(ctx context.Context, imageID uuid.UUID) error {
	key := fmt.Sprintf("image:%s", imageID.String())
	return s.client.Del(ctx, key).Err()
}

// Access Control Cache Methods
//
// Each shareable resource carries one ACL hash-equivalent: a JSON map of
// recipient user id -> permission. The share manager replaces it wholesale on
// every SetShares, matching the replace-all semantics of the share table.

func (s *Service) SetResourceACL(ctx context.Context, resourceID uuid.UUID, acl map[string]string) error {
	key := fmt.Sprintf("resource:%s:acl", resourceID.String())

	data, err := json.Marshal(acl)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		log.Printf("Failed to cache resource ACL for %s: %v", resourceID, err)
		return err
	}
	return nil
}

func (s *Service) GetResourceACL(ctx context.Context, resourceID uuid.UUID) (map[string]string, error) {
	key := fmt.Sprintf("resource:%s:acl", resourceID.String())

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var acl map[string]string
	if err := json.Unmarshal([]byte(data), &acl); err != nil {
		return nil, err
	}
	return acl, nil
}

// AddResourceAccess adds or updates one recipient's permission in the ACL.
func (s *Service) AddResourceAccess(ctx context.Context, resourceID, userID uuid.UUID, permission string) error {
	acl, err := s.GetResourceACL(ctx, resourceID)
	if err != nil {
		return err
	}
	if acl == nil {
		acl = make(map[string]string)
	}

	acl[userID.String()] = permission
	return s.SetResourceACL(ctx, resourceID, acl)
}

// RemoveResourceAccess removes one recipient from the ACL.
func (s *Service) RemoveResourceAccess(ctx context.Context, resourceID, userID uuid.UUID) error {
	acl, err := s.GetResourceACL(ctx, resourceID)
	if err != nil {
		return err
	}
	if acl == nil {
		return nil
	}

	delete(acl, userID.String())
	return s.SetResourceACL(ctx, resourceID, acl)
}

// InvalidateResourceACL drops the ACL for a deleted resource.
func (s *Service) InvalidateResourceACL(ctx context.Context, resourceID uuid.UUID) error {
	key := fmt.Sprintf("resource:%s:acl", resourceID.String())
	return s.client.Del(ctx, key).Err()
}

func (s *Service) Close() error {
	return s.client.Close()
}
