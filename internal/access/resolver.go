// Package access computes the effective permission a user holds on an album
// or image. Resolution is a pure query: it mutates nothing and reports a
// missing resource as no access, leaving 404-vs-403 mapping to the caller.
package access

import (
	"context"
	"errors"

	"github.com/JoaoZanelato/galeria-web/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Level int

const (
	None Level = iota
	View
	Edit
)

func (l Level) String() string {
	switch l {
	case View:
		return "view"
	case Edit:
		return "edit"
	default:
		return "none"
	}
}

type ResourceType string

const (
	ResourceAlbum ResourceType = "album"
	ResourceImage ResourceType = "image"
)

// Access is the resolved permission for one (user, resource) pair.
type Access struct {
	Level   Level `json:"level"`
	IsOwner bool  `json:"isOwner"`
}

// ACLCache serves the share sets that sharing writes after every replace.
// A hit is authoritative for direct shares on that resource; errors and
// misses fall back to the share tables.
type ACLCache interface {
	GetResourceACL(ctx context.Context, resourceID uuid.UUID) (map[string]string, error)
}

type Resolver struct {
	db    *gorm.DB
	cache ACLCache
}

// NewResolver builds a resolver over the share tables. cache may be nil,
// in which case every lookup goes to the database.
func NewResolver(db *gorm.DB, cache ACLCache) *Resolver {
	return &Resolver{db: db, cache: cache}
}

func levelFor(p models.Permission) Level {
	switch p {
	case models.Edit:
		return Edit
	case models.View:
		return View
	default:
		return None
	}
}

// ResolveAccess determines the permission level userID holds on the given
// resource. Owners always resolve to Edit regardless of any stale share rows.
// For images, a direct image share overrides any album-derived level
// (most-specific-wins); only when no direct share exists does membership in a
// shared album grant propagated access.
func (r *Resolver) ResolveAccess(ctx context.Context, userID uuid.UUID, resourceType ResourceType, resourceID uuid.UUID) (Access, error) {
	switch resourceType {
	case ResourceAlbum:
		return r.resolveAlbum(ctx, userID, resourceID)
	case ResourceImage:
		return r.resolveImage(ctx, userID, resourceID)
	default:
		return Access{}, nil
	}
}

// cachedACL returns the cached share set for the resource. ok is false when
// no cache is wired, the key is absent, or the read failed.
func (r *Resolver) cachedACL(ctx context.Context, resourceID uuid.UUID) (map[string]string, bool) {
	if r.cache == nil {
		return nil, false
	}
	acl, err := r.cache.GetResourceACL(ctx, resourceID)
	if err != nil || acl == nil {
		return nil, false
	}
	return acl, true
}

func (r *Resolver) resolveAlbum(ctx context.Context, userID, albumID uuid.UUID) (Access, error) {
	var album models.Album
	if err := r.db.First(&album, "id = ?", albumID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Access{}, nil
		}
		return Access{}, err
	}

	if album.OwnerID == userID {
		return Access{Level: Edit, IsOwner: true}, nil
	}

	// Fast path: the cached share set replaces the share-row query entirely.
	if acl, ok := r.cachedACL(ctx, albumID); ok {
		if perm, valid := models.ParsePermission(acl[userID.String()]); valid {
			return Access{Level: levelFor(perm)}, nil
		}
		return Access{}, nil
	}

	var share models.Share
	err := r.db.Where("recipient_id = ? AND album_id = ?", userID, albumID).First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Access{}, nil
		}
		return Access{}, err
	}

	return Access{Level: levelFor(share.Permission)}, nil
}

func (r *Resolver) resolveImage(ctx context.Context, userID, imageID uuid.UUID) (Access, error) {
	var image models.Image
	if err := r.db.First(&image, "id = ?", imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Access{}, nil
		}
		return Access{}, err
	}

	if image.OwnerID == userID {
		return Access{Level: Edit, IsOwner: true}, nil
	}

	// Direct image share wins over anything the image's albums would grant.
	// A cached share set answers the direct lookup without touching the
	// share table; absence from it still leaves the album-derived path open.
	if acl, ok := r.cachedACL(ctx, imageID); ok {
		if perm, valid := models.ParsePermission(acl[userID.String()]); valid {
			return Access{Level: levelFor(perm)}, nil
		}
	} else {
		var direct models.Share
		err := r.db.Where("recipient_id = ? AND image_id = ?", userID, imageID).First(&direct).Error
		if err == nil {
			return Access{Level: levelFor(direct.Permission)}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Access{}, err
		}
	}

	// Album-derived: the strongest share among albums containing this image.
	var albumShares []models.Share
	err := r.db.
		Where("recipient_id = ? AND album_id IN (?)",
			userID,
			r.db.Model(&models.AlbumImage{}).Select("album_id").Where("image_id = ?", imageID),
		).
		Find(&albumShares).Error
	if err != nil {
		return Access{}, err
	}

	level := None
	for _, s := range albumShares {
		if l := levelFor(s.Permission); l > level {
			level = l
		}
	}

	return Access{Level: level}, nil
}
