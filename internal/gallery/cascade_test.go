package gallery

import (
	"context"
	"errors"
	"testing"

	"github.com/JoaoZanelato/galeria-web/internal/access"
	"github.com/JoaoZanelato/galeria-web/internal/apperr"
	"github.com/JoaoZanelato/galeria-web/internal/database"
	"github.com/JoaoZanelato/galeria-web/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeBlobStore struct {
	deleted []string
	fail    bool
}

func (f *fakeBlobStore) Delete(ctx context.Context, storageKey string) error {
	f.deleted = append(f.deleted, storageKey)
	if f.fail {
		return errors.New("remote store unavailable")
	}
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB, blobs *fakeBlobStore) *Service {
	t.Helper()
	return NewService(db, access.NewResolver(db, nil), blobs, nil, nil, zerolog.Nop())
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	u := models.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func createAlbum(t *testing.T, db *gorm.DB, owner models.User, name string) models.Album {
	t.Helper()
	a := models.Album{Name: name, OwnerID: owner.ID}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("create album %s: %v", name, err)
	}
	return a
}

func createImage(t *testing.T, db *gorm.DB, owner models.User, key string) models.Image {
	t.Helper()
	img := models.Image{StorageKey: key, URL: "https://cdn.example.com/" + key, OwnerID: owner.ID}
	if err := db.Create(&img).Error; err != nil {
		t.Fatalf("create image %s: %v", key, err)
	}
	return img
}

func linkImage(t *testing.T, db *gorm.DB, album models.Album, image models.Image) {
	t.Helper()
	if err := db.Create(&models.AlbumImage{AlbumID: album.ID, ImageID: image.ID}).Error; err != nil {
		t.Fatalf("link image: %v", err)
	}
}

func count(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestDeleteAlbumRemovesOrphanImagesOnly(t *testing.T) {
	db := newTestDB(t)
	blobs := &fakeBlobStore{}
	svc := newTestService(t, db, blobs)
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	friend := createUser(t, db, "friend")
	albumA := createAlbum(t, db, owner, "to-delete")
	albumB := createAlbum(t, db, owner, "keeper")

	// orphan lives only in albumA; shared lives in both.
	orphan := createImage(t, db, owner, "orphan-key")
	shared := createImage(t, db, owner, "shared-key")
	linkImage(t, db, albumA, orphan)
	linkImage(t, db, albumA, shared)
	linkImage(t, db, albumB, shared)

	tag := models.Tag{Name: "sunset", OwnerID: owner.ID}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if err := db.Create(&models.ImageTag{ImageID: orphan.ID, TagID: tag.ID}).Error; err != nil {
		t.Fatalf("tag orphan: %v", err)
	}
	orphanShare := models.Share{SenderID: owner.ID, RecipientID: friend.ID, ImageID: &orphan.ID, Permission: models.View}
	if err := db.Create(&orphanShare).Error; err != nil {
		t.Fatalf("share orphan: %v", err)
	}
	albumShare := models.Share{SenderID: owner.ID, RecipientID: friend.ID, AlbumID: &albumA.ID, Permission: models.View}
	if err := db.Create(&albumShare).Error; err != nil {
		t.Fatalf("share album: %v", err)
	}

	if err := svc.DeleteAlbum(ctx, owner.ID, albumA.ID); err != nil {
		t.Fatalf("DeleteAlbum: %v", err)
	}

	if n := count(t, db, &models.Album{}, "id = ?", albumA.ID); n != 0 {
		t.Errorf("album rows = %d, want 0", n)
	}
	if n := count(t, db, &models.Image{}, "id = ?", orphan.ID); n != 0 {
		t.Errorf("orphan image rows = %d, want 0", n)
	}
	if n := count(t, db, &models.ImageTag{}, "image_id = ?", orphan.ID); n != 0 {
		t.Errorf("orphan tag links = %d, want 0", n)
	}
	if n := count(t, db, &models.Share{}, "image_id = ?", orphan.ID); n != 0 {
		t.Errorf("orphan shares = %d, want 0", n)
	}
	if n := count(t, db, &models.Share{}, "album_id = ?", albumA.ID); n != 0 {
		t.Errorf("album shares = %d, want 0", n)
	}

	// The shared image keeps its row and its membership in the other album.
	if n := count(t, db, &models.Image{}, "id = ?", shared.ID); n != 1 {
		t.Errorf("shared image rows = %d, want 1", n)
	}
	if n := count(t, db, &models.AlbumImage{}, "image_id = ? AND album_id = ?", shared.ID, albumB.ID); n != 1 {
		t.Errorf("shared image memberships in keeper = %d, want 1", n)
	}

	// Exactly one blob delete, for the orphan.
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "orphan-key" {
		t.Errorf("blob deletes = %v, want [orphan-key]", blobs.deleted)
	}
}

func TestDeleteAlbumOnlyOwner(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, &fakeBlobStore{})
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	editor := createUser(t, db, "editor")
	album := createAlbum(t, db, owner, "holiday")

	// Even an edit-level share does not permit deletion.
	share := models.Share{SenderID: owner.ID, RecipientID: editor.ID, AlbumID: &album.ID, Permission: models.Edit}
	if err := db.Create(&share).Error; err != nil {
		t.Fatalf("share album: %v", err)
	}

	err := svc.DeleteAlbum(ctx, editor.ID, album.ID)
	if !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestDeleteAlbumMissing(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, &fakeBlobStore{})

	owner := createUser(t, db, "owner")

	err := svc.DeleteAlbum(context.Background(), owner.ID, uuid.New())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteAlbumSurvivesBlobFailure(t *testing.T) {
	db := newTestDB(t)
	blobs := &fakeBlobStore{fail: true}
	svc := newTestService(t, db, blobs)
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	album := createAlbum(t, db, owner, "holiday")
	image := createImage(t, db, owner, "pic-1")
	linkImage(t, db, album, image)

	// Rows are already committed away; the blob failure is logged, not returned.
	if err := svc.DeleteAlbum(ctx, owner.ID, album.ID); err != nil {
		t.Fatalf("DeleteAlbum: %v", err)
	}
	if n := count(t, db, &models.Image{}, "id = ?", image.ID); n != 0 {
		t.Errorf("image rows = %d, want 0", n)
	}
}

func TestDeleteImageCleansEverything(t *testing.T) {
	db := newTestDB(t)
	blobs := &fakeBlobStore{}
	svc := newTestService(t, db, blobs)
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	friend := createUser(t, db, "friend")
	album := createAlbum(t, db, owner, "holiday")
	image := createImage(t, db, owner, "pic-1")
	linkImage(t, db, album, image)

	tag := models.Tag{Name: "beach", OwnerID: owner.ID}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if err := db.Create(&models.ImageTag{ImageID: image.ID, TagID: tag.ID}).Error; err != nil {
		t.Fatalf("tag image: %v", err)
	}
	share := models.Share{SenderID: owner.ID, RecipientID: friend.ID, ImageID: &image.ID, Permission: models.View}
	if err := db.Create(&share).Error; err != nil {
		t.Fatalf("share image: %v", err)
	}

	if err := svc.DeleteImage(ctx, owner.ID, image.ID); err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}

	if n := count(t, db, &models.Image{}, "id = ?", image.ID); n != 0 {
		t.Errorf("image rows = %d, want 0", n)
	}
	if n := count(t, db, &models.AlbumImage{}, "image_id = ?", image.ID); n != 0 {
		t.Errorf("memberships = %d, want 0", n)
	}
	if n := count(t, db, &models.ImageTag{}, "image_id = ?", image.ID); n != 0 {
		t.Errorf("tag links = %d, want 0", n)
	}
	if n := count(t, db, &models.Share{}, "image_id = ?", image.ID); n != 0 {
		t.Errorf("shares = %d, want 0", n)
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "pic-1" {
		t.Errorf("blob deletes = %v, want [pic-1]", blobs.deleted)
	}

	// The album itself stays.
	if n := count(t, db, &models.Album{}, "id = ?", album.ID); n != 1 {
		t.Errorf("album rows = %d, want 1", n)
	}
}

func TestDeleteImageRequiresEditAccess(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, &fakeBlobStore{})
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	viewer := createUser(t, db, "viewer")
	editor := createUser(t, db, "editor")
	image := createImage(t, db, owner, "pic-1")

	viewShare := models.Share{SenderID: owner.ID, RecipientID: viewer.ID, ImageID: &image.ID, Permission: models.View}
	if err := db.Create(&viewShare).Error; err != nil {
		t.Fatalf("share image: %v", err)
	}
	editShare := models.Share{SenderID: owner.ID, RecipientID: editor.ID, ImageID: &image.ID, Permission: models.Edit}
	if err := db.Create(&editShare).Error; err != nil {
		t.Fatalf("share image: %v", err)
	}

	if err := svc.DeleteImage(ctx, viewer.ID, image.ID); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Errorf("viewer delete err = %v, want ErrPermissionDenied", err)
	}
	if err := svc.DeleteImage(ctx, editor.ID, image.ID); err != nil {
		t.Errorf("editor delete err = %v, want nil", err)
	}
}
