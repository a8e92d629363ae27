package friends

import (
	"context"
	"errors"
	"testing"

	"github.com/JoaoZanelato/galeria-web/internal/apperr"
	"github.com/JoaoZanelato/galeria-web/internal/database"
	"github.com/JoaoZanelato/galeria-web/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeNotifier struct {
	sent []sentEvent
}

type sentEvent struct {
	userID uuid.UUID
	event  string
}

func (f *fakeNotifier) SendToUser(userID uuid.UUID, event string, payload any) {
	f.sent = append(f.sent, sentEvent{userID: userID, event: event})
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

func newTestService(t *testing.T, db *gorm.DB, opts Options) *Service {
	t.Helper()
	return NewService(db, nil, nil, nil, opts)
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	u := models.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func TestRequestCreatesPending(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, Options{})
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	f, err := svc.Request(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if f.Status != models.FriendshipPending {
		t.Errorf("status = %s, want pending", f.Status)
	}
	if f.RequesterID != alice.ID || f.AccepterID != bob.ID {
		t.Errorf("parties = %s->%s, want alice->bob", f.RequesterID, f.AccepterID)
	}
	if f.AcceptedAt != nil {
		t.Errorf("acceptedAt = %v, want nil", f.AcceptedAt)
	}
}

func TestRequestRejectsSelf(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, Options{})

	alice := createUser(t, db, "alice")

	_, err := svc.Request(context.Background(), alice.ID, alice.ID)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestRequestUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, Options{})

	alice := createUser(t, db, "alice")

	_, err := svc.Request(context.Background(), alice.ID, uuid.New())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRequestConflictsInBothDirections(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, Options{})
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	if _, err := svc.Request(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("first request: %v", err)
	}

	if _, err := svc.Request(ctx, alice.ID, bob.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate err = %v, want ErrConflict", err)
	}
	// Same pair, opposite direction.
	if _, err := svc.Request(ctx, bob.ID, alice.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("reverse err = %v, want ErrConflict", err)
	}

	var n int64
	if err := db.Model(&models.Friendship{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("friendship rows = %d, want 1", n)
	}
}

func TestRespondAccept(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, Options{})
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	f, err := svc.Request(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	got, err := svc.Respond(ctx, bob.ID, f.ID, ActionAccept)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if got.Status != models.FriendshipAccepted {
		t.Errorf("status = %s, want accepted", got.Status)
	}
	if got.AcceptedAt == nil {
		t.Errorf("acceptedAt = nil, want set")
	}
}

func TestRespondOnlyAccepter(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, Options{})
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	f, err := svc.Request(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	// The requester cannot accept their own request.
	if _, err := svc.Respond(ctx, alice.ID, f.ID, ActionAccept); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestRespondIsTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, Options{})
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	f, err := svc.Request(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if _, err := svc.Respond(ctx, bob.ID, f.ID, ActionDecline); err != nil {
		t.Fatalf("decline: %v", err)
	}

	if _, err := svc.Respond(ctx, bob.ID, f.ID, ActionAccept); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("second respond err = %v, want ErrConflict", err)
	}
}

func TestRequestAfterDecline(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	strict := newTestService(t, db, Options{AllowRetryAfterDecline: false})
	f, err := strict.Request(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if _, err := strict.Respond(ctx, bob.ID, f.ID, ActionDecline); err != nil {
		t.Fatalf("decline: %v", err)
	}

	if _, err := strict.Request(ctx, alice.ID, bob.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("strict retry err = %v, want ErrConflict", err)
	}

	lenient := newTestService(t, db, Options{AllowRetryAfterDecline: true})
	retried, err := lenient.Request(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("lenient retry: %v", err)
	}
	if retried.Status != models.FriendshipPending {
		t.Errorf("status = %s, want pending", retried.Status)
	}
	// The retried row flips direction to the new requester.
	if retried.RequesterID != bob.ID || retried.AccepterID != alice.ID {
		t.Errorf("parties = %s->%s, want bob->alice", retried.RequesterID, retried.AccepterID)
	}
}

func TestRemoveTearsDownSharesBothDirections(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, Options{})
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	f := models.Friendship{RequesterID: alice.ID, AccepterID: bob.ID, Status: models.FriendshipAccepted}
	if err := db.Create(&f).Error; err != nil {
		t.Fatalf("create friendship: %v", err)
	}
	g := models.Friendship{RequesterID: alice.ID, AccepterID: carol.ID, Status: models.FriendshipAccepted}
	if err := db.Create(&g).Error; err != nil {
		t.Fatalf("create friendship: %v", err)
	}

	albumA := models.Album{Name: "alice-album", OwnerID: alice.ID}
	albumB := models.Album{Name: "bob-album", OwnerID: bob.ID}
	if err := db.Create(&albumA).Error; err != nil {
		t.Fatalf("create album: %v", err)
	}
	if err := db.Create(&albumB).Error; err != nil {
		t.Fatalf("create album: %v", err)
	}

	shares := []models.Share{
		{SenderID: alice.ID, RecipientID: bob.ID, AlbumID: &albumA.ID, Permission: models.View},
		{SenderID: bob.ID, RecipientID: alice.ID, AlbumID: &albumB.ID, Permission: models.Edit},
		{SenderID: alice.ID, RecipientID: carol.ID, AlbumID: &albumA.ID, Permission: models.View},
	}
	for i := range shares {
		if err := db.Create(&shares[i]).Error; err != nil {
			t.Fatalf("create share: %v", err)
		}
	}

	if err := svc.Remove(ctx, alice.ID, f.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	var n int64
	if err := db.Model(&models.Friendship{}).Where("id = ?", f.ID).Count(&n).Error; err != nil {
		t.Fatalf("count friendships: %v", err)
	}
	if n != 0 {
		t.Errorf("friendship rows = %d, want 0", n)
	}

	var remaining []models.Share
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("load shares: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("remaining shares = %d, want 1 (carol's untouched)", len(remaining))
	}
	if remaining[0].RecipientID != carol.ID {
		t.Errorf("surviving share recipient = %s, want carol", remaining[0].RecipientID)
	}
}

func TestRemoveOnlyParties(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, Options{})

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	mallory := createUser(t, db, "mallory")

	f := models.Friendship{RequesterID: alice.ID, AccepterID: bob.ID, Status: models.FriendshipAccepted}
	if err := db.Create(&f).Error; err != nil {
		t.Fatalf("create friendship: %v", err)
	}

	err := svc.Remove(context.Background(), mallory.ID, f.ID)
	if !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestRequestNotifiesAccepter(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	svc := NewService(db, notifier, nil, nil, Options{})
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	if _, err := svc.Request(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Request: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.sent))
	}
	if notifier.sent[0].userID != bob.ID || notifier.sent[0].event != EventFriendRequested {
		t.Errorf("notification = %+v, want friend-requested to bob", notifier.sent[0])
	}
}

func TestListFriendsAndPending(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, Options{})
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	accepted := models.Friendship{RequesterID: bob.ID, AccepterID: alice.ID, Status: models.FriendshipAccepted}
	if err := db.Create(&accepted).Error; err != nil {
		t.Fatalf("create friendship: %v", err)
	}
	pending := models.Friendship{RequesterID: carol.ID, AccepterID: alice.ID, Status: models.FriendshipPending}
	if err := db.Create(&pending).Error; err != nil {
		t.Fatalf("create friendship: %v", err)
	}

	friendsList, err := svc.ListFriends(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListFriends: %v", err)
	}
	if len(friendsList) != 1 || friendsList[0].Username != "bob" {
		t.Errorf("friends = %+v, want [bob]", friendsList)
	}

	pendingList, err := svc.PendingRequests(ctx, alice.ID)
	if err != nil {
		t.Fatalf("PendingRequests: %v", err)
	}
	if len(pendingList) != 1 || pendingList[0].Username != "carol" {
		t.Errorf("pending = %+v, want [carol]", pendingList)
	}
}
