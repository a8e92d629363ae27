package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JoaoZanelato/galeria-web/internal/auth"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, hub *Hub, userID uuid.UUID) (*websocket.Conn, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Handle(hub, w, r)
	}))

	token, err := auth.IssueToken(userID, time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn, srv
}

func waitForConnections(t *testing.T, hub *Hub, userID uuid.UUID, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.LiveConnections(userID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("connections for %s = %d, want %d", userID, hub.LiveConnections(userID), want)
}

func TestSendToUserReachesLiveConnection(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "test-secret")

	hub := NewHub()
	userID := uuid.New()

	conn, srv := dialHub(t, hub, userID)
	defer srv.Close()
	defer conn.Close()

	waitForConnections(t, hub, userID, 1)

	hub.SendToUser(userID, "share-created", map[string]any{"resourceName": "holiday"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Event != "share-created" {
		t.Errorf("event = %q, want share-created", env.Event)
	}
	payload, ok := env.Payload.(map[string]any)
	if !ok || payload["resourceName"] != "holiday" {
		t.Errorf("payload = %v, want resourceName holiday", env.Payload)
	}
}

func TestSendToUserIgnoresOfflineUser(t *testing.T) {
	hub := NewHub()

	// Must not panic or block with no registered connections.
	hub.SendToUser(uuid.New(), "share-created", nil)
}

func TestEachConnectionOfUserReceivesEvent(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "test-secret")

	hub := NewHub()
	userID := uuid.New()

	conn1, srv1 := dialHub(t, hub, userID)
	defer srv1.Close()
	defer conn1.Close()
	conn2, srv2 := dialHub(t, hub, userID)
	defer srv2.Close()
	defer conn2.Close()

	waitForConnections(t, hub, userID, 2)

	hub.SendToUser(userID, "friend-accepted", nil)

	for i, conn := range []*websocket.Conn{conn1, conn2} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("conn %d read: %v", i+1, err)
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("conn %d unmarshal: %v", i+1, err)
		}
		if env.Event != "friend-accepted" {
			t.Errorf("conn %d event = %q, want friend-accepted", i+1, env.Event)
		}
	}
}

func TestEventsAreScopedToTargetUser(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "test-secret")

	hub := NewHub()
	target := uuid.New()
	bystander := uuid.New()

	targetConn, srv1 := dialHub(t, hub, target)
	defer srv1.Close()
	defer targetConn.Close()
	otherConn, srv2 := dialHub(t, hub, bystander)
	defer srv2.Close()
	defer otherConn.Close()

	waitForConnections(t, hub, target, 1)
	waitForConnections(t, hub, bystander, 1)

	hub.SendToUser(target, "share-created", nil)

	targetConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := targetConn.ReadMessage(); err != nil {
		t.Fatalf("target read: %v", err)
	}

	otherConn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := otherConn.ReadMessage(); err == nil {
		t.Error("bystander received an event meant for another user")
	}
}

func TestHandleRejectsBadToken(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "test-secret")

	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Handle(hub, w, r)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=not-a-jwt"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial succeeded with a bad token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %v, want 401", resp)
	}
}
