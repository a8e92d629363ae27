package notify

import (
	"net/http"

	"github.com/JoaoZanelato/galeria-web/internal/auth"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, restrict to configured origins.
		return true
	},
}

// Handle upgrades the request and registers the connection under the
// authenticated user id, so SendToUser can reach it.
func Handle(h *Hub, w http.ResponseWriter, r *http.Request) {
	tok := r.URL.Query().Get("token")
	claims, err := auth.ValidateToken(tok)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newClient(h, claims.UserID, conn)
	h.register(claims.UserID, c)
	go c.writePump()
	go c.readPump()
}
