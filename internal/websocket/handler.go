package websocket

import (
	"net/http"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/autoagenda/internal/auth"
	"github.com/dukerupert/autoagenda/internal/logging"
)

// Handle upgrades an authenticated request and serves it as a hub client.
// originPatterns is passed to the upgrader; empty allows same-origin only.
func Handle(hub *Hub, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := auth.UserID(r.Context())
		if ownerID == 0 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// The server's write timeout would otherwise cut long-lived connections.
		_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{OriginPatterns: originPatterns})
		if err != nil {
			logging.FromContext(r.Context()).Warn("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		logger := logging.FromContext(r.Context()).With("owner_id", ownerID)
		logger.Debug("websocket connected")
		NewClient(hub, conn, ownerID).Run(r.Context())
		logger.Debug("websocket disconnected")
	}
}
