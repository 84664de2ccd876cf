package websocket

import (
	"log"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/geldimmi/geldimmi/internal/auth"
)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket and runs them as clients in the caller's organization room. It
// must sit behind the auth middleware.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		organizationID := auth.OrganizationID(r.Context())
		if organizationID == 0 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Dashboard is served from the same origin or a kiosk tablet
		})
		if err != nil {
			log.Printf("websocket: accept: %v", err)
			return
		}

		client := NewClient(hub, conn, organizationID)
		client.Run(r.Context())
	}
}
