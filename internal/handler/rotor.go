package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"portfolio/internal/logger"
	"portfolio/internal/service"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RotorWebsocketHandler gives every connecting viewer its own rotating
// gallery. Pointer events arrive on the socket and frames go back out until
// the viewer disconnects.
func RotorWebsocketHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		viewer, err := manager.Attach(r.Context(), conn)
		if err != nil {
			logger.Error("Failed to attach viewer: %v", err)
			conn.Close()
			return
		}
		defer manager.Detach(viewer)

		viewer.ReadPump()
	}
}
