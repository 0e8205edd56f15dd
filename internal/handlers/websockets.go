package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"barscan/internal/capture"
	"barscan/internal/hub"
	"barscan/internal/logger"
)

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FeedWebsocketHandler accepts JPEG frames pushed by a remote camera and
// stores each in the feed's latest-frame slot.
func FeedWebsocketHandler(feed *capture.Feed, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}
		connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		connection.SetPongHandler(func(appData string) error {
			connection.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		defer connection.Close()

		logger.Info("Camera feed connected: %s", r.RemoteAddr)

		for {
			_, msg, err := connection.ReadMessage()
			if err != nil {
				logger.Info("Camera feed disconnected: %v", err)
				break
			}

			if err := feed.Push(msg); err != nil {
				logger.Warning("Dropping bad pushed frame: %v", err)
			}
		}
	}
}

// ViewWebsocketHandler registers a viewer with the hub; the hub pushes
// overlay and result events until the viewer disconnects.
func ViewWebsocketHandler(h *hub.Hub, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}
		connection.SetReadLimit(512)
		connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		connection.SetPongHandler(func(appData string) error {
			connection.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		defer connection.Close()

		h.Register(connection)
		defer h.Unregister(connection)

		logger.Info("Viewer connected: %s", r.RemoteAddr)

		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				logger.Info("Viewer disconnected: %v", err)
				break
			}
		}
	}
}
