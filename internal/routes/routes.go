package routes

import (
	"net/http"

	"barscan/internal/capture"
	"barscan/internal/config"
	"barscan/internal/handlers"
	"barscan/internal/hub"
	"barscan/internal/logger"
	"barscan/internal/pipeline"
)

// SetupRoutes registers the scanner API: viewer and camera-feed websockets,
// pipeline status/results/stats, and the log endpoints.
func SetupRoutes(p *pipeline.Pipeline, h *hub.Hub, feed *capture.Feed, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Streams
	mux.HandleFunc("/api/view", handlers.ViewWebsocketHandler(h, logger))
	if feed != nil {
		mux.HandleFunc("/api/feed", handlers.FeedWebsocketHandler(feed, logger))
	}

	// Pipeline endpoints
	mux.HandleFunc("/api/status", handlers.StatusHandler(p))
	mux.HandleFunc("/api/results", handlers.ResultsHandler(p))
	mux.HandleFunc("/api/stats", handlers.StatsHandler(p))
	mux.HandleFunc("/api/reload", handlers.ReloadHandler(p, logger))

	// Log endpoints
	mux.HandleFunc("/logs/info", handlers.ShowInfoLogsHandler(cfg))
	mux.HandleFunc("/logs/warning", handlers.ShowWarningLogsHandler(cfg))
	mux.HandleFunc("/logs/error", handlers.ShowErrorLogsHandler(cfg))

	mux.HandleFunc("/logs/info/clear", handlers.ClearInfoLogsHandler(logger))
	mux.HandleFunc("/logs/warning/clear", handlers.ClearWarningLogsHandler(logger))
	mux.HandleFunc("/logs/error/clear", handlers.ClearErrorLogsHandler(logger))

	return mux
}
