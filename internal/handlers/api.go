package handlers

import (
	"encoding/json"
	"net/http"

	"barscan/internal/logger"
	"barscan/internal/pipeline"
)

// StatusHandler reports the pipeline status: ready, loading, or error with
// the load failure message.
func StatusHandler(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, p.Status())
	}
}

// ResultsHandler returns the recent decoded results, newest first.
func ResultsHandler(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, p.Recent())
	}
}

// StatsHandler returns the aggregate per-frame counters.
func StatsHandler(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, p.Stats())
	}
}

// ReloadHandler grants one new model load attempt after a load failure.
func ReloadHandler(p *pipeline.Pipeline, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		logger.Info("Model reload requested")
		p.Reload()
		writeJSON(w, p.Status())
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
