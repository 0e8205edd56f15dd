package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"barscan/internal/capture"
	"barscan/internal/config"
	"barscan/internal/dedup"
	"barscan/internal/frame"
	"barscan/internal/hub"
	"barscan/internal/inference"
	"barscan/internal/logger"
	"barscan/internal/pipeline"
	"barscan/internal/routes"
	"barscan/internal/symbol"
)

type App struct {
	config   *config.Config
	logger   *logger.Logger
	engine   *inference.Engine
	pipeline *pipeline.Pipeline
	hub      *hub.Hub
	feed     *capture.Feed
}

func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	engine := inference.NewEngine(cfg, log)
	worker := inference.NewWorker(engine, cfg, log)

	var source frame.Source
	var feed *capture.Feed
	switch cfg.CameraSource {
	case "feed":
		feed = capture.NewFeed()
		source = feed
	default:
		webcam, err := capture.OpenWebcam(cfg.CameraID)
		if err != nil {
			return nil, fmt.Errorf("failed to open capture device %d: %w", cfg.CameraID, err)
		}
		source = webcam
	}

	reader := symbol.NewReader(symbol.NewZXingDecoder(), cfg)
	deduplicator := dedup.NewDeduplicator(cfg)

	return &App{
		config:   cfg,
		logger:   log,
		engine:   engine,
		pipeline: pipeline.NewPipeline(cfg, log, engine, worker, source, reader, deduplicator),
		hub:      hub.NewHub(log),
		feed:     feed,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	// Background services
	go a.hub.Run(ctx)
	go a.bridgeEvents(ctx)
	go func() {
		if err := a.pipeline.Run(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("Detection loop stopped: %v", err)
		}
	}()

	router := routes.SetupRoutes(a.pipeline, a.hub, a.feed, a.config, a.logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Port),
		Handler: router,
	}
	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	a.logger.Info("Barcode scanner listening on :%d", a.config.Port)
	a.logger.Info("Model: %s (input %dx%d)", a.config.ModelPath, a.config.ModelInputSize, a.config.ModelInputSize)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// bridgeEvents forwards pipeline streams to connected viewers as JSON
// events. The hub drops messages for slow viewers; the pipeline never waits.
func (a *App) bridgeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case overlay := <-a.pipeline.Overlays():
			a.broadcastEvent("overlay", overlay)
		case result := <-a.pipeline.Results():
			a.broadcastEvent("result", result)
		}
	}
}

func (a *App) broadcastEvent(kind string, payload interface{}) {
	msg, err := json.Marshal(map[string]interface{}{
		"type": kind,
		"data": payload,
	})
	if err != nil {
		a.logger.Error("Failed to encode %s event: %v", kind, err)
		return
	}
	a.hub.Broadcast(msg)
}
