package inference

import (
	"context"

	"barscan/internal/config"
	"barscan/internal/detect"
	"barscan/internal/logger"
	"barscan/internal/sampler"
)

// Request carries one packed tensor into the inference domain. The tensor is
// transferred by ownership: the capture side must not touch it after Submit.
type Request struct {
	Session int
	Tensor  *sampler.Tensor
}

// Response carries the decoded, NMS-filtered detections back out, still in
// model-space. The session tag lets the capture side discard responses that
// belong to a superseded source.
type Response struct {
	Session    int
	Detections []detect.Detection
	Err        error
}

// Worker is the isolated inference domain: it owns the engine and runs the
// adapter, decoder and NMS on its own goroutine so a slow pass never blocks
// capture. The single-slot request and response channels bound memory; the
// sampler's back-pressure rule guarantees at most one outstanding request.
type Worker struct {
	engine        *Engine
	logger        *logger.Logger
	confThreshold float32
	iouThreshold  float32

	requests  chan Request
	responses chan Response
}

func NewWorker(engine *Engine, cfg *config.Config, logger *logger.Logger) *Worker {
	return &Worker{
		engine:        engine,
		logger:        logger,
		confThreshold: cfg.ConfThreshold,
		iouThreshold:  cfg.NMSIoUThreshold,
		requests:      make(chan Request, 1),
		responses:     make(chan Response, 1),
	}
}

// Submit hands a request to the worker without blocking. Returns false when
// the slot is still occupied; the caller skips the tick.
func (w *Worker) Submit(req Request) bool {
	select {
	case w.requests <- req:
		return true
	default:
		return false
	}
}

// Responses is the channel the capture side selects on.
func (w *Worker) Responses() <-chan Response {
	return w.responses
}

// Run processes requests until the context is cancelled. Per-frame inference
// failures are reported in the response and the loop continues; one bad
// frame never blocks the next.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.requests:
			resp := Response{Session: req.Session}

			raw, err := w.engine.Infer(req.Tensor)
			if err != nil {
				w.logger.Warning("Inference failed, dropping frame: %v", err)
				resp.Err = err
			} else {
				candidates := detect.Decode(raw, w.confThreshold)
				resp.Detections = detect.NMS(candidates, w.iouThreshold)
			}

			select {
			case w.responses <- resp:
			case <-ctx.Done():
				return
			}
		}
	}
}
