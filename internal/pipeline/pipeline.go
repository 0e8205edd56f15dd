package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"barscan/internal/config"
	"barscan/internal/dedup"
	"barscan/internal/detect"
	"barscan/internal/frame"
	"barscan/internal/inference"
	"barscan/internal/logger"
	"barscan/internal/sampler"
	"barscan/internal/symbol"
)

// Engine is what the controller needs from the model adapter.
type Engine interface {
	Load() error
	Reload() error
	Status() (inference.State, error)
}

// Worker is the boundary of the isolated inference domain. The two domains
// communicate only through Submit and Responses; tensors and detections are
// transferred by ownership, never shared.
type Worker interface {
	Run(ctx context.Context)
	Submit(req inference.Request) bool
	Responses() <-chan inference.Response
}

// Overlay is one frame's worth of mapped detections for drawing.
type Overlay struct {
	Detections  []detect.Detection `json:"detections"`
	FrameWidth  int                `json:"frame_width"`
	FrameHeight int                `json:"frame_height"`
	Timestamp   time.Time          `json:"timestamp"`
}

// Status is the top-level signal for consumers. Only a model load failure
// ever surfaces here; per-frame conditions stay in the counters.
type Status struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// Stats are aggregate per-frame counters.
type Stats struct {
	FramesSampled   uint64 `json:"frames_sampled"`
	TicksSkipped    uint64 `json:"ticks_skipped"`
	GrabErrors      uint64 `json:"grab_errors"`
	InferenceErrors uint64 `json:"inference_errors"`
	StaleResponses  uint64 `json:"stale_responses"`
	PayloadsDecoded uint64 `json:"payloads_decoded"`
	ResultsAccepted uint64 `json:"results_accepted"`
}

// Pipeline drives the detection loop: sample on a throttled cadence, hand
// the tensor to the inference domain, map the response back to frame space,
// attempt payload decodes and deduplicate results. At most one inference
// request is ever outstanding; the sampler skips ticks instead of queueing.
type Pipeline struct {
	cfg     *config.Config
	logger  *logger.Logger
	engine  Engine
	worker  Worker
	sampler *sampler.Sampler
	reader  *symbol.Reader
	dedup   *dedup.Deduplicator

	source   frame.Source
	switchCh chan frame.Source
	reloadCh chan struct{}

	overlays chan Overlay
	results  chan dedup.Result

	framesSampled   atomic.Uint64
	ticksSkipped    atomic.Uint64
	grabErrors      atomic.Uint64
	inferenceErrors atomic.Uint64
	staleResponses  atomic.Uint64
	payloadsDecoded atomic.Uint64
	resultsAccepted atomic.Uint64
}

func NewPipeline(cfg *config.Config, logger *logger.Logger, engine Engine, worker Worker, source frame.Source, reader *symbol.Reader, deduplicator *dedup.Deduplicator) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		logger:   logger,
		engine:   engine,
		worker:   worker,
		sampler:  sampler.NewSampler(cfg.ModelInputSize),
		reader:   reader,
		dedup:    deduplicator,
		source:   source,
		switchCh: make(chan frame.Source, 1),
		reloadCh: make(chan struct{}, 1),
		overlays: make(chan Overlay, 8),
		results:  make(chan dedup.Result, 8),
	}
}

// Overlays streams mapped detections for overlay drawing. Slow consumers
// lose events rather than stalling the loop.
func (p *Pipeline) Overlays() <-chan Overlay {
	return p.overlays
}

// Results streams accepted decoded payloads.
func (p *Pipeline) Results() <-chan dedup.Result {
	return p.results
}

// Recent returns the bounded recent-results list, newest first.
func (p *Pipeline) Recent() []dedup.Result {
	return p.dedup.Recent()
}

// Status reports ready, loading, or error with the load failure message.
func (p *Pipeline) Status() Status {
	state, err := p.engine.Status()
	s := Status{State: state.String()}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

// Stats returns a snapshot of the aggregate counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		FramesSampled:   p.framesSampled.Load(),
		TicksSkipped:    p.ticksSkipped.Load(),
		GrabErrors:      p.grabErrors.Load(),
		InferenceErrors: p.inferenceErrors.Load(),
		StaleResponses:  p.staleResponses.Load(),
		PayloadsDecoded: p.payloadsDecoded.Load(),
		ResultsAccepted: p.resultsAccepted.Load(),
	}
}

// Reload requests one new load attempt after a model load failure. There is
// no automatic retry; each call grants exactly one.
func (p *Pipeline) Reload() {
	select {
	case p.reloadCh <- struct{}{}:
	default:
	}
}

// SwitchSource replaces the frame source (e.g. a different capture device).
// The old source is closed inside the loop and the session is superseded, so
// an in-flight response sized for the old frames is discarded, never drawn.
func (p *Pipeline) SwitchSource(source frame.Source) {
	p.switchCh <- source
}

// Run executes the detection loop until the context is cancelled. Model
// loading gates sampling entirely: while the load has not succeeded, no
// tensor is ever submitted and the failure stays visible through Status.
// The loop only leaves the error state through an explicit Reload.
func (p *Pipeline) Run(ctx context.Context) error {
	// The inference worker and the frame source tear down together: stopping
	// one without the other would leak a capture device or a goroutine.
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	defer func() {
		if err := p.source.Close(); err != nil {
			p.logger.Warning("Failed to close frame source: %v", err)
		}
	}()

	if err := p.engine.Load(); err != nil {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-p.reloadCh:
			}
			if err := p.engine.Reload(); err == nil {
				break
			}
		}
	}

	go p.worker.Run(workerCtx)

	ticker := time.NewTicker(time.Duration(p.cfg.SamplingInterval) * time.Millisecond)
	defer ticker.Stop()

	p.logger.Info("Detection loop started (interval %dms, model input %d)", p.cfg.SamplingInterval, p.cfg.ModelInputSize)

	session := 1
	inflight := false
	var pending *frame.Frame // frame belonging to the outstanding request

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case source := <-p.switchCh:
			if err := p.source.Close(); err != nil {
				p.logger.Warning("Failed to close superseded source: %v", err)
			}
			p.source = source
			session++
			pending = nil
			p.logger.Info("Frame source switched, session %d", session)

		case <-ticker.C:
			if inflight {
				p.ticksSkipped.Add(1)
				continue
			}

			f, err := p.source.Grab(ctx)
			if err != nil {
				if errors.Is(err, frame.ErrNoFrame) {
					// An empty feed slot is a skipped tick, not a fault.
					p.ticksSkipped.Add(1)
					continue
				}
				p.grabErrors.Add(1)
				p.logger.Warning("Failed to grab frame: %v", err)
				continue
			}

			tensor := p.sampler.Pack(f)
			if p.worker.Submit(inference.Request{Session: session, Tensor: tensor}) {
				inflight = true
				pending = f
				p.framesSampled.Add(1)
			}

		case resp := <-p.worker.Responses():
			inflight = false
			if resp.Session != session {
				p.staleResponses.Add(1)
				continue
			}

			f := pending
			pending = nil
			if resp.Err != nil {
				p.inferenceErrors.Add(1)
				continue
			}
			if f == nil {
				continue
			}

			p.handleDetections(f, resp.Detections)
		}
	}
}

// handleDetections maps model-space boxes into frame pixels, publishes the
// overlay, and runs the secondary decode over each region.
func (p *Pipeline) handleDetections(f *frame.Frame, detections []detect.Detection) {
	mapped := detect.MapToFrame(detections, f.Width, f.Height, p.cfg.ModelInputSize)

	p.emitOverlay(Overlay{
		Detections:  mapped,
		FrameWidth:  f.Width,
		FrameHeight: f.Height,
		Timestamp:   f.Timestamp,
	})

	for _, d := range mapped {
		payload, ok := p.reader.ReadRegion(f, d)
		if !ok {
			// A miss is expected and silent, regardless of confidence.
			continue
		}
		p.payloadsDecoded.Add(1)

		result, accepted := p.dedup.Accept(payload, d, time.Now())
		if !accepted {
			continue
		}
		p.resultsAccepted.Add(1)
		p.logger.Info("Decoded payload %q (confidence %.2f)", result.Payload, d.Confidence)
		p.emitResult(result)
	}
}

func (p *Pipeline) emitOverlay(o Overlay) {
	select {
	case p.overlays <- o:
	default:
	}
}

func (p *Pipeline) emitResult(r dedup.Result) {
	select {
	case p.results <- r:
	default:
	}
}
