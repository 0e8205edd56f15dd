package inference

import (
	"errors"
	"sync"

	"barscan/internal/config"
	"barscan/internal/detect"
	"barscan/internal/logger"
	"barscan/internal/sampler"
)

// State is the load state of the engine, surfaced as the pipeline status.
type State int

const (
	StateLoading State = iota
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "unknown"
}

// ErrNotReady is returned by Infer before a successful Load.
var ErrNotReady = errors.New("inference: model not loaded")

// runner is the loaded model session. Production uses onnxruntime; tests
// substitute a fake so they run without the shared library.
type runner interface {
	run(data []float32, shape []int64) ([]float32, []int64, error)
	destroy()
}

type runnerFactory func() (runner, error)

// Engine owns one loaded model and runs one tensor through it at a time.
// A load failure is sticky: no inference is accepted until an explicit
// Reload succeeds.
type Engine struct {
	logger    *logger.Logger
	newRunner runnerFactory

	mu      sync.Mutex
	state   State
	loadErr error
	runner  runner
}

// NewEngine creates an engine backed by onnxruntime. The model is not loaded
// until Load is called.
func NewEngine(cfg *config.Config, logger *logger.Logger) *Engine {
	factory := func() (runner, error) {
		return newOrtRunner(cfg.ModelPath, cfg.OnnxLibraryPath, cfg.ModelInputName, cfg.ModelOutputName)
	}
	return newEngine(factory, logger)
}

func newEngine(factory runnerFactory, logger *logger.Logger) *Engine {
	return &Engine{
		logger:    logger,
		newRunner: factory,
		state:     StateLoading,
	}
}

// Load loads the model once, before the detection loop starts. On failure the
// engine enters the error state and stays there; it never retries on its own.
func (e *Engine) Load() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateReady {
		return nil
	}

	r, err := e.newRunner()
	if err != nil {
		e.state = StateError
		e.loadErr = err
		e.logger.Error("Failed to load model: %v", err)
		return err
	}

	e.runner = r
	e.state = StateReady
	e.loadErr = nil
	e.logger.Info("Model loaded")
	return nil
}

// Reload performs one explicit new load attempt after a failure.
func (e *Engine) Reload() error {
	e.mu.Lock()
	if e.state == StateError {
		e.state = StateLoading
		e.loadErr = nil
	}
	e.mu.Unlock()
	return e.Load()
}

// Status returns the current state and, in the error state, the load error.
func (e *Engine) Status() (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.loadErr
}

// Infer runs a single tensor through the model and returns the raw output.
// Exactly one call runs at a time; the worker goroutine is the only caller.
func (e *Engine) Infer(t *sampler.Tensor) (detect.RawOutput, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady {
		return detect.RawOutput{}, ErrNotReady
	}

	data, dims, err := e.runner.run(t.Data, t.Shape())
	if err != nil {
		return detect.RawOutput{}, err
	}
	return detect.RawOutput{Data: data, Dims: dims}, nil
}

// Close releases the model session.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.runner != nil {
		e.runner.destroy()
		e.runner = nil
	}
	if e.state == StateReady {
		e.state = StateLoading
	}
}
