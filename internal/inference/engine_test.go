package inference

import (
	"errors"
	"testing"

	"barscan/internal/config"
	"barscan/internal/logger"
	"barscan/internal/sampler"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.NewLogger(&config.Config{LogDirectory: t.TempDir()})
}

type fakeRunner struct {
	data      []float32
	dims      []int64
	err       error
	runCalls  int
	destroyed bool
}

func (f *fakeRunner) run(data []float32, shape []int64) ([]float32, []int64, error) {
	f.runCalls++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.data, f.dims, nil
}

func (f *fakeRunner) destroy() { f.destroyed = true }

func testTensor() *sampler.Tensor {
	return &sampler.Tensor{Data: make([]float32, 3*4*4), Size: 4}
}

func TestEngine_LoadSuccess(t *testing.T) {
	r := &fakeRunner{data: make([]float32, 50), dims: []int64{1, 5, 10}}
	e := newEngine(func() (runner, error) { return r, nil }, testLogger(t))

	if err := e.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	state, loadErr := e.Status()
	if state != StateReady || loadErr != nil {
		t.Errorf("Status = %v, %v, expected ready with nil error", state, loadErr)
	}

	if _, err := e.Infer(testTensor()); err != nil {
		t.Errorf("Infer failed after load: %v", err)
	}
}

func TestEngine_LoadFailureIsSticky(t *testing.T) {
	loadAttempts := 0
	e := newEngine(func() (runner, error) {
		loadAttempts++
		return nil, errors.New("model file not found")
	}, testLogger(t))

	if err := e.Load(); err == nil {
		t.Fatal("Expected load error")
	}

	state, loadErr := e.Status()
	if state != StateError {
		t.Errorf("State = %v, expected error", state)
	}
	if loadErr == nil {
		t.Error("Expected load error surfaced in status")
	}

	// No inference may be submitted while the error state is active.
	if _, err := e.Infer(testTensor()); !errors.Is(err, ErrNotReady) {
		t.Errorf("Infer error = %v, expected ErrNotReady", err)
	}

	if loadAttempts != 1 {
		t.Errorf("Load attempts = %d, expected 1 (no automatic retry)", loadAttempts)
	}
}

func TestEngine_ReloadRetriesOnce(t *testing.T) {
	r := &fakeRunner{data: make([]float32, 50), dims: []int64{1, 5, 10}}
	loadAttempts := 0
	e := newEngine(func() (runner, error) {
		loadAttempts++
		if loadAttempts == 1 {
			return nil, errors.New("transient failure")
		}
		return r, nil
	}, testLogger(t))

	if err := e.Load(); err == nil {
		t.Fatal("Expected first load to fail")
	}
	if err := e.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	state, _ := e.Status()
	if state != StateReady {
		t.Errorf("State after reload = %v, expected ready", state)
	}
	if loadAttempts != 2 {
		t.Errorf("Load attempts = %d, expected 2", loadAttempts)
	}
}

func TestEngine_LoadIsIdempotentWhenReady(t *testing.T) {
	loadAttempts := 0
	e := newEngine(func() (runner, error) {
		loadAttempts++
		return &fakeRunner{dims: []int64{1, 5, 10}, data: make([]float32, 50)}, nil
	}, testLogger(t))

	e.Load()
	e.Load()
	e.Reload()

	if loadAttempts != 1 {
		t.Errorf("Load attempts = %d, expected 1", loadAttempts)
	}
}

func TestEngine_InferErrorIsNonFatal(t *testing.T) {
	r := &fakeRunner{err: errors.New("bad pass")}
	e := newEngine(func() (runner, error) { return r, nil }, testLogger(t))
	e.Load()

	if _, err := e.Infer(testTensor()); err == nil {
		t.Fatal("Expected inference error")
	}

	// The engine stays ready; the next frame goes through normally.
	state, _ := e.Status()
	if state != StateReady {
		t.Errorf("State after inference error = %v, expected ready", state)
	}

	r.err = nil
	r.data = make([]float32, 50)
	r.dims = []int64{1, 5, 10}
	if _, err := e.Infer(testTensor()); err != nil {
		t.Errorf("Infer after recovery failed: %v", err)
	}
}

func TestEngine_CloseDestroysRunner(t *testing.T) {
	r := &fakeRunner{data: make([]float32, 50), dims: []int64{1, 5, 10}}
	e := newEngine(func() (runner, error) { return r, nil }, testLogger(t))
	e.Load()
	e.Close()

	if !r.destroyed {
		t.Error("Expected runner destroyed on Close")
	}
	if _, err := e.Infer(testTensor()); !errors.Is(err, ErrNotReady) {
		t.Errorf("Infer after Close = %v, expected ErrNotReady", err)
	}
}
