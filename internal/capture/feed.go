package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"barscan/internal/frame"
)

// Feed is a frame source fed by remote cameras pushing JPEG frames over a
// websocket. It is a single-slot mailbox with overwrite policy: a new frame
// replaces an unconsumed one and the drop counter moves. Stale frames are
// never queued.
type Feed struct {
	mu     sync.Mutex
	latest *frame.Frame
	drops  uint64
	pushes uint64
}

func NewFeed() *Feed {
	return &Feed{}
}

// Push decodes one JPEG frame and stores it as the latest.
func (f *Feed) Push(jpegData []byte) error {
	mat, err := gocv.IMDecode(jpegData, gocv.IMReadColor)
	if err != nil {
		return fmt.Errorf("failed to decode pushed frame: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return fmt.Errorf("pushed frame is empty")
	}

	img, err := mat.ToImage()
	if err != nil {
		return fmt.Errorf("failed to convert pushed frame: %w", err)
	}

	f.store(frame.New(toRGBA(img), time.Now()))
	return nil
}

func (f *Feed) store(fr *frame.Frame) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.latest != nil {
		f.drops++
	}
	f.latest = fr
	f.pushes++
}

// Grab consumes the latest pushed frame, or ErrNoFrame when the slot is
// empty.
func (f *Feed) Grab(ctx context.Context) (*frame.Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.latest == nil {
		return nil, frame.ErrNoFrame
	}
	fr := f.latest
	f.latest = nil
	return fr, nil
}

// Drops reports overwritten frames. Drops are expected whenever cameras push
// faster than the sampler consumes.
func (f *Feed) Drops() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drops
}

func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = nil
	return nil
}
