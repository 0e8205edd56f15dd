package frame

import (
	"context"
	"errors"
	"image"
	"time"
)

// ErrNoFrame is returned by Grab when no frame is ready yet. The sampler
// treats it as a skipped tick, not a fault.
var ErrNoFrame = errors.New("frame: no frame available")

// Frame is a single captured video frame. Pixels are always RGBA; the frame
// owns them, and stages must not mutate them after handing the frame on.
type Frame struct {
	Pixels    *image.RGBA
	Width     int
	Height    int
	Timestamp time.Time
}

// New wraps an RGBA image into a Frame stamped with the given capture time.
func New(img *image.RGBA, ts time.Time) *Frame {
	bounds := img.Bounds()
	return &Frame{
		Pixels:    img,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Timestamp: ts,
	}
}

// Source yields decodable video frames on demand.
type Source interface {
	// Grab returns the most recent frame available. It may return an error
	// when no frame is ready; the caller skips the tick and tries again.
	Grab(ctx context.Context) (*Frame, error)

	// Close releases the underlying capture device or feed.
	Close() error
}
