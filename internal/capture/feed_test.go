package capture

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"barscan/internal/frame"
)

func pushTestFrame(f *Feed) *frame.Frame {
	fr := frame.New(image.NewRGBA(image.Rect(0, 0, 8, 8)), time.Now())
	f.store(fr)
	return fr
}

func TestFeed_GrabEmpty(t *testing.T) {
	f := NewFeed()

	if _, err := f.Grab(context.Background()); !errors.Is(err, frame.ErrNoFrame) {
		t.Errorf("Grab on empty feed = %v, expected ErrNoFrame", err)
	}
}

func TestFeed_GrabConsumesSlot(t *testing.T) {
	f := NewFeed()
	pushed := pushTestFrame(f)

	got, err := f.Grab(context.Background())
	if err != nil {
		t.Fatalf("Grab failed: %v", err)
	}
	if got != pushed {
		t.Error("Grab returned a different frame than was pushed")
	}

	// The mailbox is single-slot: a grabbed frame is gone.
	if _, err := f.Grab(context.Background()); !errors.Is(err, frame.ErrNoFrame) {
		t.Errorf("Second grab = %v, expected ErrNoFrame", err)
	}
}

func TestFeed_OverwriteCountsDrops(t *testing.T) {
	f := NewFeed()

	pushTestFrame(f)
	pushTestFrame(f)
	latest := pushTestFrame(f)

	if f.Drops() != 2 {
		t.Errorf("Drops = %d, expected 2", f.Drops())
	}

	got, err := f.Grab(context.Background())
	if err != nil {
		t.Fatalf("Grab failed: %v", err)
	}
	if got != latest {
		t.Error("Grab should return the newest frame after overwrites")
	}
}

func TestFeed_CloseClearsSlot(t *testing.T) {
	f := NewFeed()
	pushTestFrame(f)

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := f.Grab(context.Background()); !errors.Is(err, frame.ErrNoFrame) {
		t.Errorf("Grab after Close = %v, expected ErrNoFrame", err)
	}
}
