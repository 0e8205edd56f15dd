package sampler

import (
	"image"
	"image/color"
	"testing"
	"time"

	"barscan/internal/frame"
)

func solidFrame(w, h int, c color.RGBA) *frame.Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return frame.New(img, time.Now())
}

func TestPack_Shape(t *testing.T) {
	s := NewSampler(64)
	tensor := s.Pack(solidFrame(320, 240, color.RGBA{R: 10, G: 20, B: 30, A: 255}))

	if len(tensor.Data) != 3*64*64 {
		t.Fatalf("Tensor length = %d, expected %d", len(tensor.Data), 3*64*64)
	}

	shape := tensor.Shape()
	expected := []int64{1, 3, 64, 64}
	for i := range expected {
		if shape[i] != expected[i] {
			t.Errorf("Shape[%d] = %d, expected %d", i, shape[i], expected[i])
		}
	}
}

func TestPack_PlanarChannelOrder(t *testing.T) {
	// A solid color frame packs to constant planes in R,G,B order.
	s := NewSampler(32)
	tensor := s.Pack(solidFrame(100, 100, color.RGBA{R: 255, G: 128, B: 0, A: 255}))

	area := 32 * 32
	tests := []struct {
		name     string
		offset   int
		expected float32
	}{
		{"red plane", 0, 1.0},
		{"green plane", area, 128.0 / 255.0},
		{"blue plane", 2 * area, 0.0},
	}

	for _, tt := range tests {
		for i := 0; i < area; i++ {
			if got := tensor.Data[tt.offset+i]; got != tt.expected {
				t.Fatalf("%s[%d] = %v, expected %v", tt.name, i, got, tt.expected)
			}
		}
	}
}

func TestPack_ValuesNormalized(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 5), G: uint8(y * 5), B: uint8((x + y) * 2), A: 255})
		}
	}

	s := NewSampler(32)
	tensor := s.Pack(frame.New(img, time.Now()))
	for i, v := range tensor.Data {
		if v < 0 || v > 1 {
			t.Fatalf("Data[%d] = %v, outside [0,1]", i, v)
		}
	}
}

func TestPack_AlphaDiscarded(t *testing.T) {
	// Two frames differing only in alpha pack identically.
	s := NewSampler(16)
	opaque := s.Pack(solidFrame(64, 64, color.RGBA{R: 40, G: 80, B: 120, A: 255}))
	translucent := s.Pack(solidFrame(64, 64, color.RGBA{R: 40, G: 80, B: 120, A: 55}))

	for i := range opaque.Data {
		if opaque.Data[i] != translucent.Data[i] {
			t.Fatalf("Data[%d] differs with alpha: %v vs %v", i, opaque.Data[i], translucent.Data[i])
		}
	}
}

func TestPack_StretchesWithoutLetterboxing(t *testing.T) {
	// Left half red, right half blue on a wide frame: the stretched square
	// must still be red on the left edge and blue on the right edge, with no
	// letterbox bars.
	img := image.NewRGBA(image.Rect(0, 0, 200, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 200; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= 100 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	s := NewSampler(32)
	tensor := s.Pack(frame.New(img, time.Now()))

	area := 32 * 32
	for y := 0; y < 32; y++ {
		left := y * 32
		right := y*32 + 31
		if tensor.Data[left] < 0.9 {
			t.Fatalf("Row %d left edge red = %v, expected ~1.0", y, tensor.Data[left])
		}
		if tensor.Data[2*area+right] < 0.9 {
			t.Fatalf("Row %d right edge blue = %v, expected ~1.0", y, tensor.Data[2*area+right])
		}
	}
}
