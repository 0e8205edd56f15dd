package sampler

import (
	"image"

	"golang.org/x/image/draw"

	"barscan/internal/frame"
)

// Tensor is the packed model input: shape [1,3,S,S], planar channel order
// R,G,B, values normalized to [0,1]. One tensor per sampled frame, consumed
// by exactly one inference call.
type Tensor struct {
	Data []float32
	Size int
}

// Shape returns the tensor dims in NCHW order.
func (t *Tensor) Shape() []int64 {
	s := int64(t.Size)
	return []int64{1, 3, s, s}
}

// Sampler turns captured frames into model input tensors.
type Sampler struct {
	size   int
	square *image.RGBA // reused between ticks; at most one tensor is packed at a time
}

func NewSampler(modelInputSize int) *Sampler {
	return &Sampler{
		size:   modelInputSize,
		square: image.NewRGBA(image.Rect(0, 0, modelInputSize, modelInputSize)),
	}
}

// Pack stretches the frame to SxS (no letterboxing), then normalizes each
// R/G/B channel into a planar float32 buffer. Alpha is discarded.
func (s *Sampler) Pack(f *frame.Frame) *Tensor {
	draw.ApproxBiLinear.Scale(s.square, s.square.Bounds(), f.Pixels, f.Pixels.Bounds(), draw.Src, nil)

	area := s.size * s.size
	data := make([]float32, 3*area)
	for y := 0; y < s.size; y++ {
		row := s.square.Pix[y*s.square.Stride:]
		for x := 0; x < s.size; x++ {
			i := y*s.size + x
			data[i] = float32(row[x*4]) / 255.0
			data[area+i] = float32(row[x*4+1]) / 255.0
			data[2*area+i] = float32(row[x*4+2]) / 255.0
		}
	}

	return &Tensor{Data: data, Size: s.size}
}
