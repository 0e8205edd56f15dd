package symbol

import (
	"image"

	"github.com/makiuchi-d/gozxing"

	"barscan/internal/config"
	"barscan/internal/detect"
	"barscan/internal/frame"
)

// Decoder attempts exact payload extraction from an image region. A miss is
// an expected outcome, not an error, so the contract is just (payload, ok).
type Decoder interface {
	Decode(region image.Image) (string, bool)
}

// ZXingDecoder decodes 1D and 2D symbologies with the zxing multi-format
// reader.
type ZXingDecoder struct {
	reader *gozxing.MultiFormatReader
}

func NewZXingDecoder() *ZXingDecoder {
	return &ZXingDecoder{reader: gozxing.NewMultiFormatReader()}
}

func (d *ZXingDecoder) Decode(region image.Image) (string, bool) {
	bitmap, err := gozxing.NewBinaryBitmapFromImage(region)
	if err != nil {
		return "", false
	}

	result, err := d.reader.DecodeWithoutHints(bitmap)
	if err != nil {
		// NotFoundException and friends: nothing decodable here.
		return "", false
	}
	return result.GetText(), true
}

// Reader runs the secondary decode over surviving detections. Each region is
// the detection box expanded by a fixed padding margin, clamped to the frame
// on both origin and extent. Regions are independent: one miss never blocks
// the others.
type Reader struct {
	decoder Decoder
	padding int
}

func NewReader(decoder Decoder, cfg *config.Config) *Reader {
	return &Reader{
		decoder: decoder,
		padding: cfg.ROIPadding,
	}
}

// ReadRegion crops the source frame around one detection and attempts a
// decode. High confidence never substitutes for a successful decode: a
// region that yields no payload yields no result.
func (r *Reader) ReadRegion(f *frame.Frame, d detect.Detection) (string, bool) {
	region := cropRegion(f, d, r.padding)
	if region == nil {
		return "", false
	}
	return r.decoder.Decode(region)
}

// cropRegion returns the padded, clamped sub-image for a detection, or nil
// when the clamped rectangle is empty.
func cropRegion(f *frame.Frame, d detect.Detection, padding int) image.Image {
	x0 := int(d.X) - padding
	y0 := int(d.Y) - padding
	x1 := int(d.X+d.W) + padding
	y1 := int(d.Y+d.H) + padding

	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > f.Width {
		x1 = f.Width
	}
	if y1 > f.Height {
		y1 = f.Height
	}
	if x1 <= x0 || y1 <= y0 {
		return nil
	}

	return f.Pixels.SubImage(image.Rect(x0, y0, x1, y1))
}
