package capture

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"time"

	"gocv.io/x/gocv"

	"barscan/internal/frame"
)

// Webcam captures frames from a local camera device through OpenCV.
type Webcam struct {
	device *gocv.VideoCapture
	mat    gocv.Mat
}

func OpenWebcam(deviceID int) (*Webcam, error) {
	device, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", deviceID, err)
	}
	return &Webcam{
		device: device,
		mat:    gocv.NewMat(),
	}, nil
}

func (w *Webcam) Grab(ctx context.Context) (*frame.Frame, error) {
	if ok := w.device.Read(&w.mat); !ok || w.mat.Empty() {
		return nil, fmt.Errorf("failed to read frame from camera")
	}

	img, err := w.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	return frame.New(toRGBA(img), time.Now()), nil
}

// Close releases the capture device. The pipeline couples this with stopping
// the inference worker so neither leaks on teardown.
func (w *Webcam) Close() error {
	w.mat.Close()
	return w.device.Close()
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}
