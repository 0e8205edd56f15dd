package detect

import "testing"

func TestMapToFrame_CornerBoxExact(t *testing.T) {
	// The full model-space square maps exactly onto the full frame.
	detections := []Detection{{X: 0, Y: 0, W: 640, H: 640, Confidence: 0.5}}

	mapped := MapToFrame(detections, 1280, 720, 640)
	m := mapped[0]
	if m.X != 0 || m.Y != 0 || m.W != 1280 || m.H != 720 {
		t.Errorf("Mapped box = (%v, %v, %v, %v), expected (0, 0, 1280, 720)", m.X, m.Y, m.W, m.H)
	}
}

func TestMapToFrame_ClampsToBounds(t *testing.T) {
	tests := []struct {
		name       string
		in         Detection
		x, y, w, h float32
	}{
		{
			"negative origin",
			Detection{X: -20, Y: -10, W: 100, H: 100},
			0, 0, 80, 90,
		},
		{
			"extent past edge",
			Detection{X: 600, Y: 600, W: 100, H: 100},
			600, 600, 40, 40,
		},
		{
			"fully outside",
			Detection{X: 700, Y: 700, W: 50, H: 50},
			640, 640, 0, 0,
		},
	}

	for _, tt := range tests {
		// Square frame matching the model size keeps the numbers readable.
		mapped := MapToFrame([]Detection{tt.in}, 640, 640, 640)
		m := mapped[0]
		if m.X != tt.x || m.Y != tt.y || m.W != tt.w || m.H != tt.h {
			t.Errorf("%s: mapped box = (%v, %v, %v, %v), expected (%v, %v, %v, %v)",
				tt.name, m.X, m.Y, m.W, m.H, tt.x, tt.y, tt.w, tt.h)
		}
	}
}

func TestMapToFrame_PreservesConfidence(t *testing.T) {
	detections := []Detection{{X: 10, Y: 10, W: 50, H: 50, Confidence: 0.77}}

	mapped := MapToFrame(detections, 320, 320, 640)
	if mapped[0].Confidence != 0.77 {
		t.Errorf("Confidence = %v, expected 0.77", mapped[0].Confidence)
	}
}
