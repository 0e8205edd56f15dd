package detect

// MapToFrame rescales model-space detections into source-frame pixel space.
// The sampler stretches the frame to a square model input, so each axis gets
// its own scale factor. Boxes are clamped to the frame bounds; the clamped
// invariant is what the secondary decoder and overlay rely on.
func MapToFrame(detections []Detection, frameWidth, frameHeight, modelInputSize int) []Detection {
	if len(detections) == 0 {
		return nil
	}

	scaleX := float32(frameWidth) / float32(modelInputSize)
	scaleY := float32(frameHeight) / float32(modelInputSize)

	mapped := make([]Detection, 0, len(detections))
	for _, d := range detections {
		x := d.X * scaleX
		y := d.Y * scaleY
		w := d.W * scaleX
		h := d.H * scaleY

		x, w = clampSpan(x, w, float32(frameWidth))
		y, h = clampSpan(y, h, float32(frameHeight))

		mapped = append(mapped, Detection{
			X:          x,
			Y:          y,
			W:          w,
			H:          h,
			Confidence: d.Confidence,
		})
	}

	return mapped
}

// clampSpan clamps an origin+extent pair into [0, limit].
func clampSpan(origin, extent, limit float32) (float32, float32) {
	if origin < 0 {
		extent += origin
		origin = 0
	}
	if origin > limit {
		origin = limit
	}
	if origin+extent > limit {
		extent = limit - origin
	}
	if extent < 0 {
		extent = 0
	}
	return origin, extent
}
