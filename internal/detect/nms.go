package detect

import "sort"

// IoU returns the intersection-over-union of two corner-form boxes,
// 0 when they are disjoint.
func IoU(a, b Detection) float32 {
	interX1 := max32(a.X, b.X)
	interY1 := max32(a.Y, b.Y)
	interX2 := min32(a.X+a.W, b.X+b.W)
	interY2 := min32(a.Y+a.H, b.Y+b.H)

	interW := interX2 - interX1
	interH := interY2 - interY1
	if interW <= 0 || interH <= 0 {
		return 0
	}

	interArea := interW * interH
	unionArea := a.W*a.H + b.W*b.H - interArea
	if unionArea <= 0 {
		return 0
	}
	return interArea / unionArea
}

// NMS removes redundant overlapping detections. Candidates are sorted by
// confidence descending (stable, ties keep input order); the best
// unsuppressed box is always kept and every later box overlapping it by more
// than iouThreshold is dropped. Stateless across frames.
func NMS(detections []Detection, iouThreshold float32) []Detection {
	if len(detections) == 0 {
		return nil
	}

	sorted := make([]Detection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]Detection, 0, len(sorted))
	suppressed := make([]bool, len(sorted))
	for i := range sorted {
		if suppressed[i] {
			continue
		}
		kept = append(kept, sorted[i])
		for j := i + 1; j < len(sorted); j++ {
			if suppressed[j] {
				continue
			}
			if IoU(sorted[i], sorted[j]) > iouThreshold {
				suppressed[j] = true
			}
		}
	}

	return kept
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
