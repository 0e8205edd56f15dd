package detect

// The output tensor of a detection model comes in one of two layouts,
// [1, numDetections, numFeatures] or [1, numFeatures, numDetections], and
// exported models disagree on which. The layout is picked at runtime by
// comparing the trailing dims: detection slots vastly outnumber features,
// so the larger dim is numDetections.

// layout indexes one value of a raw output tensor.
type layout interface {
	at(feature, slot int) float32
	slots() int
	features() int
}

// slotMajor reads [1, numDetections, numFeatures] outputs.
type slotMajor struct {
	data    []float32
	numDet  int
	numFeat int
}

func (l slotMajor) at(feature, slot int) float32 { return l.data[slot*l.numFeat+feature] }
func (l slotMajor) slots() int                   { return l.numDet }
func (l slotMajor) features() int                { return l.numFeat }

// featureMajor reads [1, numFeatures, numDetections] outputs.
type featureMajor struct {
	data    []float32
	numDet  int
	numFeat int
}

func (l featureMajor) at(feature, slot int) float32 { return l.data[feature*l.numDet+slot] }
func (l featureMajor) slots() int                   { return l.numDet }
func (l featureMajor) features() int                { return l.numFeat }

// probeLayout validates the declared dims and picks the matching layout.
// Returns nil when the output is malformed; the caller fails closed with
// zero detections.
func probeLayout(raw RawOutput) layout {
	if len(raw.Dims) != 3 || raw.Dims[0] != 1 {
		return nil
	}

	d1, d2 := int(raw.Dims[1]), int(raw.Dims[2])
	if d1 < 5 || d2 < 5 {
		// 4 box params + at least one class score
		return nil
	}
	if int64(d1)*int64(d2) != int64(len(raw.Data)) {
		return nil
	}

	if d1 > d2 {
		return slotMajor{data: raw.Data, numDet: d1, numFeat: d2}
	}
	return featureMajor{data: raw.Data, numDet: d2, numFeat: d1}
}

// Decode parses a raw output tensor into candidate detections in model-space
// corner form. Each slot carries a center-size box plus one score per class;
// the slot's confidence is its best class score, and only slots above the
// threshold are kept. A malformed tensor yields zero detections.
func Decode(raw RawOutput, confThreshold float32) []Detection {
	l := probeLayout(raw)
	if l == nil {
		return nil
	}

	var detections []Detection
	for slot := 0; slot < l.slots(); slot++ {
		confidence := l.at(4, slot)
		for f := 5; f < l.features(); f++ {
			if score := l.at(f, slot); score > confidence {
				confidence = score
			}
		}
		if confidence <= confThreshold {
			continue
		}

		cx := l.at(0, slot)
		cy := l.at(1, slot)
		w := l.at(2, slot)
		h := l.at(3, slot)

		detections = append(detections, Detection{
			X:          cx - w/2,
			Y:          cy - h/2,
			W:          w,
			H:          h,
			Confidence: confidence,
		})
	}

	return detections
}
