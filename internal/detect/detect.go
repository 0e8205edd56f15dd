package detect

// Detection is an axis-aligned box with its confidence. Coordinates are
// corner-form (x, y is the top-left corner). Depending on the stage they are
// either model-space units or frame pixels; MapToFrame converts between the
// two.
type Detection struct {
	X          float32 `json:"x"`
	Y          float32 `json:"y"`
	W          float32 `json:"w"`
	H          float32 `json:"h"`
	Confidence float32 `json:"confidence"`
}

// RawOutput is the untyped result tensor of one inference pass. The decoder
// owns it during parsing; it is discarded afterwards.
type RawOutput struct {
	Data []float32
	Dims []int64
}
