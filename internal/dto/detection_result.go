package dto

// DetectionResult is one character candidate returned by a detector.
// X and Y are the top-left corner of the box in source-image pixels.
type DetectionResult struct {
	Label      string  `json:"char"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}
