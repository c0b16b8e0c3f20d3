package dto

// PlateReading is the reconstructed plate text with its characters ordered left to right.
type PlateReading struct {
	Text       string            `json:"text"`
	Characters []DetectionResult `json:"characters"`
}
