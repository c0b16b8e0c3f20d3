package plate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"plateocr/internal/dto"
	"plateocr/internal/logger"
	"plateocr/internal/service/ai"
)

var (
	// ErrImageNotFound is returned when the plate image path does not exist.
	ErrImageNotFound = errors.New("image not found")
	// ErrInvalidConfidence is returned for thresholds outside [0, 1].
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")
)

// Reader reconstructs plate text from per-character detections.
type Reader struct {
	detector ai.Detector
	logger   *logger.Logger
}

func NewReader(detector ai.Detector, logger *logger.Logger) *Reader {
	return &Reader{detector: detector, logger: logger}
}

// ReadFile checks that imagePath exists and reads the plate it shows.
func (r *Reader) ReadFile(imagePath string, confidence float64) (*dto.PlateReading, error) {
	if err := ValidateConfidence(confidence); err != nil {
		return nil, err
	}

	imageBytes, err := os.ReadFile(imagePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, imagePath)
		}
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	return r.Read(imageBytes, confidence)
}

// Read runs the detector on an encoded plate crop, orders the characters
// left to right and joins their labels.
func (r *Reader) Read(imageBytes []byte, confidence float64) (*dto.PlateReading, error) {
	if err := ValidateConfidence(confidence); err != nil {
		return nil, err
	}

	detections, err := r.detector.DetectObjects(imageBytes, confidence)
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}

	reading := Assemble(detections)
	r.logger.Info("Plate read: %q from %d character(s)", reading.Text, len(reading.Characters))
	return reading, nil
}

// Assemble sorts detections by their left edge and concatenates the labels.
// Detections sharing an x position keep the order the detector returned them in.
func Assemble(detections []dto.DetectionResult) *dto.PlateReading {
	characters := make([]dto.DetectionResult, len(detections))
	copy(characters, detections)

	sort.SliceStable(characters, func(i, j int) bool {
		return characters[i].X < characters[j].X
	})

	var text strings.Builder
	for _, c := range characters {
		text.WriteString(c.Label)
	}

	return &dto.PlateReading{
		Text:       text.String(),
		Characters: characters,
	}
}

// ValidateConfidence rejects thresholds outside [0, 1], including NaN.
func ValidateConfidence(confidence float64) error {
	if !(confidence >= 0 && confidence <= 1) {
		return fmt.Errorf("%w: %v", ErrInvalidConfidence, confidence)
	}
	return nil
}
