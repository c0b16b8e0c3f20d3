package ai

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"math"
	"os"
	"plateocr/internal/config"
	"plateocr/internal/dto"
	"plateocr/internal/logger"

	"gocv.io/x/gocv"
)

var (
	// ErrModelNotFound is returned when the configured model file does not exist.
	ErrModelNotFound = errors.New("model not found")
	// ErrUnknownBackend is returned for a backend name the factory does not know.
	ErrUnknownBackend = errors.New("unknown detector backend")
	// ErrEmptyImage is returned when the image bytes decode to nothing.
	ErrEmptyImage = errors.New("decoded image is empty")
)

// Detector turns a plate crop into per-character detections.
// Implementations are safe for concurrent use.
type Detector interface {
	DetectObjects(imageBytes []byte, confidence float64) ([]dto.DetectionResult, error)
	Close() error
}

// NewDetector builds the backend named by cfg.Backend.
func NewDetector(cfg *config.Config, logger *logger.Logger) (Detector, error) {
	switch cfg.Backend {
	case config.BackendTesseract:
		return newTesseractDetector(cfg, logger)
	case config.BackendOpenCV, config.BackendONNX:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	if err := checkModel(cfg.ModelPath); err != nil {
		return nil, err
	}

	var labels Labels
	if cfg.LabelsPath != "" {
		loaded, err := LoadLabels(cfg.LabelsPath)
		if err != nil {
			return nil, err
		}
		labels = loaded
		logger.Info("Loaded %d labels from %s", len(labels), cfg.LabelsPath)
	}

	if cfg.Backend == config.BackendONNX {
		return newONNXDetector(cfg, labels, logger)
	}

	if labels == nil {
		logger.Warning("No labels file configured, using built-in alphabet (%d classes)", len(DefaultAlphabet))
		labels = DefaultAlphabet
	}
	return newOpenCVDetector(cfg, labels, logger)
}

// checkModel reports a missing model as ErrModelNotFound.
func checkModel(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return fmt.Errorf("failed to stat model: %w", err)
	}
	return nil
}

// DrawRectangle draws detection results on the image and returns a re-encoded JPEG buffer.
func DrawRectangle(detections []dto.DetectionResult, img []byte) ([]byte, error) {
	red := color.RGBA{R: 255, G: 0, B: 0, A: 0}

	mat, err := gocv.IMDecode(img, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, ErrEmptyImage
	}

	for _, detection := range detections {
		x, y := int(math.Round(detection.X)), int(math.Round(detection.Y))
		rect := image.Rect(x, y, x+int(math.Round(detection.Width)), y+int(math.Round(detection.Height)))
		if err := gocv.Rectangle(&mat, rect, red, 1); err != nil {
			return nil, fmt.Errorf("failed to draw rectangle: %w", err)
		}

		pt := image.Pt(x, y-2)
		if err := gocv.PutText(&mat, detection.Label, pt, gocv.FontHersheySimplex, 0.4, red, 1); err != nil {
			return nil, fmt.Errorf("failed to draw text: %w", err)
		}
	}

	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	finalImage := make([]byte, len(buf.GetBytes()))
	copy(finalImage, buf.GetBytes())

	return finalImage, nil
}
