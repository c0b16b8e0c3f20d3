package ai

import (
	"fmt"
	"strings"
	"sync"

	"plateocr/internal/config"
	"plateocr/internal/dto"
	"plateocr/internal/logger"

	"github.com/otiai10/gosseract/v2"
)

// plateChars restricts Tesseract to the characters that appear on plates.
const plateChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// TesseractDetector reads plate characters with Tesseract at symbol level.
// It needs no model file.
type TesseractDetector struct {
	client   *gosseract.Client
	clientMu sync.Mutex
	logger   *logger.Logger
}

func newTesseractDetector(cfg *config.Config, logger *logger.Logger) (*TesseractDetector, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage(cfg.TesseractLanguage); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set tesseract language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetWhitelist(plateChars); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}

	logger.Info("Tesseract detector initialized (%s)", cfg.TesseractLanguage)
	return &TesseractDetector{client: client, logger: logger}, nil
}

// DetectObjects returns one detection per recognised symbol at or above confidence.
// Tesseract scores 0..100; results are normalised to 0..1.
func (d *TesseractDetector) DetectObjects(imageBytes []byte, confidence float64) ([]dto.DetectionResult, error) {
	d.clientMu.Lock()
	defer d.clientMu.Unlock()

	if err := d.client.SetImageFromBytes(imageBytes); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := d.client.GetBoundingBoxes(gosseract.RIL_SYMBOL)
	if err != nil {
		return nil, fmt.Errorf("failed to get symbol boxes: %w", err)
	}

	var results []dto.DetectionResult
	for _, box := range boxes {
		label := strings.TrimSpace(box.Word)
		score := box.Confidence / 100
		if label == "" || score < confidence {
			continue
		}
		results = append(results, dto.DetectionResult{
			Label:      label,
			Confidence: score,
			X:          float64(box.Box.Min.X),
			Y:          float64(box.Box.Min.Y),
			Width:      float64(box.Box.Dx()),
			Height:     float64(box.Box.Dy()),
		})
	}

	d.logger.Info("Tesseract found %d symbol(s)", len(results))
	return results, nil
}

// Close releases the Tesseract client.
func (d *TesseractDetector) Close() error {
	return d.client.Close()
}
