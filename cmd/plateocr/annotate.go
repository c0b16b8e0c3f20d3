package main

import (
	"fmt"
	"os"

	"plateocr/internal/dto"
	"plateocr/internal/service/ai"
)

// annotate writes imagePath with the detected character boxes to outPath as JPEG.
func annotate(imagePath, outPath string, characters []dto.DetectionResult) error {
	img, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	annotated, err := ai.DrawRectangle(characters, img)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, annotated, 0644); err != nil {
		return fmt.Errorf("failed to write annotated image: %w", err)
	}
	return nil
}
