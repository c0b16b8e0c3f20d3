package plate

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"plateocr/internal/dto"
)

const reportTitle = "USA License Plate OCR"

var rule = strings.Repeat("=", 40)

// WriteUsage prints the command synopsis shown when no image is given.
func WriteUsage(w io.Writer, prog string) {
	fmt.Fprintln(w, reportTitle)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "\nUsage: %s <cropped_plate_image> [confidence]\n", prog)
	fmt.Fprintln(w, "\nExample:")
	fmt.Fprintf(w, "  %s plate_crop.jpg\n", prog)
	fmt.Fprintf(w, "  %s plate_crop.jpg 0.3\n", prog)
	fmt.Fprintln(w, "\nNote: Input image must be a cropped license plate,")
	fmt.Fprintln(w, "      not a full vehicle image.")
}

// WriteHeader prints the banner with the image and threshold being used.
func WriteHeader(w io.Writer, imagePath string, confidence float64) {
	fmt.Fprintln(w, reportTitle)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Image: %s\n", imagePath)
	fmt.Fprintf(w, "Confidence threshold: %s\n", FormatThreshold(confidence))
	fmt.Fprintln(w)
}

// WriteNoDetections prints the hint shown when nothing passed the threshold.
func WriteNoDetections(w io.Writer) {
	fmt.Fprintln(w, "No characters detected.")
	fmt.Fprintln(w, "Try lowering the confidence threshold.")
}

// WriteReading lists the characters in plate order followed by the joined text.
func WriteReading(w io.Writer, reading *dto.PlateReading) {
	fmt.Fprintf(w, "Detected %d character(s):\n\n", len(reading.Characters))
	for i, c := range reading.Characters {
		fmt.Fprintf(w, "  %d. '%s' (confidence: %.1f%%)\n", i+1, c.Label, c.Confidence*100)
	}
	fmt.Fprintf(w, "\nPlate text: %s\n", reading.Text)
}

// FormatThreshold renders a threshold the way it is usually typed: 0.25, 0.3, 1.0.
func FormatThreshold(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
