package plate

import (
	"bytes"
	"strings"
	"testing"

	"plateocr/internal/dto"
)

func TestWriteHeaderAndReading(t *testing.T) {
	var buf bytes.Buffer
	reading := Assemble([]dto.DetectionResult{
		{Label: "B", Confidence: 0.8771, X: 30},
		{Label: "A", Confidence: 0.932, X: 5},
	})

	WriteHeader(&buf, "plate.jpg", 0.25)
	WriteReading(&buf, reading)

	expected := "USA License Plate OCR\n" +
		strings.Repeat("=", 40) + "\n" +
		"Image: plate.jpg\n" +
		"Confidence threshold: 0.25\n" +
		"\n" +
		"Detected 2 character(s):\n" +
		"\n" +
		"  1. 'A' (confidence: 93.2%)\n" +
		"  2. 'B' (confidence: 87.7%)\n" +
		"\n" +
		"Plate text: AB\n"

	if buf.String() != expected {
		t.Errorf("Unexpected report:\n%s\nexpected:\n%s", buf.String(), expected)
	}
}

func TestWriteNoDetections(t *testing.T) {
	var buf bytes.Buffer
	WriteNoDetections(&buf)

	expected := "No characters detected.\nTry lowering the confidence threshold.\n"
	if buf.String() != expected {
		t.Errorf("Unexpected output: %q", buf.String())
	}
}

func TestWriteUsage(t *testing.T) {
	var buf bytes.Buffer
	WriteUsage(&buf, "plateocr")

	out := buf.String()
	for _, want := range []string{
		"Usage: plateocr <cropped_plate_image> [confidence]",
		"  plateocr plate_crop.jpg 0.3",
		"not a full vehicle image.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Usage missing %q:\n%s", want, out)
		}
	}
}

func TestFormatThreshold(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0.25, "0.25"},
		{0.3, "0.3"},
		{1, "1.0"},
		{0, "0.0"},
		{0.125, "0.125"},
	}

	for _, tt := range tests {
		if got := FormatThreshold(tt.input); got != tt.expected {
			t.Errorf("FormatThreshold(%v) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
