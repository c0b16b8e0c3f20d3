package config

import (
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"MODEL_PATH", "BACKEND", "CONFIDENCE", "IOU_THRESHOLD", "INPUT_SIZE", "PORT", "MAX_UPLOAD_BYTES"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if filepath.Base(cfg.ModelPath) != DefaultModelName {
		t.Errorf("Expected model %s, got %s", DefaultModelName, cfg.ModelPath)
	}
	if cfg.Backend != BackendOpenCV {
		t.Errorf("Expected backend %s, got %s", BackendOpenCV, cfg.Backend)
	}
	if cfg.Confidence != 0.25 {
		t.Errorf("Expected confidence 0.25, got %v", cfg.Confidence)
	}
	if cfg.IoUThreshold != 0.7 {
		t.Errorf("Expected IoU 0.7, got %v", cfg.IoUThreshold)
	}
	if cfg.InputSize != 640 {
		t.Errorf("Expected input size 640, got %d", cfg.InputSize)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Port)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("Expected 10 MiB upload limit, got %d", cfg.MaxUploadBytes)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("MODEL_PATH", "/models/plate.onnx")
	t.Setenv("BACKEND", BackendONNX)
	t.Setenv("CONFIDENCE", "0.4")
	t.Setenv("INPUT_SIZE", "320")
	t.Setenv("API_TOKEN", "secret")

	cfg := Load()

	if cfg.ModelPath != "/models/plate.onnx" {
		t.Errorf("Expected model path from env, got %s", cfg.ModelPath)
	}
	if cfg.Backend != BackendONNX {
		t.Errorf("Expected backend onnx, got %s", cfg.Backend)
	}
	if cfg.Confidence != 0.4 {
		t.Errorf("Expected confidence 0.4, got %v", cfg.Confidence)
	}
	if cfg.InputSize != 320 {
		t.Errorf("Expected input size 320, got %d", cfg.InputSize)
	}
	if cfg.APIToken != "secret" {
		t.Errorf("Expected API token from env, got %q", cfg.APIToken)
	}
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("CONFIDENCE", "high")
	t.Setenv("INPUT_SIZE", "12.5")
	t.Setenv("MAX_UPLOAD_BYTES", "lots")

	cfg := Load()

	if cfg.Confidence != 0.25 {
		t.Errorf("Expected default confidence, got %v", cfg.Confidence)
	}
	if cfg.InputSize != 640 {
		t.Errorf("Expected default input size, got %d", cfg.InputSize)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("Expected default upload limit, got %d", cfg.MaxUploadBytes)
	}
}
