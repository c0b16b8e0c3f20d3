package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Backends understood by the detector factory.
const (
	BackendOpenCV    = "opencv"
	BackendONNX      = "onnx"
	BackendTesseract = "tesseract"
)

// DefaultModelName is the exported character model looked up next to the executable.
const DefaultModelName = "usa_plate_ocr.onnx"

type Config struct {
	ModelPath         string
	LabelsPath        string
	Backend           string
	Confidence        float64 // minimum character score, 0..1
	IoUThreshold      float64
	InputSize         int
	MaxDetections     int
	OnnxRuntimeLib    string
	TesseractLanguage string
	Port              int
	APIToken          string
	MaxUploadBytes    int64
	LogDirectory      string
}

// Load reads an optional .env file and builds the configuration from the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not load .env file: %v", err)
	}

	return &Config{
		ModelPath:         getEnv("MODEL_PATH", defaultModelPath()),
		LabelsPath:        getEnv("LABELS_PATH", ""),
		Backend:           getEnv("BACKEND", BackendOpenCV),
		Confidence:        getEnvAsFloat("CONFIDENCE", 0.25),
		IoUThreshold:      getEnvAsFloat("IOU_THRESHOLD", 0.7),
		InputSize:         getEnvAsInt("INPUT_SIZE", 640),
		MaxDetections:     getEnvAsInt("MAX_DETECTIONS", 300),
		OnnxRuntimeLib:    getEnv("ONNXRUNTIME_LIB", ""),
		TesseractLanguage: getEnv("TESSERACT_LANG", "eng"),
		Port:              getEnvAsInt("PORT", 8080),
		APIToken:          getEnv("API_TOKEN", ""),
		MaxUploadBytes:    getEnvAsInt64("MAX_UPLOAD_BYTES", 10<<20),
		LogDirectory:      getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}
}

// defaultModelPath points at the model shipped alongside the binary.
func defaultModelPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultModelName
	}
	return filepath.Join(filepath.Dir(exe), DefaultModelName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
