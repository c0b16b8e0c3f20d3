package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"plateocr/internal/config"
	"plateocr/internal/dto"
	"plateocr/internal/logger"
	"plateocr/internal/service/plate"
	"plateocr/internal/service/websocket"

	gorilla "github.com/gorilla/websocket"
)

type stubDetector struct {
	detections []dto.DetectionResult
	err        error
	confidence float64
}

func (s *stubDetector) DetectObjects(imageBytes []byte, confidence float64) ([]dto.DetectionResult, error) {
	s.confidence = confidence
	return s.detections, s.err
}

func (s *stubDetector) Close() error { return nil }

type testServer struct {
	detector *stubDetector
	hub      *websocket.HubService
	handler  http.HandlerFunc
}

func setupTestServer(t *testing.T, detector *stubDetector) *testServer {
	t.Helper()

	log := logger.NewConsoleLogger(&bytes.Buffer{})
	cfg := &config.Config{Confidence: 0.25, MaxUploadBytes: 64}
	hub := websocket.NewHubService(log)
	go hub.Run()
	t.Cleanup(hub.Stop)

	return &testServer{
		detector: detector,
		hub:      hub,
		handler:  ReadPlateHandler(plate.NewReader(detector, log), hub, cfg, log),
	}
}

func TestReadPlateHandler_OK(t *testing.T) {
	ts := setupTestServer(t, &stubDetector{detections: []dto.DetectionResult{
		{Label: "2", Confidence: 0.9, X: 50},
		{Label: "M", Confidence: 0.8, X: 3},
	}})

	req := httptest.NewRequest(http.MethodPost, "/api/plates/read?confidence=0.4", strings.NewReader("image"))
	rec := httptest.NewRecorder()
	ts.handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ts.detector.confidence != 0.4 {
		t.Errorf("Expected threshold 0.4, got %v", ts.detector.confidence)
	}

	var reading dto.PlateReading
	if err := json.Unmarshal(rec.Body.Bytes(), &reading); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if reading.Text != "M2" {
		t.Errorf("Expected M2, got %q", reading.Text)
	}
}

func TestReadPlateHandler_DefaultConfidence(t *testing.T) {
	ts := setupTestServer(t, &stubDetector{})

	req := httptest.NewRequest(http.MethodPost, "/api/plates/read", strings.NewReader("image"))
	rec := httptest.NewRecorder()
	ts.handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ts.detector.confidence != 0.25 {
		t.Errorf("Expected default threshold 0.25, got %v", ts.detector.confidence)
	}
}

func TestReadPlateHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		err      error
		expected int
	}{
		{"method", http.MethodGet, "/api/plates/read", "", nil, http.StatusMethodNotAllowed},
		{"bad confidence", http.MethodPost, "/api/plates/read?confidence=x", "image", nil, http.StatusBadRequest},
		{"out of range", http.MethodPost, "/api/plates/read?confidence=2", "image", nil, http.StatusBadRequest},
		{"empty body", http.MethodPost, "/api/plates/read", "", nil, http.StatusBadRequest},
		{"too large", http.MethodPost, "/api/plates/read", strings.Repeat("x", 65), nil, http.StatusRequestEntityTooLarge},
		{"detector", http.MethodPost, "/api/plates/read", "image", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t, &stubDetector{err: tt.err})

			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			ts.handler(rec, req)

			if rec.Code != tt.expected {
				t.Errorf("Expected %d, got %d: %s", tt.expected, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestLiveReadingsHandler_ReceivesReadings(t *testing.T) {
	ts := setupTestServer(t, &stubDetector{detections: []dto.DetectionResult{
		{Label: "Q", Confidence: 0.9, X: 1},
	}})

	log := logger.NewConsoleLogger(&bytes.Buffer{})
	mux := http.NewServeMux()
	mux.HandleFunc("/api/plates/live", LiveReadingsHandler(ts.hub, log))
	mux.HandleFunc("/api/plates/read", ts.handler)
	server := httptest.NewServer(mux)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/plates/live"
	conn, _, err := gorilla.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for ts.hub.GetClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Viewer was never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Post(server.URL+"/api/plates/read", "image/jpeg", strings.NewReader("image"))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read live message: %v", err)
	}

	var reading dto.PlateReading
	if err := json.Unmarshal(message, &reading); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if reading.Text != "Q" {
		t.Errorf("Expected Q, got %q", reading.Text)
	}
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("Unexpected health response %d: %s", rec.Code, rec.Body.String())
	}
}
