package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"plateocr/internal/config"
	"plateocr/internal/logger"
	"plateocr/internal/service/plate"
	"plateocr/internal/service/websocket"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ReadPlateHandler handles POST /api/plates/read. The request body is the encoded
// plate crop; ?confidence= overrides the configured threshold. Every successful
// reading is also pushed to live viewers.
func ReadPlateHandler(reader *plate.Reader, hub *websocket.HubService, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		confidence := cfg.Confidence
		if value := r.URL.Query().Get("confidence"); value != "" {
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid confidence: " + value})
				return
			}
			confidence = parsed
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "image too large"})
				return
			}
			logger.Warning("Error reading upload: %v", err)
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "error reading body"})
			return
		}
		if len(body) == 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "empty image"})
			return
		}

		reading, err := reader.Read(body, confidence)
		if err != nil {
			if errors.Is(err, plate.ErrInvalidConfidence) {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}
			logger.Error("Plate read failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "plate read failed"})
			return
		}

		if message, err := json.Marshal(reading); err == nil {
			hub.Broadcast(message)
		}

		writeJSON(w, http.StatusOK, reading)
	}
}

// HealthHandler reports that the server is up.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
