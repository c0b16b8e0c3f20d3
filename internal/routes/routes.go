package routes

import (
	"net/http"

	"plateocr/internal/config"
	"plateocr/internal/handler"
	"plateocr/internal/logger"
	"plateocr/internal/middleware"
	"plateocr/internal/service/plate"
	"plateocr/internal/service/websocket"
)

// SetupRoutes registers the plate API, the live feed and the log endpoints,
// and wraps the mux with the authentication middleware.
func SetupRoutes(reader *plate.Reader, hub *websocket.HubService, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", handler.HealthHandler)

	// API endpoints
	mux.HandleFunc("/api/plates/read", handler.ReadPlateHandler(reader, hub, cfg, logger))
	mux.HandleFunc("/api/plates/live", handler.LiveReadingsHandler(hub, logger))

	// Log endpoints
	for _, level := range []string{"info", "warning", "error"} {
		filename := level + ".log"
		mux.HandleFunc("/logs/"+level, handler.ShowLogsHandler(logger, filename))
		mux.HandleFunc("/logs/"+level+"/clear", handler.ClearLogsHandler(logger, filename))
	}

	return middleware.AuthMiddleware(cfg.APIToken, mux)
}
