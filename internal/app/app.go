package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"plateocr/internal/config"
	"plateocr/internal/logger"
	"plateocr/internal/routes"
	"plateocr/internal/service/ai"
	"plateocr/internal/service/plate"
	"plateocr/internal/service/websocket"
)

type App struct {
	config     *config.Config
	logger     *logger.Logger
	detector   ai.Detector
	reader     *plate.Reader
	hubService *websocket.HubService
}

func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	detector, err := ai.NewDetector(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create detector: %w", err)
	}

	return &App{
		config:     cfg,
		logger:     log,
		detector:   detector,
		reader:     plate.NewReader(detector, log),
		hubService: websocket.NewHubService(log),
	}, nil
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go a.hubService.Run()
	defer a.hubService.Stop()
	defer a.detector.Close()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           routes.SetupRoutes(a.reader, a.hubService, a.config, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	a.logger.Info("Plate OCR server listening on http://localhost:%d", a.config.Port)
	a.logger.Info("Backend: %s, model: %s", a.config.Backend, a.config.ModelPath)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
