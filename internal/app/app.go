package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gundetect/internal/config"
	"gundetect/internal/logger"
	"gundetect/internal/repository"
	"gundetect/internal/repository/sqlite"
	"gundetect/internal/route"
	"gundetect/internal/service"
	"gundetect/internal/service/ai"
	"gundetect/internal/service/storage"
	"gundetect/internal/service/websocket"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config          *config.Config
	logger          *logger.Logger
	db              *sqlite.DB
	detectorService *ai.DetectorService
	hubService      *websocket.HubService
	server          *http.Server
}

// NewApp loads configuration and wires every service. It fails only when the
// alert folders cannot be created or the labels file is unreadable; a
// missing model or database is logged and the server still starts.
func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	labels, err := ai.LoadLabels(cfg.LabelsPath)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewAlertStore(cfg, log)
	if err != nil {
		return nil, err
	}

	var (
		db            *sqlite.DB
		alertRepo     repository.AlertRepository
		detectionRepo repository.DetectionRepository
	)
	if cfg.DatabasePath != "" {
		db, err = sqlite.New(cfg.DatabasePath)
		if err != nil {
			log.Warning("Alert index disabled: %v", err)
		} else {
			alertRepo = sqlite.NewAlertRepository(db)
			detectionRepo = sqlite.NewDetectionRepository(db)
		}
	}

	detector := ai.NewDetectorService(cfg, log)
	hub := websocket.NewHubService(cfg, log)
	processor := service.NewFrameProcessor(detector, labels, store, alertRepo, detectionRepo, hub, log)

	router := route.SetupRoutes(route.Dependencies{
		Processor:     processor,
		Detector:      detector,
		Hub:           hub,
		AlertStore:    store,
		AlertRepo:     alertRepo,
		DetectionRepo: detectionRepo,
		Logger:        log,
		MaxBodyBytes:  cfg.MaxBodyBytes,
	})

	return &App{
		config:          cfg,
		logger:          log,
		db:              db,
		detectorService: detector,
		hubService:      hub,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	go a.hubService.Run()

	a.logger.Info("Gun detection server listening on http://%s", a.server.Addr)
	a.logger.Info("Model: %s (ready: %v)", a.config.ModelPath, a.detectorService.Ready())
	a.logger.Info("Alerts: %s", a.config.AlertsDirectory)
	if a.db != nil {
		a.logger.Info("Alert index: %s", a.config.DatabasePath)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		a.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	a.close()
	return err
}

func (a *App) close() {
	a.hubService.Stop()
	if err := a.detectorService.Close(); err != nil {
		a.logger.Error("Error closing detector: %v", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Error closing database: %v", err)
		}
	}
}
