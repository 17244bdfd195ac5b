// Command salescast-server serves forecasts over HTTP and refreshes
// them on a cron schedule.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sartorproj/salescast/api"
	"github.com/sartorproj/salescast/config"
	"github.com/sartorproj/salescast/pipeline"
	"github.com/sartorproj/salescast/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "salescast-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cfg)

	repo, err := store.NewSQLiteRepository(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer repo.Close()

	p := pipeline.New(cfg, repo, logger)

	// Make forecasts available immediately when the store is empty.
	if run, err := repo.LatestRun(); err != nil {
		logger.WithError(err).Warn("Failed to check for existing forecast runs")
	} else if run == nil {
		logger.Info("No forecast run found, running initial pipeline")
		if _, err := p.Refresh(context.Background()); err != nil {
			logger.WithError(err).Warn("Initial forecast run failed")
		}
	}

	var scheduler *api.Scheduler
	if cfg.Server.RefreshSchedule != "" {
		scheduler, err = api.NewScheduler(cfg.Server.RefreshSchedule, p, logger)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.WithField("schedule", cfg.Server.RefreshSchedule).Info("Forecast refresh scheduled")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	api.NewHandler(repo, p, logger).SetupRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	return nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}
