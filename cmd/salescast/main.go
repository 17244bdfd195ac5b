// Command salescast runs the forecasting pipeline once: load the
// sales panel, drop short series, forecast every product seven days
// ahead, score the models on a holdout week and write the reports.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sartorproj/salescast/config"
	"github.com/sartorproj/salescast/pipeline"
	"github.com/sartorproj/salescast/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "salescast: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine, the environment still applies.
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
	result, err := p.Run(context.Background())
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"run_id":  result.RunID,
		"series":  result.Series,
		"dropped": result.Dropped,
		"horizon": cfg.Forecast.Horizon,
	}).Info("Forecast run completed")

	fmt.Println("Model leaderboard (mean MAE across series, best first):")
	for i, rank := range result.Leaderboard {
		fmt.Printf("  %d. %-24s %8.3f  (%d series)\n", i+1, rank.Model, rank.MeanMAE, rank.Series)
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
