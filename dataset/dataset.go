// Package dataset loads the sales panel from disk or a remote URL.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/sartorproj/salescast/timeseries"
)

// Loader fetches the panel CSV, downloading and caching it when the
// local file is missing.
type Loader struct {
	client *resty.Client
	logger *logrus.Logger
}

// NewLoader creates a Loader with a 60 second download timeout.
func NewLoader(logger *logrus.Logger) *Loader {
	if logger == nil {
		logger = logrus.New()
	}
	client := resty.New()
	client.SetTimeout(60 * time.Second)
	client.SetRetryCount(2)

	return &Loader{client: client, logger: logger}
}

// Load reads the panel CSV from path. When the file does not exist and
// url is non-empty, the file is downloaded there first.
func (l *Loader) Load(path, url string) (*timeseries.Panel, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if url == "" {
			return nil, fmt.Errorf("dataset %s does not exist and no download URL is configured", path)
		}
		if err := l.download(url, path); err != nil {
			return nil, err
		}
	}

	panel, err := timeseries.LoadPanelCSV(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}

	l.logger.WithFields(logrus.Fields{
		"path":         path,
		"series":       panel.Len(),
		"observations": panel.TotalObservations(),
	}).Info("Dataset loaded")

	return panel, nil
}

// download fetches url into path, creating parent directories as
// needed.
func (l *Loader) download(url, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}

	l.logger.WithFields(logrus.Fields{
		"url":  url,
		"path": path,
	}).Info("Downloading dataset")

	resp, err := l.client.R().SetOutput(path).Get(url)
	if err != nil {
		return fmt.Errorf("failed to download dataset: %w", err)
	}
	if resp.IsError() {
		os.Remove(path)
		return fmt.Errorf("dataset download returned status %d", resp.StatusCode())
	}

	return nil
}
