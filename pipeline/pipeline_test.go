package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/salescast/config"
	"github.com/sartorproj/salescast/store"
)

func writeSampleCSV(t *testing.T, dir string) string {
	t.Helper()

	rng := rand.New(rand.NewSource(11))
	pattern := []float64{10, 12, 15, 14, 18, 25, 22}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var b strings.Builder
	b.WriteString("unique_id,ds,y\n")
	for _, spec := range []struct {
		id string
		n  int
	}{
		{"widget", 84},
		{"gadget", 56},
		{"stub", 10}, // below the observation floor, must be dropped
	} {
		for i := 0; i < spec.n; i++ {
			value := pattern[i%7] + rng.NormFloat64()
			fmt.Fprintf(&b, "%s,%s,%.3f\n", spec.id, start.AddDate(0, 0, i).Format("2006-01-02"), value)
		}
	}

	path := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Data: config.DataConfig{Path: writeSampleCSV(t, dir)},
		Forecast: config.ForecastConfig{
			Horizon:         7,
			Season:          7,
			MinObservations: 28,
			Models:          []string{"naive", "seasonal_naive", "historic_average"},
			Workers:         2,
		},
		Report: config.ReportConfig{OutputDir: filepath.Join(dir, "reports")},
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)

	p := New(cfg, nil, quietLogger())
	result, err := p.Run(context.Background())
	require.NoError(t, err)

	// The short series is dropped, two survive.
	assert.Equal(t, 2, result.Series)
	assert.Equal(t, 1, result.Dropped)

	// 2 series x 3 models x 7 steps.
	assert.Len(t, result.Rows, 42)
	// 2 series x 3 models.
	assert.Len(t, result.Scores, 6)
	assert.Len(t, result.Leaderboard, 3)

	for _, name := range []string{"forecast.json", "forecast.xlsx", "forecast.html"} {
		_, err := os.Stat(filepath.Join(cfg.Report.OutputDir, name))
		assert.NoError(t, err, name)
	}
}

func TestRunPersistsToStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Path = filepath.Join(t.TempDir(), "test.db")

	repo, err := store.NewSQLiteRepository(cfg.Store.Path)
	require.NoError(t, err)
	defer repo.Close()

	p := New(cfg, repo, quietLogger())
	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)

	run, err := repo.LatestRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, result.RunID, run.ID)
	assert.Equal(t, 2, run.Series)

	ids, err := repo.SeriesIDs(result.RunID)
	require.NoError(t, err)
	assert.Equal(t, []string{"gadget", "widget"}, ids)
}

func TestRefresh(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Path = filepath.Join(t.TempDir(), "test.db")

	repo, err := store.NewSQLiteRepository(cfg.Store.Path)
	require.NoError(t, err)
	defer repo.Close()

	p := New(cfg, repo, quietLogger())
	runID, err := p.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, runID)
}

func TestRunUnknownModel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Forecast.Models = []string{"prophet"}

	p := New(cfg, nil, quietLogger())
	_, err := p.Run(context.Background())
	assert.Error(t, err)
}

func TestRunAllSeriesTooShort(t *testing.T) {
	cfg := testConfig(t)
	cfg.Forecast.MinObservations = 500

	p := New(cfg, nil, quietLogger())
	_, err := p.Run(context.Background())
	assert.Error(t, err)
}
