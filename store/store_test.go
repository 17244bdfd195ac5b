package store

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/salescast/forecast"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleRows() []forecast.Row {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	var rows []forecast.Row
	for _, id := range []string{"widget", "gadget"} {
		for step := 1; step <= 7; step++ {
			rows = append(rows, forecast.Row{
				UniqueID: id,
				Model:    "Naive",
				Date:     start.AddDate(0, 0, step),
				Step:     step,
				Value:    float64(step) * 1.5,
			})
		}
	}
	return rows
}

func TestSaveAndLoadRun(t *testing.T) {
	repo := openTestRepo(t)

	scores := []forecast.Score{
		{UniqueID: "widget", Model: "Naive", MAE: 1.2, RMSE: 1.5, MAPE: 10, SMAPE: 9},
		{UniqueID: "gadget", Model: "Naive", MAE: 2.0, RMSE: 2.4, MAPE: 15, SMAPE: 13},
	}

	runID, err := repo.SaveRun(7, sampleRows(), scores)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	run, err := repo.LatestRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, 7, run.Horizon)
	assert.Equal(t, 2, run.Series)

	ids, err := repo.SeriesIDs(runID)
	require.NoError(t, err)
	assert.Equal(t, []string{"gadget", "widget"}, ids)

	rows, err := repo.ForecastsBySeries(runID, "widget")
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, "widget", rows[0].UniqueID)
	assert.Equal(t, 1, rows[0].Step)

	loaded, err := repo.Scores(runID)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestLatestRunEmpty(t *testing.T) {
	repo := openTestRepo(t)

	run, err := repo.LatestRun()
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestLatestRunPicksNewest(t *testing.T) {
	repo := openTestRepo(t)

	_, err := repo.SaveRun(7, sampleRows(), nil)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	secondID, err := repo.SaveRun(14, sampleRows(), nil)
	require.NoError(t, err)

	run, err := repo.LatestRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, secondID, run.ID)
	assert.Equal(t, 14, run.Horizon)
}

func TestNaNScoreRoundTrip(t *testing.T) {
	repo := openTestRepo(t)

	scores := []forecast.Score{
		{UniqueID: "widget", Model: "Naive", MAE: 1.0, RMSE: 1.2, MAPE: math.NaN(), SMAPE: 8},
	}

	runID, err := repo.SaveRun(7, sampleRows(), scores)
	require.NoError(t, err)

	loaded, err := repo.Scores(runID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, math.IsNaN(loaded[0].MAPE))
	assert.Equal(t, 8.0, loaded[0].SMAPE)
}

func TestForecastsUnknownSeries(t *testing.T) {
	repo := openTestRepo(t)

	runID, err := repo.SaveRun(7, sampleRows(), nil)
	require.NoError(t, err)

	rows, err := repo.ForecastsBySeries(runID, "missing")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
