package forecast

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/salescast/baseline"
	"github.com/sartorproj/salescast/timeseries"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func testPanel(t *testing.T, lengths map[string]int) *timeseries.Panel {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(42))

	panel := timeseries.NewPanel()
	for id, n := range lengths {
		pattern := []float64{10, 12, 15, 14, 18, 25, 22}
		values := make([]float64, n)
		for i := range values {
			values[i] = pattern[i%7] + rng.NormFloat64()
		}
		panel.Add(timeseries.NewDaily(id, start, values))
	}
	return panel
}

func baselineFactories() []Factory {
	return []Factory{
		func() Forecaster { return baseline.NewNaive() },
		func() Forecaster { return baseline.NewSeasonalNaive(7) },
		func() Forecaster { return baseline.NewHistoricAverage() },
	}
}

func TestRunRowsPerSeriesAndModel(t *testing.T) {
	panel := testPanel(t, map[string]int{"widget": 56, "gadget": 84, "doohickey": 42})

	engine := NewEngine(7, 2, baselineFactories(), testLogger())
	rows, err := engine.Run(context.Background(), panel)
	require.NoError(t, err)

	// 3 series x 3 models x 7 steps.
	assert.Len(t, rows, 63)

	counts := make(map[string]map[string]int)
	for _, row := range rows {
		if counts[row.UniqueID] == nil {
			counts[row.UniqueID] = make(map[string]int)
		}
		counts[row.UniqueID][row.Model]++
	}

	for id, models := range counts {
		assert.Len(t, models, 3, "series %s", id)
		for model, n := range models {
			assert.Equal(t, 7, n, "series %s model %s", id, model)
		}
	}
}

func TestRunForecastDatesFollowHistory(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i)
	}
	panel := timeseries.NewPanel()
	panel.Add(timeseries.NewDaily("widget", start, values))

	engine := NewEngine(7, 1, baselineFactories(), testLogger())
	rows, err := engine.Run(context.Background(), panel)
	require.NoError(t, err)

	lastObserved := start.AddDate(0, 0, 29)
	for _, row := range rows {
		wantDate := lastObserved.AddDate(0, 0, row.Step)
		assert.Equal(t, wantDate, row.Date)
	}
}

func TestRunRowsSorted(t *testing.T) {
	panel := testPanel(t, map[string]int{"b": 42, "a": 42})

	engine := NewEngine(3, 4, baselineFactories(), testLogger())
	rows, err := engine.Run(context.Background(), panel)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		if prev.UniqueID == cur.UniqueID && prev.Model == cur.Model {
			assert.Less(t, prev.Step, cur.Step)
		}
	}
	assert.Equal(t, "a", rows[0].UniqueID)
}

func TestRunInvalidHorizon(t *testing.T) {
	engine := NewEngine(0, 1, baselineFactories(), testLogger())
	_, err := engine.Run(context.Background(), timeseries.NewPanel())
	assert.Error(t, err)
}

func TestRunCancelledContext(t *testing.T) {
	panel := testPanel(t, map[string]int{"widget": 56})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(7, 1, baselineFactories(), testLogger())
	_, err := engine.Run(ctx, panel)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunSkipsFailingModel(t *testing.T) {
	// SeasonalNaive[30] cannot fit a 10 point series, the rest can.
	factories := []Factory{
		func() Forecaster { return baseline.NewNaive() },
		func() Forecaster { return baseline.NewSeasonalNaive(30) },
	}

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	panel := timeseries.NewPanel()
	panel.Add(timeseries.NewDaily("widget", start, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}))

	engine := NewEngine(7, 1, factories, testLogger())
	rows, err := engine.Run(context.Background(), panel)
	require.NoError(t, err)

	assert.Len(t, rows, 7)
	for _, row := range rows {
		assert.Equal(t, "Naive", row.Model)
	}
}

func TestEvaluateScoresEveryModel(t *testing.T) {
	panel := testPanel(t, map[string]int{"widget": 84, "gadget": 84})

	engine := NewEngine(7, 2, baselineFactories(), testLogger())
	scores, err := engine.Evaluate(context.Background(), panel)
	require.NoError(t, err)

	// 2 series x 3 models.
	assert.Len(t, scores, 6)
	for _, score := range scores {
		assert.GreaterOrEqual(t, score.MAE, 0.0)
		assert.GreaterOrEqual(t, score.RMSE, score.MAE)
	}
}

func TestEvaluateSeasonalNaiveBeatsNaiveOnSeasonalData(t *testing.T) {
	panel := testPanel(t, map[string]int{"widget": 140})

	engine := NewEngine(7, 1, baselineFactories(), testLogger())
	scores, err := engine.Evaluate(context.Background(), panel)
	require.NoError(t, err)

	byModel := make(map[string]Score)
	for _, score := range scores {
		byModel[score.Model] = score
	}

	require.Contains(t, byModel, "Naive")
	require.Contains(t, byModel, "SeasonalNaive[7]")
	assert.Less(t, byModel["SeasonalNaive[7]"].MAE, byModel["Naive"].MAE)
}

func TestEvaluateSkipsShortSeries(t *testing.T) {
	// 5 observations cannot be split with a 7 day holdout.
	panel := testPanel(t, map[string]int{"widget": 84, "stub": 5})

	logger, hook := logrustest.NewNullLogger()
	engine := NewEngine(7, 1, baselineFactories(), logger)
	scores, err := engine.Evaluate(context.Background(), panel)
	require.NoError(t, err)

	for _, score := range scores {
		assert.NotEqual(t, "stub", score.UniqueID)
	}

	var warned bool
	for _, entry := range hook.Entries {
		if entry.Level == logrus.WarnLevel && entry.Data["unique_id"] == "stub" {
			warned = true
		}
	}
	assert.True(t, warned, "expected a warning for the skipped series")
}

func TestCompare(t *testing.T) {
	scores := []Score{
		{UniqueID: "a", Model: "Naive", MAE: 4},
		{UniqueID: "b", Model: "Naive", MAE: 6},
		{UniqueID: "a", Model: "SeasonalNaive[7]", MAE: 2},
		{UniqueID: "b", Model: "SeasonalNaive[7]", MAE: 2},
	}

	ranks := Compare(scores)
	require.Len(t, ranks, 2)

	assert.Equal(t, "SeasonalNaive[7]", ranks[0].Model)
	assert.InDelta(t, 2.0, ranks[0].MeanMAE, 1e-9)
	assert.Equal(t, 2, ranks[0].Series)

	assert.Equal(t, "Naive", ranks[1].Model)
	assert.InDelta(t, 5.0, ranks[1].MeanMAE, 1e-9)
}

func TestFactoryFor(t *testing.T) {
	names := []string{"naive", "seasonal_naive", "historic_average", "auto_arima", "auto_ets"}
	for _, name := range names {
		factory, ok := FactoryFor(name, 7)
		require.True(t, ok, name)
		assert.NotNil(t, factory(), name)
	}

	_, ok := FactoryFor("prophet", 7)
	assert.False(t, ok)
}
