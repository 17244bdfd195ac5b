package sarima

import (
	"math"
	"math/rand"
	"testing"

	"github.com/sartorproj/salescast/timeseries"
)

func weeklySeries(n int, seed int64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	pattern := []float64{10, 12, 15, 14, 18, 25, 22}
	values := make([]float64, n)
	for i := range values {
		values[i] = pattern[i%7] + rng.NormFloat64()
	}
	return timeseries.New(values)
}

func TestFitInsufficientData(t *testing.T) {
	model := New(1, 1, 1, 1, 1, 1, 7)
	err := model.Fit(timeseries.New([]float64{1, 2, 3, 4, 5}))
	if err == nil {
		t.Fatal("Expected error for insufficient data")
	}
}

func TestFitWeeklySeasonal(t *testing.T) {
	series := weeklySeries(280, 1)

	model := New(1, 0, 0, 1, 1, 0, 7)
	if err := model.Fit(series); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if math.IsNaN(model.Variance) || model.Variance <= 0 {
		t.Errorf("Expected positive variance, got %f", model.Variance)
	}
}

func TestForecastLength(t *testing.T) {
	series := weeklySeries(210, 2)

	model := New(1, 0, 1, 0, 1, 1, 7)
	if err := model.Fit(series); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	for _, h := range []int{1, 7, 14} {
		forecasts, err := model.Forecast(h)
		if err != nil {
			t.Fatalf("Forecast(%d) failed: %v", h, err)
		}
		if len(forecasts) != h {
			t.Errorf("Expected %d forecasts, got %d", h, len(forecasts))
		}
	}
}

func TestForecastTracksWeeklyPattern(t *testing.T) {
	series := weeklySeries(280, 3)

	model := New(0, 0, 0, 1, 1, 0, 7)
	if err := model.Fit(series); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	forecasts, err := model.Forecast(7)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	// The forecast week should stay close to the last observed week.
	lastWeek := series.Values[series.Len()-7:]
	for i := range forecasts {
		if math.Abs(forecasts[i]-lastWeek[i]) > 6 {
			t.Errorf("Day %d: forecast %f far from seasonal level %f", i, forecasts[i], lastWeek[i])
		}
	}
}

func TestForecastWithInterval(t *testing.T) {
	series := weeklySeries(210, 4)

	model := New(1, 0, 0, 1, 1, 0, 7)
	if err := model.Fit(series); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	forecasts, lower, upper, err := model.ForecastWithInterval(14, 0.95)
	if err != nil {
		t.Fatalf("ForecastWithInterval failed: %v", err)
	}

	if len(lower) != 14 || len(upper) != 14 {
		t.Fatalf("Expected 14 bounds, got %d lower and %d upper", len(lower), len(upper))
	}

	for i := range forecasts {
		if lower[i] > forecasts[i] || upper[i] < forecasts[i] {
			t.Errorf("Step %d: interval [%f, %f] does not contain forecast %f",
				i, lower[i], upper[i], forecasts[i])
		}
	}

	// Interval width should not shrink with the horizon.
	firstWidth := upper[0] - lower[0]
	lastWidth := upper[13] - lower[13]
	if lastWidth < firstWidth-1e-9 {
		t.Errorf("Expected interval width to grow, got %f then %f", firstWidth, lastWidth)
	}
}

func TestForecastBeforeFit(t *testing.T) {
	model := New(1, 0, 0, 1, 0, 0, 7)
	if _, err := model.Forecast(7); err == nil {
		t.Fatal("Expected error when forecasting before fit")
	}
}

func TestForecastInvalidHorizon(t *testing.T) {
	series := weeklySeries(140, 5)
	model := New(1, 0, 0, 0, 1, 0, 7)
	if err := model.Fit(series); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if _, err := model.Forecast(0); err == nil {
		t.Fatal("Expected error for horizon 0")
	}
}

func TestNormalQuantile(t *testing.T) {
	tests := []struct {
		p    float64
		want float64
	}{
		{0.975, 1.96},
		{0.95, 1.645},
		{0.5, 0.0},
		{0.025, -1.96},
	}

	for _, tt := range tests {
		got := normalQuantile(tt.p)
		if math.Abs(got-tt.want) > 0.01 {
			t.Errorf("normalQuantile(%f) = %f, want %f", tt.p, got, tt.want)
		}
	}
}

func TestSummary(t *testing.T) {
	series := weeklySeries(210, 6)

	model := New(1, 0, 1, 1, 1, 0, 7)
	if model.Summary() != nil {
		t.Error("Expected nil summary before fit")
	}

	if err := model.Fit(series); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	summary := model.Summary()
	if summary == nil {
		t.Fatal("Expected non-nil summary after fit")
	}
	if summary.NObs != 210 {
		t.Errorf("Expected 210 observations, got %d", summary.NObs)
	}
	if summary.Order.M != 7 {
		t.Errorf("Expected seasonal period 7, got %d", summary.Order.M)
	}
}

func TestName(t *testing.T) {
	model := New(1, 1, 1, 0, 1, 1, 7)
	if model.Name() != "SARIMA(1,1,1)(0,1,1)[7]" {
		t.Errorf("Unexpected name: %s", model.Name())
	}
}
