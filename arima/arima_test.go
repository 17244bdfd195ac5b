package arima

import (
	"math"
	"math/rand"
	"testing"

	"github.com/sartorproj/salescast/timeseries"
)

func arSeries(n int, phi float64, seed int64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	values[0] = rng.NormFloat64()
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + rng.NormFloat64()
	}
	return timeseries.New(values)
}

func trendSeries(n int, slope float64, seed int64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		values[i] = slope*float64(i) + rng.NormFloat64()
	}
	return timeseries.New(values)
}

func TestFitInsufficientData(t *testing.T) {
	model := New(2, 1, 2)
	err := model.Fit(timeseries.New([]float64{1, 2, 3, 4, 5}))
	if err == nil {
		t.Fatal("Expected error for insufficient data")
	}
}

func TestFitWhiteNoiseModel(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	values := make([]float64, 100)
	for i := range values {
		values[i] = 5 + rng.NormFloat64()
	}

	model := New(0, 0, 0)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if math.Abs(model.Intercept-5) > 0.5 {
		t.Errorf("Expected intercept near 5, got %f", model.Intercept)
	}
	if math.Abs(model.Variance-1) > 0.5 {
		t.Errorf("Expected variance near 1, got %f", model.Variance)
	}
}

func TestFitAR1(t *testing.T) {
	series := arSeries(500, 0.7, 2)

	model := New(1, 0, 0)
	if err := model.Fit(series); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if math.Abs(model.ARCoeffs[0]-0.7) > 0.2 {
		t.Errorf("Expected AR coefficient near 0.7, got %f", model.ARCoeffs[0])
	}
}

func TestForecastLength(t *testing.T) {
	series := arSeries(200, 0.5, 3)

	model := New(1, 0, 1)
	if err := model.Fit(series); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	for _, h := range []int{1, 7, 30} {
		forecasts, err := model.Forecast(h)
		if err != nil {
			t.Fatalf("Forecast(%d) failed: %v", h, err)
		}
		if len(forecasts) != h {
			t.Errorf("Expected %d forecasts, got %d", h, len(forecasts))
		}
	}
}

func TestForecastBeforeFit(t *testing.T) {
	model := New(1, 0, 0)
	if _, err := model.Forecast(5); err == nil {
		t.Fatal("Expected error when forecasting before fit")
	}
}

func TestForecastInvalidHorizon(t *testing.T) {
	series := arSeries(100, 0.5, 4)
	model := New(1, 0, 0)
	if err := model.Fit(series); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if _, err := model.Forecast(0); err == nil {
		t.Fatal("Expected error for horizon 0")
	}
}

func TestRandomWalkForecastContinuesLevel(t *testing.T) {
	// A (0,1,0) model forecasts the last observed value forward.
	rng := rand.New(rand.NewSource(5))
	values := make([]float64, 200)
	for i := 1; i < len(values); i++ {
		values[i] = values[i-1] + rng.NormFloat64()
	}
	series := timeseries.New(values)

	model := New(0, 1, 0)
	if err := model.Fit(series); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	forecasts, err := model.Forecast(5)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	last := values[len(values)-1]
	if math.Abs(forecasts[0]-last) > 1.0 {
		t.Errorf("Expected first forecast near last value %f, got %f", last, forecasts[0])
	}
}

func TestTrendForecastIncreases(t *testing.T) {
	series := trendSeries(200, 0.5, 6)

	model := New(1, 1, 0)
	if err := model.Fit(series); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	forecasts, err := model.Forecast(10)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	last := series.Values[series.Len()-1]
	if forecasts[9] < last-5 {
		t.Errorf("Expected forecasts to track the upward trend, got %f after %f", forecasts[9], last)
	}
}

func TestInformationCriteria(t *testing.T) {
	series := arSeries(300, 0.6, 7)

	model := New(1, 0, 0)
	if err := model.Fit(series); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if math.IsInf(model.AIC, 0) || math.IsNaN(model.AIC) {
		t.Errorf("Expected finite AIC, got %f", model.AIC)
	}
	if model.AICc < model.AIC {
		t.Errorf("AICc (%f) should not be below AIC (%f)", model.AICc, model.AIC)
	}
	if model.BIC < model.AIC {
		t.Errorf("Expected BIC >= AIC for n >= 8, got BIC=%f AIC=%f", model.BIC, model.AIC)
	}
}

func TestSummary(t *testing.T) {
	series := arSeries(200, 0.6, 8)

	model := New(1, 0, 1)
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
	if summary.NObs != 200 {
		t.Errorf("Expected 200 observations, got %d", summary.NObs)
	}
	if summary.LjungBox == nil {
		t.Error("Expected Ljung-Box result in summary")
	}
}

func TestResidualsAndFittedValues(t *testing.T) {
	series := arSeries(150, 0.5, 9)

	model := New(1, 0, 0)
	if err := model.Fit(series); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	residuals := model.Residuals()
	fitted := model.FittedValues()

	if len(residuals) != len(fitted) {
		t.Fatalf("Residuals and fitted values lengths differ: %d vs %d", len(residuals), len(fitted))
	}

	// residual = observed - fitted on the differenced scale (d=0 here).
	for i := range residuals {
		if math.Abs(residuals[i]+fitted[i]-series.Values[i]) > 1e-8 {
			t.Fatalf("Residual identity violated at index %d", i)
		}
	}
}

func TestName(t *testing.T) {
	model := New(2, 1, 1)
	if model.Name() != "ARIMA(2,1,1)" {
		t.Errorf("Unexpected name: %s", model.Name())
	}
}
