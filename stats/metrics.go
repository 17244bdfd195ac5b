package stats

import (
	"errors"
	"math"
)

// ErrNoOverlap is returned when actual and forecast share no values.
var ErrNoOverlap = errors.New("actual and forecast slices have no overlap")

// MAE calculates the mean absolute error between actuals and forecasts.
// Slices are aligned from the start; the shorter length wins.
func MAE(actual, forecast []float64) (float64, error) {
	n := overlap(actual, forecast)
	if n == 0 {
		return 0, ErrNoOverlap
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += math.Abs(actual[i] - forecast[i])
	}
	return sum / float64(n), nil
}

// RMSE calculates the root mean squared error.
func RMSE(actual, forecast []float64) (float64, error) {
	n := overlap(actual, forecast)
	if n == 0 {
		return 0, ErrNoOverlap
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		d := actual[i] - forecast[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n)), nil
}

// MAPE calculates the mean absolute percentage error. Zero actuals are
// skipped; if every actual is zero the result is NaN.
func MAPE(actual, forecast []float64) (float64, error) {
	n := overlap(actual, forecast)
	if n == 0 {
		return 0, ErrNoOverlap
	}

	sum := 0.0
	count := 0
	for i := 0; i < n; i++ {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs(actual[i]-forecast[i]) / math.Abs(actual[i])
		count++
	}
	if count == 0 {
		return math.NaN(), nil
	}
	return sum / float64(count) * 100, nil
}

// SMAPE calculates the symmetric mean absolute percentage error, which
// stays defined for intermittent sales series with zero days.
func SMAPE(actual, forecast []float64) (float64, error) {
	n := overlap(actual, forecast)
	if n == 0 {
		return 0, ErrNoOverlap
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		denom := (math.Abs(actual[i]) + math.Abs(forecast[i])) / 2
		if denom == 0 {
			continue
		}
		sum += math.Abs(actual[i]-forecast[i]) / denom
	}
	return sum / float64(n) * 100, nil
}

// Accuracy bundles the standard comparison metrics for one forecast.
type Accuracy struct {
	MAE   float64 `json:"mae"`
	RMSE  float64 `json:"rmse"`
	MAPE  float64 `json:"mape"`
	SMAPE float64 `json:"smape"`
}

// Evaluate calculates all metrics for one actual/forecast pair.
func Evaluate(actual, forecast []float64) (*Accuracy, error) {
	mae, err := MAE(actual, forecast)
	if err != nil {
		return nil, err
	}
	rmse, _ := RMSE(actual, forecast)
	mape, _ := MAPE(actual, forecast)
	smape, _ := SMAPE(actual, forecast)

	return &Accuracy{MAE: mae, RMSE: rmse, MAPE: mape, SMAPE: smape}, nil
}

func overlap(a, b []float64) int {
	if len(a) < len(b) {
		return len(a)
	}
	return len(b)
}
