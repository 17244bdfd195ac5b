package stats

import (
	"math"

	"github.com/sartorproj/salescast/timeseries"
)

// DecompositionResult represents the classical decomposition of a series
// into trend, seasonal and residual components.
type DecompositionResult struct {
	Original *timeseries.Series
	Trend    *timeseries.Series
	Seasonal *timeseries.Series
	Residual *timeseries.Series
	Period   int
	Type     string // "additive" or "multiplicative"
}

// Decompose performs classical seasonal decomposition using a centered
// moving average for the trend. Type is "additive" (Y = T + S + R) or
// "multiplicative" (Y = T * S * R).
func Decompose(series *timeseries.Series, period int, decompositionType string) *DecompositionResult {
	n := series.Len()
	if n < 2*period {
		return nil
	}

	if decompositionType != "additive" && decompositionType != "multiplicative" {
		decompositionType = "additive"
	}

	trend := centeredTrend(series, period)

	// Detrend.
	detrended := make([]float64, n)
	for i := 0; i < n; i++ {
		switch {
		case math.IsNaN(trend[i]):
			detrended[i] = math.NaN()
		case decompositionType == "multiplicative":
			if trend[i] == 0 {
				detrended[i] = math.NaN()
			} else {
				detrended[i] = series.Values[i] / trend[i]
			}
		default:
			detrended[i] = series.Values[i] - trend[i]
		}
	}

	// Average within each period position.
	seasonalPattern := make([]float64, period)
	counts := make([]int, period)
	for i := 0; i < n; i++ {
		if !math.IsNaN(detrended[i]) {
			idx := i % period
			seasonalPattern[idx] += detrended[i]
			counts[idx]++
		}
	}
	for i := 0; i < period; i++ {
		if counts[i] > 0 {
			seasonalPattern[i] /= float64(counts[i])
		}
	}

	// Normalize so the seasonal component carries no level.
	sum := 0.0
	for _, v := range seasonalPattern {
		sum += v
	}
	mean := sum / float64(period)
	for i := range seasonalPattern {
		if decompositionType == "multiplicative" {
			seasonalPattern[i] /= mean
		} else {
			seasonalPattern[i] -= mean
		}
	}

	seasonal := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = seasonalPattern[i%period]
	}

	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		switch {
		case math.IsNaN(trend[i]):
			residual[i] = math.NaN()
		case decompositionType == "multiplicative":
			if trend[i] == 0 || seasonal[i] == 0 {
				residual[i] = math.NaN()
			} else {
				residual[i] = series.Values[i] / (trend[i] * seasonal[i])
			}
		default:
			residual[i] = series.Values[i] - trend[i] - seasonal[i]
		}
	}

	component := func(values []float64) *timeseries.Series {
		return &timeseries.Series{ID: series.ID, Timestamps: series.Timestamps, Values: values}
	}

	return &DecompositionResult{
		Original: series,
		Trend:    component(trend),
		Seasonal: component(seasonal),
		Residual: component(residual),
		Period:   period,
		Type:     decompositionType,
	}
}

// centeredTrend calculates the trend with a centered moving average,
// using a 2xm average when the period is even.
func centeredTrend(series *timeseries.Series, period int) []float64 {
	n := series.Len()
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = math.NaN()
	}

	halfPeriod := period / 2

	if period%2 == 0 {
		for i := halfPeriod; i < n-halfPeriod; i++ {
			sum := series.Values[i-halfPeriod]*0.5 + series.Values[i+halfPeriod]*0.5
			for j := i - halfPeriod + 1; j < i+halfPeriod; j++ {
				sum += series.Values[j]
			}
			trend[i] = sum / float64(period)
		}
	} else {
		for i := halfPeriod; i < n-halfPeriod; i++ {
			sum := 0.0
			for j := i - halfPeriod; j <= i+halfPeriod; j++ {
				sum += series.Values[j]
			}
			trend[i] = sum / float64(period)
		}
	}

	return trend
}
