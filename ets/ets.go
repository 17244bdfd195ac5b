// Package ets implements exponential smoothing models.
package ets

import (
	"errors"
	"fmt"
	"math"

	"github.com/sartorproj/salescast/stats"
	"github.com/sartorproj/salescast/timeseries"
)

var errNotFitted = errors.New("model must be fitted before forecasting")

// SES is simple exponential smoothing. It tracks a single level and
// forecasts it flat.
type SES struct {
	Alpha float64 // smoothing parameter, 0 picks the best by SSE

	level     float64
	sse       float64
	nObs      int
	fittedVal []float64
	AIC       float64
	AICc      float64
	BIC       float64
	fitted    bool
}

// NewSES creates a simple exponential smoothing model. Alpha outside
// (0, 1) is optimized during fitting.
func NewSES(alpha float64) *SES {
	return &SES{Alpha: alpha}
}

// Name identifies the model in result tables.
func (m *SES) Name() string {
	return "SES"
}

// Fit estimates the level, optimizing alpha over a grid when it was
// not supplied.
func (m *SES) Fit(series *timeseries.Series) error {
	if series.Len() < 3 {
		return errors.New("insufficient data points for smoothing")
	}

	y := series.Values

	run := func(alpha float64) (level, sse float64, fitted []float64) {
		level = y[0]
		fitted = make([]float64, len(y))
		for t := 0; t < len(y); t++ {
			fitted[t] = level
			err := y[t] - level
			sse += err * err
			level += alpha * err
		}
		return level, sse, fitted
	}

	alpha := m.Alpha
	if alpha <= 0 || alpha >= 1 {
		bestSSE := math.Inf(1)
		for a := 0.05; a < 1; a += 0.05 {
			if _, sse, _ := run(a); sse < bestSSE {
				bestSSE = sse
				alpha = a
			}
		}
	}

	m.Alpha = alpha
	m.level, m.sse, m.fittedVal = run(alpha)
	m.nObs = len(y)
	m.calculateIC(2) // alpha and the initial level
	m.fitted = true
	return nil
}

// Forecast repeats the final level h times.
func (m *SES) Forecast(h int) ([]float64, error) {
	if !m.fitted {
		return nil, errNotFitted
	}
	if h < 1 {
		return nil, errors.New("forecast horizon must be at least 1")
	}
	forecasts := make([]float64, h)
	for i := range forecasts {
		forecasts[i] = m.level
	}
	return forecasts, nil
}

// FittedValues returns the in-sample one step forecasts.
func (m *SES) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	out := make([]float64, len(m.fittedVal))
	copy(out, m.fittedVal)
	return out
}

func (m *SES) calculateIC(k int) {
	ic := gaussianIC(m.sse, m.nObs, k)
	m.AIC, m.AICc, m.BIC = ic.AIC, ic.AICc, ic.BIC
}

// Holt is double exponential smoothing with an additive trend.
type Holt struct {
	Alpha float64 // level smoothing, 0 picks the best by SSE
	Beta  float64 // trend smoothing, 0 picks the best by SSE

	level  float64
	trend  float64
	sse    float64
	nObs   int
	AIC    float64
	AICc   float64
	BIC    float64
	fitted bool
}

// NewHolt creates a Holt linear trend model. Parameters outside (0, 1)
// are optimized during fitting.
func NewHolt(alpha, beta float64) *Holt {
	return &Holt{Alpha: alpha, Beta: beta}
}

// Name identifies the model in result tables.
func (m *Holt) Name() string {
	return "Holt"
}

// Fit estimates level and trend, optimizing the smoothing parameters
// over a grid when they were not supplied.
func (m *Holt) Fit(series *timeseries.Series) error {
	if series.Len() < 4 {
		return errors.New("insufficient data points for trend smoothing")
	}

	y := series.Values

	run := func(alpha, beta float64) (level, trend, sse float64) {
		level = y[0]
		trend = y[1] - y[0]
		for t := 0; t < len(y); t++ {
			pred := level + trend
			err := y[t] - pred
			sse += err * err

			prevLevel := level
			level = pred + alpha*err
			trend += beta * (level - prevLevel - trend)
		}
		return level, trend, sse
	}

	alpha, beta := m.Alpha, m.Beta
	optimizeAlpha := alpha <= 0 || alpha >= 1
	optimizeBeta := beta <= 0 || beta >= 1

	if optimizeAlpha || optimizeBeta {
		bestSSE := math.Inf(1)
		bestAlpha, bestBeta := 0.5, 0.1
		for a := 0.05; a < 1; a += 0.05 {
			if !optimizeAlpha {
				a = alpha
			}
			for b := 0.05; b < 1; b += 0.05 {
				if !optimizeBeta {
					b = beta
				}
				if _, _, sse := run(a, b); sse < bestSSE {
					bestSSE = sse
					bestAlpha, bestBeta = a, b
				}
				if !optimizeBeta {
					break
				}
			}
			if !optimizeAlpha {
				break
			}
		}
		alpha, beta = bestAlpha, bestBeta
	}

	m.Alpha, m.Beta = alpha, beta
	m.level, m.trend, m.sse = run(alpha, beta)
	m.nObs = len(y)

	ic := gaussianIC(m.sse, m.nObs, 4) // alpha, beta, initial level and trend
	m.AIC, m.AICc, m.BIC = ic.AIC, ic.AICc, ic.BIC
	m.fitted = true
	return nil
}

// Forecast extrapolates the trend h steps ahead.
func (m *Holt) Forecast(h int) ([]float64, error) {
	if !m.fitted {
		return nil, errNotFitted
	}
	if h < 1 {
		return nil, errors.New("forecast horizon must be at least 1")
	}
	forecasts := make([]float64, h)
	for i := range forecasts {
		forecasts[i] = m.level + float64(i+1)*m.trend
	}
	return forecasts, nil
}

// HoltWinters is triple exponential smoothing with additive trend and
// additive seasonality.
type HoltWinters struct {
	Alpha  float64 // level smoothing, 0 picks the best by SSE
	Beta   float64 // trend smoothing, 0 picks the best by SSE
	Gamma  float64 // seasonal smoothing, 0 picks the best by SSE
	Period int

	level    float64
	trend    float64
	seasonal []float64
	sse      float64
	nObs     int
	AIC      float64
	AICc     float64
	BIC      float64
	fitted   bool
}

// NewHoltWinters creates an additive Holt-Winters model with the given
// seasonal period. Parameters outside (0, 1) are optimized during
// fitting.
func NewHoltWinters(alpha, beta, gamma float64, period int) *HoltWinters {
	return &HoltWinters{Alpha: alpha, Beta: beta, Gamma: gamma, Period: period}
}

// Name identifies the model in result tables.
func (m *HoltWinters) Name() string {
	return fmt.Sprintf("HoltWinters[%d]", m.Period)
}

// Fit estimates level, trend and seasonal indices. When no smoothing
// parameters were supplied, a coarse grid search minimizes the SSE.
func (m *HoltWinters) Fit(series *timeseries.Series) error {
	if m.Period < 2 {
		return errors.New("seasonal period must be at least 2")
	}
	if series.Len() < 2*m.Period {
		return fmt.Errorf("series has %d observations, need at least %d", series.Len(), 2*m.Period)
	}

	y := series.Values
	period := m.Period

	run := func(alpha, beta, gamma float64) (level, trend float64, seasonal []float64, sse float64) {
		// Initialize from the first two cycles.
		firstMean, secondMean := 0.0, 0.0
		for i := 0; i < period; i++ {
			firstMean += y[i]
			secondMean += y[period+i]
		}
		firstMean /= float64(period)
		secondMean /= float64(period)

		level = firstMean
		trend = (secondMean - firstMean) / float64(period)
		seasonal = make([]float64, period)
		for i := 0; i < period; i++ {
			seasonal[i] = (y[i] - firstMean + y[period+i] - secondMean) / 2
		}

		for t := 0; t < len(y); t++ {
			s := t % period
			pred := level + trend + seasonal[s]
			err := y[t] - pred
			sse += err * err

			prevLevel := level
			level = level + trend + alpha*err
			trend += beta * (level - prevLevel - trend)
			seasonal[s] += gamma * err
		}
		return level, trend, seasonal, sse
	}

	alpha, beta, gamma := m.Alpha, m.Beta, m.Gamma
	needSearch := alpha <= 0 || alpha >= 1 || beta <= 0 || beta >= 1 || gamma <= 0 || gamma >= 1

	if needSearch {
		bestSSE := math.Inf(1)
		bestA, bestB, bestG := 0.3, 0.1, 0.1
		grid := []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.7, 0.9}
		for _, a := range grid {
			for _, b := range grid {
				for _, g := range grid {
					if _, _, _, sse := run(a, b, g); sse < bestSSE {
						bestSSE = sse
						bestA, bestB, bestG = a, b, g
					}
				}
			}
		}
		alpha, beta, gamma = bestA, bestB, bestG
	}

	m.Alpha, m.Beta, m.Gamma = alpha, beta, gamma
	m.level, m.trend, m.seasonal, m.sse = run(alpha, beta, gamma)
	m.nObs = len(y)

	// alpha, beta, gamma, initial level and trend, and the seasonal
	// indices.
	k := 5 + period
	ic := gaussianIC(m.sse, m.nObs, k)
	m.AIC, m.AICc, m.BIC = ic.AIC, ic.AICc, ic.BIC
	m.fitted = true
	return nil
}

// Forecast extrapolates trend and seasonal indices h steps ahead.
func (m *HoltWinters) Forecast(h int) ([]float64, error) {
	if !m.fitted {
		return nil, errNotFitted
	}
	if h < 1 {
		return nil, errors.New("forecast horizon must be at least 1")
	}
	n := m.nObs
	forecasts := make([]float64, h)
	for i := range forecasts {
		s := (n + i) % m.Period
		forecasts[i] = m.level + float64(i+1)*m.trend + m.seasonal[s]
	}
	return forecasts, nil
}

// gaussianIC converts an SSE into information criteria through the
// Gaussian log-likelihood.
func gaussianIC(sse float64, n, k int) *stats.InformationCriteria {
	if n == 0 || sse <= 0 {
		return &stats.InformationCriteria{
			AIC: math.Inf(-1), AICc: math.Inf(-1), BIC: math.Inf(-1), LogLik: math.Inf(1),
		}
	}
	variance := sse / float64(n)
	logLik := -float64(n)/2*math.Log(2*math.Pi) - float64(n)/2*math.Log(variance) - float64(n)/2
	return stats.CalculateIC(logLik, n, k)
}
