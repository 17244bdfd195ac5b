// Package baseline implements simple reference forecasting models.
package baseline

import (
	"errors"
	"fmt"

	"github.com/sartorproj/salescast/timeseries"
)

var errNotFitted = errors.New("model must be fitted before forecasting")

// Naive forecasts the last observed value for every future step.
type Naive struct {
	last   float64
	fitted bool
}

// NewNaive creates a Naive model.
func NewNaive() *Naive {
	return &Naive{}
}

// Name identifies the model in result tables.
func (m *Naive) Name() string {
	return "Naive"
}

// Fit records the last observation of the series.
func (m *Naive) Fit(series *timeseries.Series) error {
	if series.Len() == 0 {
		return errors.New("series is empty")
	}
	m.last = series.Values[series.Len()-1]
	m.fitted = true
	return nil
}

// Forecast repeats the last observation h times.
func (m *Naive) Forecast(h int) ([]float64, error) {
	if !m.fitted {
		return nil, errNotFitted
	}
	if h < 1 {
		return nil, errors.New("forecast horizon must be at least 1")
	}
	forecasts := make([]float64, h)
	for i := range forecasts {
		forecasts[i] = m.last
	}
	return forecasts, nil
}

// SeasonalNaive forecasts the value from the same position in the last
// complete seasonal cycle.
type SeasonalNaive struct {
	period    int
	lastCycle []float64
	fitted    bool
}

// NewSeasonalNaive creates a SeasonalNaive model with the given period.
func NewSeasonalNaive(period int) *SeasonalNaive {
	return &SeasonalNaive{period: period}
}

// Name identifies the model in result tables.
func (m *SeasonalNaive) Name() string {
	return fmt.Sprintf("SeasonalNaive[%d]", m.period)
}

// Fit records the last full cycle of the series.
func (m *SeasonalNaive) Fit(series *timeseries.Series) error {
	if m.period < 1 {
		return errors.New("seasonal period must be at least 1")
	}
	if series.Len() < m.period {
		return fmt.Errorf("series has %d observations, need at least %d", series.Len(), m.period)
	}
	m.lastCycle = make([]float64, m.period)
	copy(m.lastCycle, series.Values[series.Len()-m.period:])
	m.fitted = true
	return nil
}

// Forecast repeats the last cycle for h steps.
func (m *SeasonalNaive) Forecast(h int) ([]float64, error) {
	if !m.fitted {
		return nil, errNotFitted
	}
	if h < 1 {
		return nil, errors.New("forecast horizon must be at least 1")
	}
	forecasts := make([]float64, h)
	for i := range forecasts {
		forecasts[i] = m.lastCycle[i%m.period]
	}
	return forecasts, nil
}

// HistoricAverage forecasts the mean of all observed values.
type HistoricAverage struct {
	mean   float64
	fitted bool
}

// NewHistoricAverage creates a HistoricAverage model.
func NewHistoricAverage() *HistoricAverage {
	return &HistoricAverage{}
}

// Name identifies the model in result tables.
func (m *HistoricAverage) Name() string {
	return "HistoricAverage"
}

// Fit computes the mean of the series.
func (m *HistoricAverage) Fit(series *timeseries.Series) error {
	if series.Len() == 0 {
		return errors.New("series is empty")
	}
	m.mean = series.Mean()
	m.fitted = true
	return nil
}

// Forecast repeats the historic mean h times.
func (m *HistoricAverage) Forecast(h int) ([]float64, error) {
	if !m.fitted {
		return nil, errNotFitted
	}
	if h < 1 {
		return nil, errors.New("forecast horizon must be at least 1")
	}
	forecasts := make([]float64, h)
	for i := range forecasts {
		forecasts[i] = m.mean
	}
	return forecasts, nil
}
