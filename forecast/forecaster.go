package forecast

import (
	"github.com/sartorproj/salescast/autoarima"
	"github.com/sartorproj/salescast/baseline"
	"github.com/sartorproj/salescast/ets"
	"github.com/sartorproj/salescast/timeseries"
)

// Forecaster is the common surface of all forecasting models. Fit
// trains on a single series; Forecast returns h values beyond it.
type Forecaster interface {
	Name() string
	Fit(series *timeseries.Series) error
	Forecast(h int) ([]float64, error)
}

// Factory builds a fresh Forecaster. Models keep per-series state, so
// the engine constructs one instance per series and model.
type Factory func() Forecaster

// DefaultFactories returns the standard model set for daily sales
// panels: the three baselines plus automatic ARIMA and ETS selection,
// all with a weekly cycle.
func DefaultFactories(season int) []Factory {
	return []Factory{
		func() Forecaster { return baseline.NewNaive() },
		func() Forecaster { return baseline.NewSeasonalNaive(season) },
		func() Forecaster { return baseline.NewHistoricAverage() },
		func() Forecaster { return autoarima.NewAuto(nil) },
		func() Forecaster { return ets.NewAutoETS(season) },
	}
}

// FactoryFor returns a factory for a model name, or false for an
// unknown name. Recognized names are naive, seasonal_naive,
// historic_average, auto_arima and auto_ets.
func FactoryFor(name string, season int) (Factory, bool) {
	switch name {
	case "naive":
		return func() Forecaster { return baseline.NewNaive() }, true
	case "seasonal_naive":
		return func() Forecaster { return baseline.NewSeasonalNaive(season) }, true
	case "historic_average":
		return func() Forecaster { return baseline.NewHistoricAverage() }, true
	case "auto_arima":
		return func() Forecaster { return autoarima.NewAuto(nil) }, true
	case "auto_ets":
		return func() Forecaster { return ets.NewAutoETS(season) }, true
	default:
		return nil, false
	}
}
