package autoarima

import (
	"errors"

	"github.com/sartorproj/salescast/timeseries"
)

// Auto runs the model search at fit time so it can be used wherever a
// fixed-order model is expected.
type Auto struct {
	config *Config
	result *Result
}

// NewAuto creates an Auto model with the given configuration. A nil
// configuration uses DefaultConfig.
func NewAuto(config *Config) *Auto {
	if config == nil {
		config = DefaultConfig()
	}
	return &Auto{config: config}
}

// Name identifies the model in result tables.
func (a *Auto) Name() string {
	return "AutoARIMA"
}

// Fit searches for the best model for the series.
func (a *Auto) Fit(series *timeseries.Series) error {
	result, err := AutoARIMA(series, a.config)
	if err != nil {
		return err
	}
	a.result = result
	return nil
}

// Forecast generates forecasts h steps ahead from the selected model.
func (a *Auto) Forecast(h int) ([]float64, error) {
	if a.result == nil {
		return nil, errors.New("model must be fitted before forecasting")
	}
	return a.result.Forecast(h)
}

// Result returns the search result, or nil before fitting.
func (a *Auto) Result() *Result {
	return a.result
}
