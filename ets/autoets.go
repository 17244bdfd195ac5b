package ets

import (
	"errors"

	"github.com/sartorproj/salescast/timeseries"
)

// candidate is the common surface of the smoothing models.
type candidate interface {
	Name() string
	Fit(series *timeseries.Series) error
	Forecast(h int) ([]float64, error)
}

// AutoETS fits SES, Holt and Holt-Winters and keeps the one with the
// lowest AICc.
type AutoETS struct {
	Period int // seasonal period for the Holt-Winters candidate

	selected candidate
	aicc     float64
}

// NewAutoETS creates an AutoETS model. Period enables the seasonal
// candidate; a period below 2 restricts the search to SES and Holt.
func NewAutoETS(period int) *AutoETS {
	return &AutoETS{Period: period}
}

// Name identifies the model in result tables.
func (m *AutoETS) Name() string {
	return "AutoETS"
}

// Fit evaluates each candidate on the series and keeps the best.
func (m *AutoETS) Fit(series *timeseries.Series) error {
	type scored struct {
		model candidate
		aicc  float64
	}

	var best *scored

	consider := func(model candidate, aicc float64) {
		if best == nil || aicc < best.aicc {
			best = &scored{model: model, aicc: aicc}
		}
	}

	ses := NewSES(0)
	if err := ses.Fit(series); err == nil {
		consider(ses, ses.AICc)
	}

	holt := NewHolt(0, 0)
	if err := holt.Fit(series); err == nil {
		consider(holt, holt.AICc)
	}

	if m.Period >= 2 {
		hw := NewHoltWinters(0, 0, 0, m.Period)
		if err := hw.Fit(series); err == nil {
			consider(hw, hw.AICc)
		}
	}

	if best == nil {
		return errors.New("no smoothing model could be fitted to the series")
	}

	m.selected = best.model
	m.aicc = best.aicc
	return nil
}

// Forecast generates forecasts from the selected model.
func (m *AutoETS) Forecast(h int) ([]float64, error) {
	if m.selected == nil {
		return nil, errNotFitted
	}
	return m.selected.Forecast(h)
}

// Selected returns the name of the winning candidate, or empty before
// fitting.
func (m *AutoETS) Selected() string {
	if m.selected == nil {
		return ""
	}
	return m.selected.Name()
}

// AICc returns the criterion value of the selected model.
func (m *AutoETS) AICc() float64 {
	return m.aicc
}
