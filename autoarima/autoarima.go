// Package autoarima implements automatic ARIMA model selection.
package autoarima

import (
	"errors"
	"math"

	"github.com/sartorproj/salescast/arima"
	"github.com/sartorproj/salescast/sarima"
	"github.com/sartorproj/salescast/stats"
	"github.com/sartorproj/salescast/timeseries"
)

// Config holds configuration for the auto ARIMA search.
type Config struct {
	MaxP        int    // maximum AR order (default 5)
	MaxD        int    // maximum differencing order (default 2)
	MaxQ        int    // maximum MA order (default 5)
	MaxSP       int    // maximum seasonal AR order (default 2)
	MaxSD       int    // maximum seasonal differencing order (default 1)
	MaxSQ       int    // maximum seasonal MA order (default 2)
	Seasonal    bool   // whether to consider seasonal models
	SeasonalM   int    // seasonal period, required when Seasonal is true
	Stepwise    bool   // stepwise search instead of exhaustive
	Criterion   string // "aic", "aicc" or "bic" (default "aicc")
	StationTest string // stationarity test, "adf" or "kpss" (default "kpss")
}

// DefaultConfig returns the default configuration for daily sales data
// with a weekly cycle.
func DefaultConfig() *Config {
	return &Config{
		MaxP:        5,
		MaxD:        2,
		MaxQ:        5,
		MaxSP:       2,
		MaxSD:       1,
		MaxSQ:       2,
		Seasonal:    true,
		SeasonalM:   7,
		Stepwise:    true,
		Criterion:   "aicc",
		StationTest: "kpss",
	}
}

// Result represents the outcome of the model search.
type Result struct {
	Model         *arima.Model  // selected non-seasonal model
	SeasonalModel *sarima.Model // selected seasonal model

	P  int
	D  int
	Q  int
	SP int
	SD int
	SQ int
	M  int

	AIC       float64
	AICc      float64
	BIC       float64
	LogLik    float64
	Criterion float64

	ModelsEvaluated int
	IsSeasonal      bool
}

// AutoARIMA selects the best ARIMA or SARIMA model for the series.
func AutoARIMA(series *timeseries.Series, config *Config) (*Result, error) {
	if config == nil {
		config = DefaultConfig()
	}

	d := determineDifferencing(series, config.MaxD, config.StationTest)

	sd := 0
	if config.Seasonal && config.SeasonalM > 0 {
		sd = stats.NSDiffs(series, config.SeasonalM, config.MaxSD)
	}

	var result *Result
	if config.Seasonal && config.SeasonalM > 0 {
		result = searchSeasonal(series, d, sd, config)
	} else {
		result = searchNonSeasonal(series, d, config)
	}

	if result.Model == nil && result.SeasonalModel == nil {
		return nil, errors.New("no model could be fitted to the series")
	}
	return result, nil
}

// determineDifferencing picks the differencing order using unit root
// tests. The default combines KPSS and ADF and differences until they
// agree the series is stationary.
func determineDifferencing(series *timeseries.Series, maxD int, testType string) int {
	if testType == "adf" {
		return stats.NDiffs(series, maxD, "adf")
	}

	current := series
	for d := 0; d < maxD; d++ {
		kpssResult := stats.KPSS(current, "c", 0)
		adfResult := stats.ADF(current, 0)

		kpssStationary := kpssResult != nil && kpssResult.IsStationary
		adfStationary := adfResult != nil && adfResult.IsStationary

		// Stationary when both tests agree, or when KPSS alone is
		// well clear of its rejection region.
		if kpssStationary && adfStationary {
			return d
		}
		if kpssStationary && kpssResult.PValue > 0.1 {
			return d
		}

		current = current.Diff()
		if current.Len() < 10 {
			return d
		}
	}

	return maxD
}

func criterionValue(criterion string, aic, aicc, bic float64) float64 {
	switch criterion {
	case "bic":
		return bic
	case "aic":
		return aic
	default:
		return aicc
	}
}

// searchNonSeasonal selects an ARIMA(p,d,q) model.
func searchNonSeasonal(series *timeseries.Series, d int, config *Config) *Result {
	if config.Stepwise {
		return stepwiseSearchNonSeasonal(series, d, config)
	}

	bestResult := &Result{Criterion: math.Inf(1)}
	modelsEvaluated := 0

	for p := 0; p <= config.MaxP; p++ {
		for q := 0; q <= config.MaxQ; q++ {
			model := arima.New(p, d, q)
			if err := model.Fit(series); err != nil {
				continue
			}

			modelsEvaluated++
			criterion := criterionValue(config.Criterion, model.AIC, model.AICc, model.BIC)

			if criterion < bestResult.Criterion {
				bestResult = &Result{
					Model:     model,
					P:         p,
					D:         d,
					Q:         q,
					AIC:       model.AIC,
					AICc:      model.AICc,
					BIC:       model.BIC,
					LogLik:    model.LogLik,
					Criterion: criterion,
				}
			}
		}
	}

	bestResult.ModelsEvaluated = modelsEvaluated
	return bestResult
}

// stepwiseSearchNonSeasonal refines from a handful of starting orders
// by walking to better neighbors until no move improves the criterion.
func stepwiseSearchNonSeasonal(series *timeseries.Series, d int, config *Config) *Result {
	type modelSpec struct {
		p, q int
	}

	startModels := []modelSpec{
		{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 2},
	}

	bestSpec := modelSpec{0, 0}
	bestCriterion := math.Inf(1)
	var bestModel *arima.Model
	modelsEvaluated := 0

	tryFit := func(spec modelSpec) bool {
		if spec.p < 0 || spec.p > config.MaxP || spec.q < 0 || spec.q > config.MaxQ {
			return false
		}
		model := arima.New(spec.p, d, spec.q)
		if err := model.Fit(series); err != nil {
			return false
		}
		modelsEvaluated++
		criterion := criterionValue(config.Criterion, model.AIC, model.AICc, model.BIC)
		if criterion < bestCriterion {
			bestCriterion = criterion
			bestSpec = spec
			bestModel = model
			return true
		}
		return false
	}

	for _, spec := range startModels {
		tryFit(spec)
	}

	improved := true
	for improved {
		improved = false

		neighbors := []modelSpec{
			{bestSpec.p + 1, bestSpec.q},
			{bestSpec.p - 1, bestSpec.q},
			{bestSpec.p, bestSpec.q + 1},
			{bestSpec.p, bestSpec.q - 1},
			{bestSpec.p + 1, bestSpec.q + 1},
			{bestSpec.p - 1, bestSpec.q - 1},
		}

		for _, spec := range neighbors {
			if tryFit(spec) {
				improved = true
			}
		}
	}

	if bestModel == nil {
		return &Result{Criterion: math.Inf(1), ModelsEvaluated: modelsEvaluated}
	}

	return &Result{
		Model:           bestModel,
		P:               bestSpec.p,
		D:               d,
		Q:               bestSpec.q,
		AIC:             bestModel.AIC,
		AICc:            bestModel.AICc,
		BIC:             bestModel.BIC,
		LogLik:          bestModel.LogLik,
		Criterion:       bestCriterion,
		ModelsEvaluated: modelsEvaluated,
	}
}

// searchSeasonal selects a SARIMA(p,d,q)(P,D,Q)[m] model.
func searchSeasonal(series *timeseries.Series, d, sd int, config *Config) *Result {
	if config.Stepwise {
		return stepwiseSearchSeasonal(series, d, sd, config)
	}

	bestResult := &Result{
		Criterion:  math.Inf(1),
		IsSeasonal: true,
		M:          config.SeasonalM,
	}
	modelsEvaluated := 0

	for p := 0; p <= config.MaxP; p++ {
		for q := 0; q <= config.MaxQ; q++ {
			for sp := 0; sp <= config.MaxSP; sp++ {
				for sq := 0; sq <= config.MaxSQ; sq++ {
					model := sarima.New(p, d, q, sp, sd, sq, config.SeasonalM)
					if err := model.Fit(series); err != nil {
						continue
					}

					modelsEvaluated++
					criterion := criterionValue(config.Criterion, model.AIC, model.AICc, model.BIC)

					if criterion < bestResult.Criterion {
						bestResult = &Result{
							SeasonalModel: model,
							P:             p,
							D:             d,
							Q:             q,
							SP:            sp,
							SD:            sd,
							SQ:            sq,
							M:             config.SeasonalM,
							AIC:           model.AIC,
							AICc:          model.AICc,
							BIC:           model.BIC,
							LogLik:        model.LogLik,
							Criterion:     criterion,
							IsSeasonal:    true,
						}
					}
				}
			}
		}
	}

	bestResult.ModelsEvaluated = modelsEvaluated
	return bestResult
}

// stepwiseSearchSeasonal is the seasonal variant of the stepwise walk.
func stepwiseSearchSeasonal(series *timeseries.Series, d, sd int, config *Config) *Result {
	type modelSpec struct {
		p, q, sp, sq int
	}

	startModels := []modelSpec{
		{0, 0, 0, 0},
		{1, 0, 1, 0},
		{0, 1, 0, 1},
		{1, 1, 1, 1},
		{2, 2, 1, 1},
	}

	bestSpec := modelSpec{0, 0, 0, 0}
	bestCriterion := math.Inf(1)
	var bestModel *sarima.Model
	modelsEvaluated := 0

	tryFit := func(spec modelSpec) bool {
		if spec.p < 0 || spec.p > config.MaxP ||
			spec.q < 0 || spec.q > config.MaxQ ||
			spec.sp < 0 || spec.sp > config.MaxSP ||
			spec.sq < 0 || spec.sq > config.MaxSQ {
			return false
		}
		model := sarima.New(spec.p, d, spec.q, spec.sp, sd, spec.sq, config.SeasonalM)
		if err := model.Fit(series); err != nil {
			return false
		}
		modelsEvaluated++
		criterion := criterionValue(config.Criterion, model.AIC, model.AICc, model.BIC)
		if criterion < bestCriterion {
			bestCriterion = criterion
			bestSpec = spec
			bestModel = model
			return true
		}
		return false
	}

	for _, spec := range startModels {
		tryFit(spec)
	}

	improved := true
	for improved {
		improved = false

		neighbors := []modelSpec{
			{bestSpec.p + 1, bestSpec.q, bestSpec.sp, bestSpec.sq},
			{bestSpec.p - 1, bestSpec.q, bestSpec.sp, bestSpec.sq},
			{bestSpec.p, bestSpec.q + 1, bestSpec.sp, bestSpec.sq},
			{bestSpec.p, bestSpec.q - 1, bestSpec.sp, bestSpec.sq},
			{bestSpec.p, bestSpec.q, bestSpec.sp + 1, bestSpec.sq},
			{bestSpec.p, bestSpec.q, bestSpec.sp - 1, bestSpec.sq},
			{bestSpec.p, bestSpec.q, bestSpec.sp, bestSpec.sq + 1},
			{bestSpec.p, bestSpec.q, bestSpec.sp, bestSpec.sq - 1},
		}

		for _, spec := range neighbors {
			if tryFit(spec) {
				improved = true
			}
		}
	}

	if bestModel == nil {
		return &Result{
			Criterion:       math.Inf(1),
			IsSeasonal:      true,
			M:               config.SeasonalM,
			ModelsEvaluated: modelsEvaluated,
		}
	}

	return &Result{
		SeasonalModel:   bestModel,
		P:               bestSpec.p,
		D:               d,
		Q:               bestSpec.q,
		SP:              bestSpec.sp,
		SD:              sd,
		SQ:              bestSpec.sq,
		M:               config.SeasonalM,
		AIC:             bestModel.AIC,
		AICc:            bestModel.AICc,
		BIC:             bestModel.BIC,
		LogLik:          bestModel.LogLik,
		Criterion:       bestCriterion,
		ModelsEvaluated: modelsEvaluated,
		IsSeasonal:      true,
	}
}

// Forecast generates forecasts from the selected model.
func (r *Result) Forecast(h int) ([]float64, error) {
	if r.IsSeasonal && r.SeasonalModel != nil {
		return r.SeasonalModel.Forecast(h)
	}
	if r.Model != nil {
		return r.Model.Forecast(h)
	}
	return nil, errors.New("no model selected")
}

// Residuals returns the residuals of the selected model.
func (r *Result) Residuals() []float64 {
	if r.IsSeasonal && r.SeasonalModel != nil {
		return r.SeasonalModel.Residuals()
	}
	if r.Model != nil {
		return r.Model.Residuals()
	}
	return nil
}

// Name returns the name of the selected model.
func (r *Result) Name() string {
	if r.IsSeasonal && r.SeasonalModel != nil {
		return r.SeasonalModel.Name()
	}
	if r.Model != nil {
		return r.Model.Name()
	}
	return "AutoARIMA"
}
