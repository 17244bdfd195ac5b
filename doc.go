// Package salescast forecasts short-horizon product sales across a
// panel of daily time series.
//
// Salescast loads a panel CSV with unique_id, ds and y columns, drops
// series too short to model, fits a set of forecasting models to every
// product, and compares them on a holdout week by mean absolute error.
// Forecast runs are persisted to SQLite, rendered as JSON, Excel and
// interactive HTML reports, and served over an HTTP API.
//
// # Quick Start
//
// Forecast a single series:
//
//	series := timeseries.New(values)
//	model := arima.New(1, 1, 0)  // ARIMA(1,1,0)
//	model.Fit(series)
//	forecasts, _ := model.Forecast(7)
//
// Run the models a whole panel at a time:
//
//	panel, _ := timeseries.LoadPanelCSV("sales.csv", nil)
//	panel = panel.FilterMinObservations(28)
//	engine := forecast.NewEngine(7, 0, forecast.DefaultFactories(7), nil)
//	rows, _ := engine.Run(ctx, panel)
//
// # Packages
//
//   - timeseries: series and panel data structures, CSV loading
//   - baseline: Naive, SeasonalNaive and HistoricAverage models
//   - arima, sarima, autoarima: Box-Jenkins models and selection
//   - ets: exponential smoothing and AutoETS selection
//   - stats: stationarity tests, correlograms, accuracy metrics
//   - forecast: the panel forecasting engine and model comparison
//   - dataset, store, report, api: loading, persistence, reports, HTTP
//
// # References
//
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
//   - Box, G. E. P., & Jenkins, G. M. (1976). Time Series Analysis: Forecasting and Control
package salescast
