// Package stats provides statistical analysis for the forecasting pipeline.
//
// It covers four areas:
//
//   - Autocorrelation: ACF and PACF with confidence bounds, used to
//     suggest model orders.
//   - Stationarity: ADF and KPSS tests plus NDiffs/NSDiffs for choosing
//     differencing orders.
//   - Diagnostics: Ljung-Box test on model residuals, and classical
//     seasonal decomposition with a seasonal strength measure.
//   - Accuracy: MAE, RMSE, MAPE and SMAPE for comparing forecasts
//     against held-out actuals.
//
// # Example
//
// Decide how much differencing a sales series needs:
//
//	d := stats.NDiffs(series, 2, "kpss")
//	sd := stats.NSDiffs(series, 7, 1)
//
// Score a 7-day forecast against the held-out week:
//
//	acc, err := stats.Evaluate(test.Values, forecasts)
//	fmt.Printf("MAE: %.2f\n", acc.MAE)
package stats
