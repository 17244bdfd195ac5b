// Package autoarima selects ARIMA and SARIMA orders automatically.
//
// The search follows the usual two stage recipe: unit root tests pick
// the differencing orders, then a stepwise walk over (p,q) and seasonal
// (P,Q) neighborhoods minimizes an information criterion, AICc by
// default. An exhaustive grid search is available for small order
// bounds.
//
// Basic usage:
//
//	result, err := autoarima.AutoARIMA(series, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	forecasts, err := result.Forecast(7)
//
// The Auto type wraps the search behind Fit and Forecast so it can be
// scheduled alongside fixed-order models.
package autoarima
