// Package sarima implements seasonal ARIMA models estimated by
// conditional sum of squares.
//
// A SARIMA(p,d,q)(P,D,Q)[m] model extends ARIMA with seasonal
// autoregressive, differencing and moving average terms at period m.
// For daily sales data with a weekly cycle, m is 7.
//
// Basic usage:
//
//	model := sarima.New(1, 1, 1, 1, 1, 1, 7)
//	if err := model.Fit(series); err != nil {
//		log.Fatal(err)
//	}
//	forecasts, lower, upper, err := model.ForecastWithInterval(7, 0.95)
package sarima
