// Package arima implements non-seasonal ARIMA models.
//
// An ARIMA(p,d,q) model combines autoregression on p lags, d rounds of
// differencing and a moving average over q past errors. Estimation uses
// conditional sum of squares with Yule-Walker starting values for the
// AR terms.
//
// # Usage
//
//	model := arima.New(1, 1, 1)
//	if err := model.Fit(series); err != nil {
//	    return err
//	}
//	forecasts, err := model.Forecast(7)
//
// Model quality is reported through AIC/AICc/BIC on the model and a
// Ljung-Box residual test in Summary.
package arima
