// Package ets implements the exponential smoothing family: simple
// exponential smoothing (SES), Holt's linear trend method, and the
// additive Holt-Winters seasonal method. Smoothing parameters left
// unset are chosen by grid search over the in-sample sum of squared
// errors, and AutoETS picks among the three methods by AICc.
package ets
