// Package forecast orchestrates forecasting models over a panel of
// series. The Engine fans series out to a bounded worker pool, fits
// every configured model on every series, and returns tidy rows of
// forecasts or holdout accuracy scores. Compare collapses per-series
// scores into a single ranking by mean absolute error.
package forecast
