// Package baseline implements the simple forecasting models every
// comparison should include: Naive repeats the last observation,
// SeasonalNaive repeats the last full cycle, and HistoricAverage
// repeats the sample mean. A sophisticated model that cannot beat
// these on a holdout set is not worth running.
package baseline
