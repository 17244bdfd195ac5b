// Package timeseries provides the panel time series data structures used
// across the forecasting pipeline.
package timeseries

import (
	"errors"
	"math"
	"time"
)

// ErrLengthMismatch is returned when timestamps and values differ in length.
var ErrLengthMismatch = errors.New("timestamps and values must have the same length")

// Record is a single panel observation: one product, one day, one value.
type Record struct {
	UniqueID string    `json:"unique_id"`
	Date     time.Time `json:"ds"`
	Value    float64   `json:"y"`
}

// Series holds the observed history of a single product.
type Series struct {
	ID         string
	Timestamps []time.Time
	Values     []float64
}

// New creates a series with synthetic daily timestamps starting today.
// Convenient for tests and for model code that only cares about values.
func New(values []float64) *Series {
	return NewDaily("", time.Now().Truncate(24*time.Hour), values)
}

// NewDaily creates a series with consecutive daily timestamps from start.
func NewDaily(id string, start time.Time, values []float64) *Series {
	timestamps := make([]time.Time, len(values))
	for i := range timestamps {
		timestamps[i] = start.AddDate(0, 0, i)
	}
	return &Series{ID: id, Timestamps: timestamps, Values: values}
}

// NewWithTimestamps creates a series with explicit timestamps.
func NewWithTimestamps(id string, timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, ErrLengthMismatch
	}
	return &Series{ID: id, Timestamps: timestamps, Values: values}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Values)
}

// Records flattens the series into panel records.
func (s *Series) Records() []Record {
	records := make([]Record, len(s.Values))
	for i, v := range s.Values {
		records[i] = Record{UniqueID: s.ID, Date: s.Timestamps[i], Value: v}
	}
	return records
}

// Mean calculates the arithmetic mean of the observed values.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	return sum / float64(len(s.Values))
}

// Variance calculates the sample variance.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, v := range s.Values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(s.Values)-1)
}

// Std calculates the sample standard deviation.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the smallest observed value.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	min := s.Values[0]
	for _, v := range s.Values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest observed value.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	max := s.Values[0]
	for _, v := range s.Values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Last returns the most recent observation, or NaN for an empty series.
func (s *Series) Last() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[len(s.Values)-1]
}

// Diff calculates the first difference of the series.
func (s *Series) Diff() *Series {
	return s.DiffN(1)
}

// DiffN calculates the n-th order difference of the series.
func (s *Series) DiffN(n int) *Series {
	if n <= 0 || len(s.Values) <= n {
		return &Series{ID: s.ID, Values: []float64{}}
	}

	values := make([]float64, len(s.Values)-n)
	for i := n; i < len(s.Values); i++ {
		values[i-n] = s.Values[i] - s.Values[i-n]
	}

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) > n {
		copy(timestamps, s.Timestamps[n:])
	}

	return &Series{ID: s.ID, Timestamps: timestamps, Values: values}
}

// SeasonalDiff calculates the seasonal difference with period m.
func (s *Series) SeasonalDiff(m int) *Series {
	if m <= 0 || len(s.Values) <= m {
		return &Series{ID: s.ID, Values: []float64{}}
	}

	values := make([]float64, len(s.Values)-m)
	for i := m; i < len(s.Values); i++ {
		values[i-m] = s.Values[i] - s.Values[i-m]
	}

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) > m {
		copy(timestamps, s.Timestamps[m:])
	}

	return &Series{ID: s.ID, Timestamps: timestamps, Values: values}
}

// Lag returns the series shifted back by k steps.
func (s *Series) Lag(k int) *Series {
	if k <= 0 || k >= len(s.Values) {
		return &Series{ID: s.ID, Values: []float64{}}
	}

	values := make([]float64, len(s.Values)-k)
	copy(values, s.Values[:len(s.Values)-k])

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) > k {
		copy(timestamps, s.Timestamps[k:])
	}

	return &Series{ID: s.ID, Timestamps: timestamps, Values: values}
}

// Slice returns observations from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{ID: s.ID, Values: []float64{}}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) >= end {
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{ID: s.ID, Timestamps: timestamps, Values: values}
}

// Head returns the first n observations.
func (s *Series) Head(n int) *Series {
	return s.Slice(0, n)
}

// Tail returns the last n observations.
func (s *Series) Tail(n int) *Series {
	return s.Slice(s.Len()-n, s.Len())
}

// Split separates the series into train and test parts, the test part
// holding the last h observations.
func (s *Series) Split(h int) (train, test *Series) {
	if h < 0 {
		h = 0
	}
	cut := s.Len() - h
	if cut < 0 {
		cut = 0
	}
	return s.Slice(0, cut), s.Slice(cut, s.Len())
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{ID: s.ID, Timestamps: timestamps, Values: values}
}

// MovingAverage calculates a simple moving average with the given window.
func (s *Series) MovingAverage(window int) *Series {
	if window <= 0 || window > len(s.Values) {
		return &Series{ID: s.ID, Values: []float64{}}
	}

	values := make([]float64, len(s.Values)-window+1)
	sum := 0.0
	for i := 0; i < window; i++ {
		sum += s.Values[i]
	}
	values[0] = sum / float64(window)

	for i := window; i < len(s.Values); i++ {
		sum = sum - s.Values[i-window] + s.Values[i]
		values[i-window+1] = sum / float64(window)
	}

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) >= window {
		copy(timestamps, s.Timestamps[window-1:])
	}

	return &Series{ID: s.ID, Timestamps: timestamps, Values: values}
}

// FutureDates returns h consecutive daily dates following the last
// observation. Used to stamp forecast rows.
func (s *Series) FutureDates(h int) []time.Time {
	dates := make([]time.Time, h)
	last := time.Now().Truncate(24 * time.Hour)
	if len(s.Timestamps) > 0 {
		last = s.Timestamps[len(s.Timestamps)-1]
	}
	for i := 0; i < h; i++ {
		dates[i] = last.AddDate(0, 0, i+1)
	}
	return dates
}
