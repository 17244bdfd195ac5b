// Package timeseries provides panel time series data structures and loading.
//
// A panel dataset holds many independent product series observed on a
// shared daily time axis. Each observation is a Record with a product
// identifier, a date and an observed value.
//
// # Loading a Panel
//
// Load panel data in the unique_id,ds,y layout; any other column in the
// file is ignored:
//
//	panel, err := timeseries.LoadPanelCSV("sales.csv", nil)
//
// # Preparing for Modeling
//
// Drop products with too little history, then hold out the last week
// for evaluation:
//
//	panel = panel.FilterMinObservations(28)
//	train, test := panel.SplitTail(7)
//
// # Working with a Single Series
//
//	s, _ := panel.Get("product_7")
//	mean := s.Mean()
//	diff := s.Diff()            // first difference
//	sdiff := s.SeasonalDiff(7)  // weekly difference
//	last4 := s.Tail(4)
package timeseries
