package timeseries

import (
	"fmt"
	"sort"
	"time"
)

// Panel is a collection of product series sharing a time axis.
// Series are kept in a deterministic order by UniqueID.
type Panel struct {
	series map[string]*Series
	ids    []string
}

// NewPanel creates an empty panel.
func NewPanel() *Panel {
	return &Panel{series: make(map[string]*Series)}
}

// PanelFromRecords groups flat records into per-product series.
// Records are sorted chronologically within each product; a duplicate
// date overwrites the earlier observation.
func PanelFromRecords(records []Record) *Panel {
	type point struct {
		date  time.Time
		value float64
	}

	grouped := make(map[string]map[int64]point)
	for _, r := range records {
		if grouped[r.UniqueID] == nil {
			grouped[r.UniqueID] = make(map[int64]point)
		}
		grouped[r.UniqueID][r.Date.Unix()] = point{date: r.Date, value: r.Value}
	}

	p := NewPanel()
	for id, points := range grouped {
		keys := make([]int64, 0, len(points))
		for k := range points {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

		timestamps := make([]time.Time, len(keys))
		values := make([]float64, len(keys))
		for i, k := range keys {
			timestamps[i] = points[k].date
			values[i] = points[k].value
		}
		p.Add(&Series{ID: id, Timestamps: timestamps, Values: values})
	}

	return p
}

// Add inserts or replaces a series.
func (p *Panel) Add(s *Series) {
	if _, exists := p.series[s.ID]; !exists {
		p.ids = append(p.ids, s.ID)
		sort.Strings(p.ids)
	}
	p.series[s.ID] = s
}

// Get returns the series for a product id.
func (p *Panel) Get(id string) (*Series, bool) {
	s, ok := p.series[id]
	return s, ok
}

// IDs returns product ids in sorted order.
func (p *Panel) IDs() []string {
	ids := make([]string, len(p.ids))
	copy(ids, p.ids)
	return ids
}

// Len returns the number of series in the panel.
func (p *Panel) Len() int {
	return len(p.ids)
}

// Each calls fn for every series in id order.
func (p *Panel) Each(fn func(s *Series)) {
	for _, id := range p.ids {
		fn(p.series[id])
	}
}

// FilterMinObservations returns a new panel containing only series with
// at least n observations. Products with a short history cannot support
// model fitting and are excluded before the pipeline runs.
func (p *Panel) FilterMinObservations(n int) *Panel {
	out := NewPanel()
	for _, id := range p.ids {
		if s := p.series[id]; s.Len() >= n {
			out.Add(s)
		}
	}
	return out
}

// SplitTail splits every series into train and test parts, the test part
// holding the last h observations. Series with h or fewer observations
// are skipped entirely: an empty training set cannot fit anything.
func (p *Panel) SplitTail(h int) (train, test *Panel) {
	train, test = NewPanel(), NewPanel()
	for _, id := range p.ids {
		s := p.series[id]
		if s.Len() <= h {
			continue
		}
		tr, te := s.Split(h)
		train.Add(tr)
		test.Add(te)
	}
	return train, test
}

// Records flattens the panel into tidy rows, ordered by id then date.
func (p *Panel) Records() []Record {
	var records []Record
	for _, id := range p.ids {
		records = append(records, p.series[id].Records()...)
	}
	return records
}

// TotalObservations returns the summed length of all series.
func (p *Panel) TotalObservations() int {
	total := 0
	for _, id := range p.ids {
		total += p.series[id].Len()
	}
	return total
}

// Validate checks panel invariants: non-empty series and strictly
// increasing timestamps within each series.
func (p *Panel) Validate() error {
	for _, id := range p.ids {
		s := p.series[id]
		if s.Len() == 0 {
			return fmt.Errorf("series %q is empty", id)
		}
		if len(s.Timestamps) != len(s.Values) {
			return fmt.Errorf("series %q: %w", id, ErrLengthMismatch)
		}
		for i := 1; i < len(s.Timestamps); i++ {
			if !s.Timestamps[i].After(s.Timestamps[i-1]) {
				return fmt.Errorf("series %q: timestamps not strictly increasing at index %d", id, i)
			}
		}
	}
	return nil
}
