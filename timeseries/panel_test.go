package timeseries

import (
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func makePanel(lengths map[string]int) *Panel {
	p := NewPanel()
	for id, n := range lengths {
		values := make([]float64, n)
		for i := range values {
			values[i] = float64(i + 1)
		}
		p.Add(NewDaily(id, day(0), values))
	}
	return p
}

func TestPanelFromRecords(t *testing.T) {
	records := []Record{
		{UniqueID: "b", Date: day(1), Value: 2},
		{UniqueID: "a", Date: day(0), Value: 10},
		{UniqueID: "b", Date: day(0), Value: 1},
		{UniqueID: "a", Date: day(1), Value: 20},
		// duplicate date: last one wins
		{UniqueID: "a", Date: day(1), Value: 25},
	}

	p := PanelFromRecords(records)

	if p.Len() != 2 {
		t.Fatalf("Expected 2 series, got %d", p.Len())
	}

	ids := p.IDs()
	if ids[0] != "a" || ids[1] != "b" {
		t.Errorf("Expected sorted ids [a b], got %v", ids)
	}

	a, _ := p.Get("a")
	if a.Values[0] != 10 || a.Values[1] != 25 {
		t.Errorf("Expected series a values [10 25], got %v", a.Values)
	}

	b, _ := p.Get("b")
	if b.Values[0] != 1 || b.Values[1] != 2 {
		t.Errorf("Expected series b chronologically sorted, got %v", b.Values)
	}
}

func TestFilterMinObservations(t *testing.T) {
	p := makePanel(map[string]int{"long": 30, "short": 10, "exact": 28})

	filtered := p.FilterMinObservations(28)

	if filtered.Len() != 2 {
		t.Fatalf("Expected 2 series after filtering, got %d", filtered.Len())
	}
	if _, ok := filtered.Get("short"); ok {
		t.Error("Series with fewer than 28 observations should be removed")
	}
	filtered.Each(func(s *Series) {
		if s.Len() < 28 {
			t.Errorf("Series %s has %d observations after filtering", s.ID, s.Len())
		}
	})
}

func TestSplitTail(t *testing.T) {
	p := makePanel(map[string]int{"a": 30, "b": 40, "tiny": 5})

	train, test := p.SplitTail(7)

	if train.Len() != 2 || test.Len() != 2 {
		t.Fatalf("Expected 2 train and 2 test series, got %d/%d", train.Len(), test.Len())
	}

	test.Each(func(s *Series) {
		if s.Len() != 7 {
			t.Errorf("Test series %s should have exactly 7 rows, got %d", s.ID, s.Len())
		}
	})

	trainA, _ := train.Get("a")
	testA, _ := test.Get("a")
	if trainA.Len() != 23 {
		t.Errorf("Expected train length 23 for series a, got %d", trainA.Len())
	}
	if testA.Values[0] != 24 {
		t.Errorf("Expected test for a to start at 24, got %f", testA.Values[0])
	}
}

func TestValidate(t *testing.T) {
	p := makePanel(map[string]int{"a": 10})
	if err := p.Validate(); err != nil {
		t.Fatalf("Expected valid panel, got %v", err)
	}

	bad := NewPanel()
	bad.Add(&Series{
		ID:         "dup",
		Timestamps: []time.Time{day(0), day(0)},
		Values:     []float64{1, 2},
	})
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for non-increasing timestamps")
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	p := makePanel(map[string]int{"a": 3, "b": 2})

	records := p.Records()
	if len(records) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(records))
	}

	rebuilt := PanelFromRecords(records)
	if rebuilt.TotalObservations() != p.TotalObservations() {
		t.Errorf("Round trip changed observation count: %d vs %d",
			rebuilt.TotalObservations(), p.TotalObservations())
	}
}
