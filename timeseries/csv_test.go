package timeseries

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const panelCSV = `unique_id,ds,y,sell_price
product_1,2024-01-01,12,3.49
product_1,2024-01-02,15,3.49
product_1,2024-01-03,11,3.49
product_2,2024-01-01,7,1.99
product_2,2024-01-02,NA,1.99
product_2,2024-01-03,9,1.99
`

func TestLoadPanelFromReader(t *testing.T) {
	p, err := LoadPanelFromReader(strings.NewReader(panelCSV), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if p.Len() != 2 {
		t.Fatalf("Expected 2 series, got %d", p.Len())
	}

	s1, ok := p.Get("product_1")
	if !ok || s1.Len() != 3 {
		t.Fatalf("Expected product_1 with 3 rows, got %v", s1)
	}
	if s1.Values[1] != 15 {
		t.Errorf("Expected second value 15, got %f", s1.Values[1])
	}

	// The NA row and the sell_price column are dropped.
	s2, _ := p.Get("product_2")
	if s2.Len() != 2 {
		t.Errorf("Expected NA row skipped for product_2, got %d rows", s2.Len())
	}
}

func TestLoadPanelMissingColumns(t *testing.T) {
	_, err := LoadPanelFromReader(strings.NewReader("id,value\nx,1\n"), nil)
	if err == nil {
		t.Fatal("Expected error for missing columns")
	}
}

func TestLoadPanelEmpty(t *testing.T) {
	_, err := LoadPanelFromReader(strings.NewReader("unique_id,ds,y\n"), nil)
	if err == nil {
		t.Fatal("Expected error for empty data")
	}
}

func TestLoadPanelCustomColumns(t *testing.T) {
	csv := "product,date,units\np1,2024-01-01,4\np1,2024-01-02,6\n"
	opts := &CSVOptions{
		IDColumn:    "product",
		DateColumn:  "date",
		ValueColumn: "units",
		DateFormat:  "2006-01-02",
		Delimiter:   ',',
	}

	p, err := LoadPanelFromReader(strings.NewReader(csv), opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s, _ := p.Get("p1")
	if s.Len() != 2 || s.Values[1] != 6 {
		t.Errorf("Unexpected series: %v", s.Values)
	}
}

func TestSaveAndReloadPanelCSV(t *testing.T) {
	p, err := LoadPanelFromReader(strings.NewReader(panelCSV), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "panel.csv")
	if err := SavePanelCSV(p, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := LoadPanelCSV(path, nil)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if reloaded.TotalObservations() != p.TotalObservations() {
		t.Errorf("Round trip changed observation count: %d vs %d",
			reloaded.TotalObservations(), p.TotalObservations())
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected CSV file on disk: %v", err)
	}
}
