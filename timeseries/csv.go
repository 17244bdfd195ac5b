package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVOptions controls how a panel CSV is parsed. The defaults follow the
// common panel layout with unique_id, ds and y columns; every other
// column in the file is dropped.
type CSVOptions struct {
	IDColumn    string // column holding the product identifier (default "unique_id")
	DateColumn  string // column holding the observation date (default "ds")
	ValueColumn string // column holding the observed value (default "y")
	DateFormat  string // primary date layout (default "2006-01-02")
	Delimiter   rune   // field delimiter (default ',')
}

// DefaultCSVOptions returns the defaults for the panel layout.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		IDColumn:    "unique_id",
		DateColumn:  "ds",
		ValueColumn: "y",
		DateFormat:  "2006-01-02",
		Delimiter:   ',',
	}
}

// dateFormats are tried in order after the configured primary format.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// LoadPanelCSV loads a panel of product series from a CSV file.
func LoadPanelCSV(filename string, opts *CSVOptions) (*Panel, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadPanelFromReader(file, opts)
}

// LoadPanelFromReader loads a panel from an io.Reader.
func LoadPanelFromReader(r io.Reader, opts *CSVOptions) (*Panel, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	idIdx, dateIdx, valueIdx := -1, -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.Trim(h, "\"")) {
		case opts.IDColumn:
			idIdx = i
		case opts.DateColumn:
			dateIdx = i
		case opts.ValueColumn:
			valueIdx = i
		}
	}
	if idIdx == -1 || dateIdx == -1 || valueIdx == -1 {
		return nil, fmt.Errorf("CSV is missing one of the %s/%s/%s columns",
			opts.IDColumn, opts.DateColumn, opts.ValueColumn)
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}

		id := strings.TrimSpace(strings.Trim(row[idIdx], "\""))
		if id == "" {
			continue
		}

		valStr := strings.TrimSpace(strings.Trim(row[valueIdx], "\""))
		if valStr == "" || valStr == "NA" || valStr == "NaN" || valStr == "null" {
			continue
		}
		value, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			continue // skip malformed values
		}

		date, err := parseDate(strings.TrimSpace(strings.Trim(row[dateIdx], "\"")), opts.DateFormat)
		if err != nil {
			continue
		}

		records = append(records, Record{UniqueID: id, Date: date, Value: value})
	}

	if len(records) == 0 {
		return nil, errors.New("no valid data found in CSV")
	}

	return PanelFromRecords(records), nil
}

// parseDate tries the configured format first, then the known layouts.
func parseDate(s, primary string) (time.Time, error) {
	if primary != "" {
		if ts, err := time.Parse(primary, s); err == nil {
			return ts, nil
		}
	}
	for _, layout := range dateFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// SavePanelCSV writes a panel back to disk in the unique_id,ds,y layout.
func SavePanelCSV(p *Panel, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"unique_id", "ds", "y"}); err != nil {
		return err
	}
	for _, r := range p.Records() {
		row := []string{
			r.UniqueID,
			r.Date.Format("2006-01-02"),
			strconv.FormatFloat(r.Value, 'f', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}
