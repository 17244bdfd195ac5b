package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/sartorproj/salescast/forecast"
	"github.com/sartorproj/salescast/timeseries"
)

const dateLayout = "2006-01-02"

// WriteCharts renders one line chart per series, history plus the
// forecast of every model, into forecast.html in dir.
func WriteCharts(dir string, panel *timeseries.Panel, rows []forecast.Row) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	bySeries := make(map[string][]forecast.Row)
	for _, row := range rows {
		bySeries[row.UniqueID] = append(bySeries[row.UniqueID], row)
	}

	page := components.NewPage()
	page.PageTitle = "Sales forecasts"

	for _, id := range panel.IDs() {
		series, ok := panel.Get(id)
		if !ok {
			continue
		}
		page.AddCharts(seriesChart(id, series, bySeries[id]))
	}

	path := filepath.Join(dir, "forecast.html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return "", fmt.Errorf("failed to render charts: %w", err)
	}

	return path, nil
}

// seriesChart builds one chart: the observed history followed by each
// model's forecast, with gaps where a line has no data.
func seriesChart(id string, series *timeseries.Series, rows []forecast.Row) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: id}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	histLen := series.Len()

	byModel := make(map[string][]forecast.Row)
	for _, row := range rows {
		byModel[row.Model] = append(byModel[row.Model], row)
	}
	models := make([]string, 0, len(byModel))
	horizon := 0
	for model, modelRows := range byModel {
		models = append(models, model)
		if len(modelRows) > horizon {
			horizon = len(modelRows)
		}
	}
	sort.Strings(models)
	for _, model := range models {
		sort.Slice(byModel[model], func(i, j int) bool {
			return byModel[model][i].Step < byModel[model][j].Step
		})
	}

	dates := make([]string, 0, histLen+horizon)
	for _, ts := range series.Timestamps {
		dates = append(dates, ts.Format(dateLayout))
	}
	for _, ts := range series.FutureDates(horizon) {
		dates = append(dates, ts.Format(dateLayout))
	}

	history := make([]opts.LineData, histLen+horizon)
	for i, v := range series.Values {
		history[i] = opts.LineData{Value: v}
	}
	for i := histLen; i < len(history); i++ {
		history[i] = opts.LineData{Value: nil}
	}

	line.SetXAxis(dates).AddSeries("history", history)

	for _, model := range models {
		data := make([]opts.LineData, histLen+horizon)
		for i := 0; i < histLen; i++ {
			data[i] = opts.LineData{Value: nil}
		}
		for i, row := range byModel[model] {
			data[histLen+i] = opts.LineData{Value: row.Value}
		}
		line.AddSeries(model, data)
	}

	return line
}
