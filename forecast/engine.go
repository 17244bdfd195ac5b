package forecast

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sartorproj/salescast/timeseries"
)

// Row is one forecasted value in tidy layout: one row per series,
// model and future date.
type Row struct {
	UniqueID string    `json:"unique_id"`
	Model    string    `json:"model"`
	Date     time.Time `json:"ds"`
	Step     int       `json:"step"`
	Value    float64   `json:"value"`
}

// Engine fits every model on every series of a panel and collects
// forecasts. Series are processed concurrently by a bounded worker
// pool.
type Engine struct {
	horizon   int
	workers   int
	factories []Factory
	logger    *logrus.Logger
}

// NewEngine creates an Engine. A non-positive worker count defaults to
// the number of CPUs, and an empty factory list falls back to
// DefaultFactories with a weekly cycle.
func NewEngine(horizon, workers int, factories []Factory, logger *logrus.Logger) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if len(factories) == 0 {
		factories = DefaultFactories(7)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		horizon:   horizon,
		workers:   workers,
		factories: factories,
		logger:    logger,
	}
}

// Run forecasts every series in the panel with every model. Each
// series yields exactly horizon rows per model that fits successfully;
// a model that fails on one series is logged and skipped without
// aborting the rest. Rows come back sorted by series, model and step.
func (e *Engine) Run(ctx context.Context, panel *timeseries.Panel) ([]Row, error) {
	if e.horizon < 1 {
		return nil, fmt.Errorf("forecast horizon must be at least 1, got %d", e.horizon)
	}

	ids := panel.IDs()
	jobs := make(chan string)
	results := make(chan []Row)

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				series, ok := panel.Get(id)
				if !ok {
					continue
				}
				select {
				case results <- e.forecastSeries(id, series):
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range ids {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var rows []Row
	for batch := range results {
		rows = append(rows, batch...)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].UniqueID != rows[j].UniqueID {
			return rows[i].UniqueID < rows[j].UniqueID
		}
		if rows[i].Model != rows[j].Model {
			return rows[i].Model < rows[j].Model
		}
		return rows[i].Step < rows[j].Step
	})

	return rows, nil
}

// forecastSeries runs every model against one series.
func (e *Engine) forecastSeries(id string, series *timeseries.Series) []Row {
	dates := series.FutureDates(e.horizon)
	var rows []Row

	for _, factory := range e.factories {
		model := factory()
		log := e.logger.WithFields(logrus.Fields{
			"unique_id": id,
			"model":     model.Name(),
		})

		start := time.Now()
		if err := model.Fit(series); err != nil {
			log.WithError(err).Warn("Model fit failed, skipping")
			continue
		}

		values, err := model.Forecast(e.horizon)
		if err != nil {
			log.WithError(err).Warn("Forecast failed, skipping")
			continue
		}

		log.WithField("elapsed", time.Since(start)).Debug("Series forecasted")

		name := model.Name()
		for step, value := range values {
			rows = append(rows, Row{
				UniqueID: id,
				Model:    name,
				Date:     dates[step],
				Step:     step + 1,
				Value:    value,
			})
		}
	}

	return rows
}
