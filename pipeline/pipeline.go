// Package pipeline runs the end to end forecasting flow: load the
// panel, filter short series, forecast, score, persist and report.
package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sartorproj/salescast/config"
	"github.com/sartorproj/salescast/dataset"
	"github.com/sartorproj/salescast/forecast"
	"github.com/sartorproj/salescast/report"
	"github.com/sartorproj/salescast/store"
	"github.com/sartorproj/salescast/timeseries"
)

// Pipeline wires the dataset loader, forecast engine, repository and
// report writers together.
type Pipeline struct {
	cfg    *config.Config
	loader *dataset.Loader
	repo   store.Repository
	logger *logrus.Logger
}

// New creates a Pipeline. The repository may be nil, in which case
// runs are not persisted.
func New(cfg *config.Config, repo store.Repository, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.New()
	}
	return &Pipeline{
		cfg:    cfg,
		loader: dataset.NewLoader(logger),
		repo:   repo,
		logger: logger,
	}
}

// Result carries everything one pipeline run produced.
type Result struct {
	RunID       string
	Rows        []forecast.Row
	Scores      []forecast.Score
	Leaderboard []forecast.ModelRank
	Series      int
	Dropped     int
}

// Run executes the full flow and returns the produced forecasts and
// scores.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	panel, err := p.loader.Load(p.cfg.Data.Path, p.cfg.Data.URL)
	if err != nil {
		return nil, err
	}

	before := panel.Len()
	panel = panel.FilterMinObservations(p.cfg.Forecast.MinObservations)
	dropped := before - panel.Len()

	p.logger.WithFields(logrus.Fields{
		"series":  panel.Len(),
		"dropped": dropped,
		"min_obs": p.cfg.Forecast.MinObservations,
	}).Info("Panel filtered")

	if panel.Len() == 0 {
		return nil, fmt.Errorf("no series with at least %d observations", p.cfg.Forecast.MinObservations)
	}

	factories, err := p.factories()
	if err != nil {
		return nil, err
	}

	engine := forecast.NewEngine(p.cfg.Forecast.Horizon, p.cfg.Forecast.Workers, factories, p.logger)

	scores, err := engine.Evaluate(ctx, panel)
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}

	rows, err := engine.Run(ctx, panel)
	if err != nil {
		return nil, fmt.Errorf("forecasting failed: %w", err)
	}

	result := &Result{
		Rows:        rows,
		Scores:      scores,
		Leaderboard: forecast.Compare(scores),
		Series:      panel.Len(),
		Dropped:     dropped,
	}

	if p.repo != nil {
		runID, err := p.repo.SaveRun(p.cfg.Forecast.Horizon, rows, scores)
		if err != nil {
			return nil, fmt.Errorf("failed to persist run: %w", err)
		}
		result.RunID = runID
	}

	if err := p.writeReports(panel, rows, scores); err != nil {
		return nil, err
	}

	return result, nil
}

// Refresh executes the pipeline and returns the new run id. It
// satisfies the api.Refresher interface.
func (p *Pipeline) Refresh(ctx context.Context) (string, error) {
	result, err := p.Run(ctx)
	if err != nil {
		return "", err
	}
	return result.RunID, nil
}

func (p *Pipeline) factories() ([]forecast.Factory, error) {
	factories := make([]forecast.Factory, 0, len(p.cfg.Forecast.Models))
	for _, name := range p.cfg.Forecast.Models {
		factory, ok := forecast.FactoryFor(name, p.cfg.Forecast.Season)
		if !ok {
			return nil, fmt.Errorf("unknown model %q", name)
		}
		factories = append(factories, factory)
	}
	return factories, nil
}

func (p *Pipeline) writeReports(panel *timeseries.Panel, rows []forecast.Row, scores []forecast.Score) error {
	dir := p.cfg.Report.OutputDir
	horizon := p.cfg.Forecast.Horizon

	jsonPath, err := report.WriteJSON(dir, horizon, rows, scores)
	if err != nil {
		return err
	}
	xlsxPath, err := report.WriteWorkbook(dir, rows, scores)
	if err != nil {
		return err
	}
	htmlPath, err := report.WriteCharts(dir, panel, rows)
	if err != nil {
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"json":  jsonPath,
		"excel": xlsxPath,
		"html":  htmlPath,
	}).Info("Reports written")

	return nil
}
