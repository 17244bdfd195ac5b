package forecast

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sartorproj/salescast/stats"
	"github.com/sartorproj/salescast/timeseries"
)

// Score holds the holdout accuracy of one model on one series.
type Score struct {
	UniqueID string  `json:"unique_id"`
	Model    string  `json:"model"`
	MAE      float64 `json:"mae"`
	RMSE     float64 `json:"rmse"`
	MAPE     float64 `json:"mape"`
	SMAPE    float64 `json:"smape"`
}

// ModelRank aggregates scores per model across the panel.
type ModelRank struct {
	Model   string  `json:"model"`
	MeanMAE float64 `json:"mean_mae"`
	Series  int     `json:"series"`
}

// Evaluate holds out the last horizon observations of every series,
// fits each model on the remainder and scores the forecasts against
// the holdout. Series too short to split are skipped.
func (e *Engine) Evaluate(ctx context.Context, panel *timeseries.Panel) ([]Score, error) {
	if e.horizon < 1 {
		return nil, fmt.Errorf("forecast horizon must be at least 1, got %d", e.horizon)
	}

	train, test := panel.SplitTail(e.horizon)
	for _, id := range panel.IDs() {
		if _, ok := train.Get(id); !ok {
			e.logger.WithField("unique_id", id).Warn("Series too short for holdout split, skipping")
		}
	}

	ids := train.IDs()
	jobs := make(chan string)
	results := make(chan []Score)

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				trainSeries, ok := train.Get(id)
				if !ok {
					continue
				}
				testSeries, ok := test.Get(id)
				if !ok {
					continue
				}
				select {
				case results <- e.scoreSeries(id, trainSeries, testSeries):
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

	var scores []Score
	for batch := range results {
		scores = append(scores, batch...)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].UniqueID != scores[j].UniqueID {
			return scores[i].UniqueID < scores[j].UniqueID
		}
		return scores[i].Model < scores[j].Model
	})

	return scores, nil
}

// scoreSeries fits each model on the training part of one series and
// scores it against the holdout.
func (e *Engine) scoreSeries(id string, train, test *timeseries.Series) []Score {
	var scores []Score

	for _, factory := range e.factories {
		model := factory()
		log := e.logger.WithFields(logrus.Fields{
			"unique_id": id,
			"model":     model.Name(),
		})

		if err := model.Fit(train); err != nil {
			log.WithError(err).Warn("Model fit failed, skipping")
			continue
		}

		forecasts, err := model.Forecast(test.Len())
		if err != nil {
			log.WithError(err).Warn("Forecast failed, skipping")
			continue
		}

		acc, err := stats.Evaluate(test.Values, forecasts)
		if err != nil {
			log.WithError(err).Warn("Scoring failed, skipping")
			continue
		}

		scores = append(scores, Score{
			UniqueID: id,
			Model:    model.Name(),
			MAE:      acc.MAE,
			RMSE:     acc.RMSE,
			MAPE:     acc.MAPE,
			SMAPE:    acc.SMAPE,
		})
	}

	return scores
}

// Compare aggregates per-series scores into one mean MAE per model,
// sorted best first.
func Compare(scores []Score) []ModelRank {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, s := range scores {
		if math.IsNaN(s.MAE) {
			continue
		}
		sums[s.Model] += s.MAE
		counts[s.Model]++
	}

	ranks := make([]ModelRank, 0, len(sums))
	for model, sum := range sums {
		ranks = append(ranks, ModelRank{
			Model:   model,
			MeanMAE: sum / float64(counts[model]),
			Series:  counts[model],
		})
	}

	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].MeanMAE != ranks[j].MeanMAE {
			return ranks[i].MeanMAE < ranks[j].MeanMAE
		}
		return ranks[i].Model < ranks[j].Model
	})

	return ranks
}
