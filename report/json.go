// Package report renders forecast runs as JSON, Excel and HTML.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/sartorproj/salescast/forecast"
)

// Summary is the JSON report payload.
type Summary struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Horizon     int                  `json:"horizon"`
	Series      int                  `json:"series"`
	Leaderboard []forecast.ModelRank `json:"leaderboard"`
	Forecasts   []forecast.Row       `json:"forecasts"`
	Scores      []scoreJSON          `json:"scores"`
}

// scoreJSON mirrors forecast.Score with undefined percentage errors
// rendered as null instead of NaN, which JSON cannot carry.
type scoreJSON struct {
	UniqueID string   `json:"unique_id"`
	Model    string   `json:"model"`
	MAE      float64  `json:"mae"`
	RMSE     float64  `json:"rmse"`
	MAPE     *float64 `json:"mape"`
	SMAPE    *float64 `json:"smape"`
}

func toScoreJSON(scores []forecast.Score) []scoreJSON {
	out := make([]scoreJSON, len(scores))
	for i, s := range scores {
		out[i] = scoreJSON{
			UniqueID: s.UniqueID,
			Model:    s.Model,
			MAE:      s.MAE,
			RMSE:     s.RMSE,
			MAPE:     finiteOrNil(s.MAPE),
			SMAPE:    finiteOrNil(s.SMAPE),
		}
	}
	return out
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// WriteJSON writes the run summary to forecast.json in dir.
func WriteJSON(dir string, horizon int, rows []forecast.Row, scores []forecast.Score) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	seriesSet := make(map[string]struct{})
	for _, row := range rows {
		seriesSet[row.UniqueID] = struct{}{}
	}

	summary := Summary{
		GeneratedAt: time.Now().UTC(),
		Horizon:     horizon,
		Series:      len(seriesSet),
		Leaderboard: forecast.Compare(scores),
		Forecasts:   rows,
		Scores:      toScoreJSON(scores),
	}

	path := filepath.Join(dir, "forecast.json")
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}
