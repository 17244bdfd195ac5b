package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/sartorproj/salescast/forecast"
)

// WriteWorkbook writes forecasts, scores and the model leaderboard to
// forecast.xlsx in dir, one sheet per table.
func WriteWorkbook(dir string, rows []forecast.Row, scores []forecast.Score) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeForecastSheet(f, rows); err != nil {
		return "", err
	}
	if err := writeScoreSheet(f, scores); err != nil {
		return "", err
	}
	if err := writeLeaderboardSheet(f, forecast.Compare(scores)); err != nil {
		return "", err
	}

	// The default sheet is replaced by the forecast sheet.
	f.DeleteSheet("Sheet1")

	path := filepath.Join(dir, "forecast.xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	return path, nil
}

func writeForecastSheet(f *excelize.File, rows []forecast.Row) error {
	const sheet = "Forecasts"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	headers := []string{"unique_id", "model", "ds", "step", "value"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.UniqueID, row.Model, row.Date.Format("2006-01-02"), row.Step, row.Value,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write forecast row: %w", err)
			}
		}
	}

	return nil
}

func writeScoreSheet(f *excelize.File, scores []forecast.Score) error {
	const sheet = "Scores"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	headers := []string{"unique_id", "model", "mae", "rmse", "mape", "smape"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, score := range scores {
		values := []interface{}{
			score.UniqueID, score.Model, score.MAE, score.RMSE,
			excelFloat(score.MAPE), excelFloat(score.SMAPE),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write score row: %w", err)
			}
		}
	}

	return nil
}

func writeLeaderboardSheet(f *excelize.File, ranks []forecast.ModelRank) error {
	const sheet = "Leaderboard"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	headers := []string{"rank", "model", "mean_mae", "series"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, rank := range ranks {
		values := []interface{}{i + 1, rank.Model, rank.MeanMAE, rank.Series}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write leaderboard row: %w", err)
			}
		}
	}

	return nil
}

// excelFloat keeps undefined values out of numeric cells.
func excelFloat(v float64) interface{} {
	if p := finiteOrNil(v); p != nil {
		return *p
	}
	return ""
}
