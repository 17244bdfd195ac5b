// Package store persists forecast runs in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sartorproj/salescast/forecast"
)

// Run describes one completed forecast run.
type Run struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Horizon   int       `json:"horizon"`
	Series    int       `json:"series"`
}

// Repository defines forecast persistence operations.
type Repository interface {
	SaveRun(horizon int, rows []forecast.Row, scores []forecast.Score) (string, error)
	LatestRun() (*Run, error)
	ForecastsBySeries(runID, uniqueID string) ([]forecast.Row, error)
	Scores(runID string) ([]forecast.Score, error)
	SeriesIDs(runID string) ([]string, error)
	Close() error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db     *sql.DB
	DBPath string
}

// NewSQLiteRepository creates and initializes a SQLite repository.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dbPath == "" {
		dbDir := "data"
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dbPath = filepath.Join(dbDir, "salescast.db")
	} else if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		horizon INTEGER NOT NULL,
		series INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS forecasts (
		run_id TEXT NOT NULL REFERENCES runs(id),
		unique_id TEXT NOT NULL,
		model TEXT NOT NULL,
		ds DATETIME NOT NULL,
		step INTEGER NOT NULL,
		value REAL NOT NULL,
		UNIQUE(run_id, unique_id, model, step)
	);
	CREATE TABLE IF NOT EXISTS scores (
		run_id TEXT NOT NULL REFERENCES runs(id),
		unique_id TEXT NOT NULL,
		model TEXT NOT NULL,
		mae REAL NOT NULL,
		rmse REAL NOT NULL,
		mape REAL,
		smape REAL,
		UNIQUE(run_id, unique_id, model)
	);
	CREATE INDEX IF NOT EXISTS idx_forecasts_run ON forecasts(run_id, unique_id);
	CREATE INDEX IF NOT EXISTS idx_scores_run ON scores(run_id);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteRepository{db: db, DBPath: dbPath}, nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveRun stores forecast rows and holdout scores as one run and
// returns the new run id.
func (r *SQLiteRepository) SaveRun(horizon int, rows []forecast.Row, scores []forecast.Score) (string, error) {
	runID := uuid.New().String()

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}

	seriesSet := make(map[string]struct{})
	for _, row := range rows {
		seriesSet[row.UniqueID] = struct{}{}
	}

	if _, err := tx.Exec(
		"INSERT INTO runs(id, created_at, horizon, series) VALUES(?, ?, ?, ?)",
		runID, time.Now().UTC(), horizon, len(seriesSet),
	); err != nil {
		tx.Rollback()
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	forecastStmt, err := tx.Prepare(`
		INSERT INTO forecasts(run_id, unique_id, model, ds, step, value)
		VALUES(?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("failed to prepare forecast statement: %w", err)
	}
	defer forecastStmt.Close()

	for _, row := range rows {
		if _, err := forecastStmt.Exec(runID, row.UniqueID, row.Model, row.Date, row.Step, row.Value); err != nil {
			tx.Rollback()
			return "", fmt.Errorf("failed to insert forecast for %s: %w", row.UniqueID, err)
		}
	}

	scoreStmt, err := tx.Prepare(`
		INSERT INTO scores(run_id, unique_id, model, mae, rmse, mape, smape)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("failed to prepare score statement: %w", err)
	}
	defer scoreStmt.Close()

	for _, score := range scores {
		if _, err := scoreStmt.Exec(runID, score.UniqueID, score.Model,
			score.MAE, score.RMSE, nullableFloat(score.MAPE), nullableFloat(score.SMAPE)); err != nil {
			tx.Rollback()
			return "", fmt.Errorf("failed to insert score for %s: %w", score.UniqueID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return runID, nil
}

// LatestRun returns the most recent run, or nil when none exists.
func (r *SQLiteRepository) LatestRun() (*Run, error) {
	var run Run
	err := r.db.QueryRow(`
		SELECT id, created_at, horizon, series
		FROM runs ORDER BY created_at DESC LIMIT 1
	`).Scan(&run.ID, &run.CreatedAt, &run.Horizon, &run.Series)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	return &run, nil
}

// ForecastsBySeries returns the forecast rows of one series in a run.
func (r *SQLiteRepository) ForecastsBySeries(runID, uniqueID string) ([]forecast.Row, error) {
	rows, err := r.db.Query(`
		SELECT unique_id, model, ds, step, value
		FROM forecasts
		WHERE run_id = ? AND unique_id = ?
		ORDER BY model, step
	`, runID, uniqueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecasts: %w", err)
	}
	defer rows.Close()

	var result []forecast.Row
	for rows.Next() {
		var row forecast.Row
		if err := rows.Scan(&row.UniqueID, &row.Model, &row.Date, &row.Step, &row.Value); err != nil {
			return nil, fmt.Errorf("failed to scan forecast row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return result, nil
}

// Scores returns all holdout scores of a run.
func (r *SQLiteRepository) Scores(runID string) ([]forecast.Score, error) {
	rows, err := r.db.Query(`
		SELECT unique_id, model, mae, rmse, mape, smape
		FROM scores
		WHERE run_id = ?
		ORDER BY unique_id, model
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var result []forecast.Score
	for rows.Next() {
		var score forecast.Score
		var mape, smape sql.NullFloat64
		if err := rows.Scan(&score.UniqueID, &score.Model, &score.MAE, &score.RMSE, &mape, &smape); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		score.MAPE = nanIfNull(mape)
		score.SMAPE = nanIfNull(smape)
		result = append(result, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return result, nil
}

// SeriesIDs returns the distinct series identifiers of a run.
func (r *SQLiteRepository) SeriesIDs(runID string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT DISTINCT unique_id FROM forecasts
		WHERE run_id = ? ORDER BY unique_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query series ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan series id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return ids, nil
}
