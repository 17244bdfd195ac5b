package store

import (
	"database/sql"
	"math"
)

// nullableFloat maps NaN to NULL so SQLite does not reject the value.
func nullableFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func nanIfNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
