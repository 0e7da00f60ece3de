// Package repository provides data access implementations
package repository

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/miravand/aquatrend/internal/entities"
	_ "github.com/mattn/go-sqlite3"
)

// SampleRepository defines the interface for dataset access operations.
// The dataset is the set of currently-uploaded periods; it is replaced
// wholesale on re-upload and recomputed into analyses on demand.
type SampleRepository interface {
	ReplacePeriod(period entities.Period) error
	Periods() ([]entities.Period, error)
	Stations() ([]string, error)
	Clear() error
	Close() error
}

// SQLiteSampleRepository implements SampleRepository on an in-memory
// SQLite database. Nothing is written to disk and nothing outlives the
// process; SQLite only serves the grouping and ordering queries.
type SQLiteSampleRepository struct {
	db *sql.DB
}

// NewSQLiteSampleRepository creates and initializes a new in-memory repository.
func NewSQLiteSampleRepository() (*SQLiteSampleRepository, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %v", err)
	}

	// Every connection to :memory: is a separate database, so the pool
	// must stay at a single connection.
	db.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		period TEXT NOT NULL,
		station TEXT NOT NULL,
		conductivity REAL NOT NULL,
		nitrate REAL NOT NULL,
		pos INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_samples_period ON samples(period);
	CREATE INDEX IF NOT EXISTS idx_samples_station ON samples(station);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &SQLiteSampleRepository{db: db}, nil
}

// Close closes the database connection
func (r *SQLiteSampleRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplacePeriod stores the samples of one period, replacing any samples
// previously stored under the same label. pos preserves file row order.
func (r *SQLiteSampleRepository) ReplacePeriod(period entities.Period) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}

	if _, err := tx.Exec("DELETE FROM samples WHERE period = ?", period.Label); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear period %s: %v", period.Label, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO samples(period, station, conductivity, nitrate, pos)
		VALUES(?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %v", err)
	}
	defer stmt.Close()

	for i, s := range period.Samples {
		if _, err := stmt.Exec(period.Label, s.Station, s.Conductivity, s.Nitrate, i); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert sample for %s in %s: %v", s.Station, period.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	log.Printf("Stored %d samples for period %s", len(period.Samples), period.Label)
	return nil
}

// Periods returns all stored periods ordered lexicographically by label,
// with samples in their original row order.
func (r *SQLiteSampleRepository) Periods() ([]entities.Period, error) {
	rows, err := r.db.Query(`
		SELECT period, station, conductivity, nitrate
		FROM samples
		ORDER BY period, pos`)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %v", err)
	}
	defer rows.Close()

	var periods []entities.Period
	for rows.Next() {
		var s entities.Sample
		if err := rows.Scan(&s.Period, &s.Station, &s.Conductivity, &s.Nitrate); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		if len(periods) == 0 || periods[len(periods)-1].Label != s.Period {
			periods = append(periods, entities.Period{Label: s.Period})
		}
		last := &periods[len(periods)-1]
		last.Samples = append(last.Samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %v", err)
	}

	return periods, nil
}

// Stations returns the distinct station codes across all periods, in
// alphabetical order.
func (r *SQLiteSampleRepository) Stations() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT station FROM samples ORDER BY station")
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %v", err)
	}
	defer rows.Close()

	var stations []string
	for rows.Next() {
		var station string
		if err := rows.Scan(&station); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		stations = append(stations, station)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %v", err)
	}

	return stations, nil
}

// Clear removes the whole dataset.
func (r *SQLiteSampleRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM samples"); err != nil {
		return fmt.Errorf("failed to clear dataset: %v", err)
	}
	return nil
}
