package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wxkit/dewpoint/internal/config"
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(cfg config.SQLiteConfig) (*SQLiteStorage, error) {
	return &SQLiteStorage{
		path: cfg.Path,
	}, nil
}

// Init initializes the SQLite database connection and schema.
func (s *SQLiteStorage) Init(ctx context.Context) error {
	// Ensure directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	// Enable WAL mode for better concurrency
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := s.createSchema(ctx); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// createSchema creates the database tables if they don't exist.
func (s *SQLiteStorage) createSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS computations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		temperature REAL NOT NULL,
		humidity REAL NOT NULL,
		dew_point REAL NOT NULL,
		unit TEXT NOT NULL,
		source TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_computations_created ON computations(created_at);
	CREATE INDEX IF NOT EXISTS idx_computations_unit_created ON computations(unit, created_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveComputation saves a computation to the database.
func (s *SQLiteStorage) SaveComputation(ctx context.Context, comp *Computation) error {
	query := `
	INSERT INTO computations (temperature, humidity, dew_point, unit, source, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		comp.Temperature,
		comp.Humidity,
		comp.DewPoint,
		comp.Unit,
		comp.Source,
		comp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert computation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	comp.ID = id

	return nil
}

// GetComputation retrieves a single computation by ID.
func (s *SQLiteStorage) GetComputation(ctx context.Context, id int64) (*Computation, error) {
	query := `
	SELECT id, temperature, humidity, dew_point, unit, source, created_at
	FROM computations
	WHERE id = ?
	`

	comp := &Computation{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&comp.ID,
		&comp.Temperature,
		&comp.Humidity,
		&comp.DewPoint,
		&comp.Unit,
		&comp.Source,
		&comp.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("computation not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get computation: %w", err)
	}

	return comp, nil
}

// GetComputations retrieves computations based on filter criteria.
func (s *SQLiteStorage) GetComputations(ctx context.Context, filter Filter) ([]Computation, error) {
	query := `
	SELECT id, temperature, humidity, dew_point, unit, source, created_at
	FROM computations
	WHERE 1=1
	`
	args := []interface{}{}

	if filter.Unit != "" {
		query += " AND unit = ?"
		args = append(args, filter.Unit)
	}

	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, filter.Source)
	}

	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.Since)
	}

	if !filter.Until.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, filter.Until)
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query computations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var comps []Computation
	for rows.Next() {
		var c Computation
		err := rows.Scan(
			&c.ID,
			&c.Temperature,
			&c.Humidity,
			&c.DewPoint,
			&c.Unit,
			&c.Source,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan computation: %w", err)
		}
		comps = append(comps, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating computations: %w", err)
	}

	return comps, nil
}

// GetStats calculates statistics over a time period. Dew points are
// normalized to Celsius in SQL so mixed-unit history aggregates sanely.
func (s *SQLiteStorage) GetStats(ctx context.Context, period time.Duration) (*Stats, error) {
	since := time.Now().Add(-period)
	until := time.Now()

	query := `
	SELECT
		COUNT(*) as count,
		AVG(CASE WHEN unit = 'F' THEN (dew_point - 32) * 5.0 / 9.0 ELSE dew_point END) as avg_dew_point,
		MIN(CASE WHEN unit = 'F' THEN (dew_point - 32) * 5.0 / 9.0 ELSE dew_point END) as min_dew_point,
		MAX(CASE WHEN unit = 'F' THEN (dew_point - 32) * 5.0 / 9.0 ELSE dew_point END) as max_dew_point,
		AVG(humidity) as avg_humidity
	FROM computations
	WHERE created_at >= ? AND created_at <= ?
	`

	stats := &Stats{
		Period: period,
		Since:  since,
		Until:  until,
	}

	var avgDew, minDew, maxDew, avgHumidity sql.NullFloat64

	err := s.db.QueryRowContext(ctx, query, since, until).Scan(
		&stats.Count,
		&avgDew,
		&minDew,
		&maxDew,
		&avgHumidity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	if avgDew.Valid {
		stats.AvgDewPoint = avgDew.Float64
	}
	if minDew.Valid {
		stats.MinDewPoint = minDew.Float64
	}
	if maxDew.Valid {
		stats.MaxDewPoint = maxDew.Float64
	}
	if avgHumidity.Valid {
		stats.AvgHumidity = avgHumidity.Float64
	}

	return stats, nil
}

// DeleteOldComputations removes computations older than the specified time.
func (s *SQLiteStorage) DeleteOldComputations(ctx context.Context, olderThan time.Time) (int64, error) {
	query := "DELETE FROM computations WHERE created_at < ?"

	result, err := s.db.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old computations: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return count, nil
}
