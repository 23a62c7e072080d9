package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/wxkit/dewpoint/internal/config"
)

// PostgresStorage implements the Storage interface using PostgreSQL.
type PostgresStorage struct {
	db  *sql.DB
	cfg config.PostgresConfig
}

// NewPostgresStorage creates a new PostgreSQL storage instance.
func NewPostgresStorage(cfg config.PostgresConfig) (*PostgresStorage, error) {
	return &PostgresStorage{
		cfg: cfg,
	}, nil
}

// buildDSN creates the PostgreSQL connection string.
func (s *PostgresStorage) buildDSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s sslmode=%s",
		s.cfg.Host,
		s.cfg.Port,
		s.cfg.Database,
		s.cfg.User,
		s.cfg.SSLMode,
	)

	if s.cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", s.cfg.Password)
	}

	return dsn
}

// Init initializes the PostgreSQL database connection and schema.
func (s *PostgresStorage) Init(ctx context.Context) error {
	dsn := s.buildDSN()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	s.db.SetMaxOpenConns(10)
	s.db.SetMaxIdleConns(2)
	s.db.SetConnMaxLifetime(5 * time.Minute)

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := s.createSchema(ctx); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// createSchema creates the database tables if they don't exist.
func (s *PostgresStorage) createSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS computations (
		id BIGSERIAL PRIMARY KEY,
		temperature DOUBLE PRECISION NOT NULL,
		humidity DOUBLE PRECISION NOT NULL,
		dew_point DOUBLE PRECISION NOT NULL,
		unit TEXT NOT NULL,
		source TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_computations_created ON computations(created_at);
	CREATE INDEX IF NOT EXISTS idx_computations_unit_created ON computations(unit, created_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *PostgresStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveComputation saves a computation to the database.
func (s *PostgresStorage) SaveComputation(ctx context.Context, comp *Computation) error {
	query := `
	INSERT INTO computations (temperature, humidity, dew_point, unit, source, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		comp.Temperature,
		comp.Humidity,
		comp.DewPoint,
		comp.Unit,
		comp.Source,
		comp.CreatedAt,
	).Scan(&comp.ID)

	if err != nil {
		return fmt.Errorf("failed to insert computation: %w", err)
	}

	return nil
}

// GetComputation retrieves a single computation by ID.
func (s *PostgresStorage) GetComputation(ctx context.Context, id int64) (*Computation, error) {
	query := `
	SELECT id, temperature, humidity, dew_point, unit, source, created_at
	FROM computations
	WHERE id = $1
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
func (s *PostgresStorage) GetComputations(ctx context.Context, filter Filter) ([]Computation, error) {
	query := `
	SELECT id, temperature, humidity, dew_point, unit, source, created_at
	FROM computations
	WHERE 1=1
	`
	args := []interface{}{}
	argPos := 1

	if filter.Unit != "" {
		query += fmt.Sprintf(" AND unit = $%d", argPos)
		args = append(args, filter.Unit)
		argPos++
	}

	if filter.Source != "" {
		query += fmt.Sprintf(" AND source = $%d", argPos)
		args = append(args, filter.Source)
		argPos++
	}

	if !filter.Since.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argPos)
		args = append(args, filter.Since)
		argPos++
	}

	if !filter.Until.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argPos)
		args = append(args, filter.Until)
		argPos++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
		argPos++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
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

// GetStats calculates statistics over a time period.
func (s *PostgresStorage) GetStats(ctx context.Context, period time.Duration) (*Stats, error) {
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
	WHERE created_at >= $1 AND created_at <= $2
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
func (s *PostgresStorage) DeleteOldComputations(ctx context.Context, olderThan time.Time) (int64, error) {
	query := "DELETE FROM computations WHERE created_at < $1"

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
