// Package storage provides database storage for computation history.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/wxkit/dewpoint/internal/config"
)

// Storage defines the interface for storing and retrieving computations.
type Storage interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error

	// Computations
	SaveComputation(ctx context.Context, comp *Computation) error
	GetComputation(ctx context.Context, id int64) (*Computation, error)
	GetComputations(ctx context.Context, filter Filter) ([]Computation, error)

	// Stats
	GetStats(ctx context.Context, period time.Duration) (*Stats, error)

	// Cleanup
	DeleteOldComputations(ctx context.Context, olderThan time.Time) (int64, error)
}

// Filter defines criteria for filtering computations.
type Filter struct {
	Unit   string
	Source string
	Since  time.Time
	Until  time.Time
	Limit  int
	Offset int
}

// Stats contains aggregated statistics over stored computations. Temperature
// aggregates are computed over Celsius-normalized values.
type Stats struct {
	Count       int           `json:"count"`
	AvgDewPoint float64       `json:"avg_dew_point_c"`
	MinDewPoint float64       `json:"min_dew_point_c"`
	MaxDewPoint float64       `json:"max_dew_point_c"`
	AvgHumidity float64       `json:"avg_humidity"`
	Period      time.Duration `json:"period"`
	Since       time.Time     `json:"since"`
	Until       time.Time     `json:"until"`
}

// NewStorage creates a new Storage instance based on the configuration.
func NewStorage(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "sqlite":
		return NewSQLiteStorage(cfg.SQLite)
	case "postgres":
		return NewPostgresStorage(cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
