// Package export ships computation records to external time-series stores.
package export

import (
	"context"
	"fmt"

	"github.com/InfluxCommunity/influxdb3-go/v2/influxdb3"
	"go.uber.org/zap"

	"github.com/wxkit/dewpoint/internal/config"
	"github.com/wxkit/dewpoint/internal/storage"
)

// InfluxExporter writes computations as InfluxDB 3 points. Fields are
// normalized to Celsius so dashboards aggregate across units.
type InfluxExporter struct {
	client *influxdb3.Client
	logger *zap.Logger
}

// NewInfluxExporter connects to the configured InfluxDB instance.
func NewInfluxExporter(cfg config.InfluxConfig, logger *zap.Logger) (*InfluxExporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := influxdb3.New(influxdb3.ClientConfig{
		Host:     cfg.Host,
		Token:    cfg.Token,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create influxdb client: %w", err)
	}

	return &InfluxExporter{
		client: client,
		logger: logger,
	}, nil
}

// Export writes a single computation point.
func (e *InfluxExporter) Export(ctx context.Context, comp *storage.Computation) error {
	point := influxdb3.NewPointWithMeasurement("dewpoint").
		SetTag("unit", comp.Unit).
		SetTag("source", comp.Source).
		SetField("temperature_C", comp.TemperatureCelsius()).
		SetField("humidity", comp.Humidity).
		SetField("dewpoint_C", comp.DewPointCelsius()).
		SetTimestamp(comp.CreatedAt)

	if err := e.client.WritePoints(ctx, []*influxdb3.Point{point}); err != nil {
		return fmt.Errorf("failed to write point: %w", err)
	}

	e.logger.Debug("Exported computation to InfluxDB",
		zap.Int64("id", comp.ID),
		zap.Float64("dewpoint_c", comp.DewPointCelsius()),
	)

	return nil
}

// Close releases the underlying client.
func (e *InfluxExporter) Close() error {
	return e.client.Close()
}
