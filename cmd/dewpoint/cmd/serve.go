package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wxkit/dewpoint/internal/api"
	"github.com/wxkit/dewpoint/internal/export"
	"github.com/wxkit/dewpoint/internal/logger"
	"github.com/wxkit/dewpoint/internal/scheduler"
	"github.com/wxkit/dewpoint/internal/storage"
)

var (
	noScheduler bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the dewpoint API server.

The server provides:
  • GET /api/v1/dewpoint   - compute a dew point
  • GET /api/v1/history    - query recorded computations
  • GET /api/v1/metrics    - Prometheus metrics
  • Optional scheduled history retention pruning

Requires a configuration file with webserver.enabled: true.

Examples:
  # Start the server
  dewpoint serve

  # Start without the retention scheduler
  dewpoint serve --no-scheduler`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	if !cfg.Webserver.Enabled {
		return fmt.Errorf("webserver is disabled in configuration (set webserver.enabled: true)")
	}

	// Initialize storage
	store, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	if err := store.Init(context.Background()); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	// Create exporter if configured
	var exporter *export.InfluxExporter
	if cfg.Export.InfluxDB.Enabled {
		exporter, err = export.NewInfluxExporter(cfg.Export.InfluxDB, logger.Log)
		if err != nil {
			return fmt.Errorf("failed to create influxdb exporter: %w", err)
		}
		defer func() { _ = exporter.Close() }()
	}

	// Create API server
	defaultUnit := resolveUnit(cfg, measurementLocale)
	server, err := api.NewServer(cfg, store, exporter, defaultUnit, logger.Log)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	// Create scheduler if enabled
	var sched *scheduler.Scheduler
	schedulerEnabled := cfg.Scheduler.Enabled && !noScheduler
	if schedulerEnabled {
		sched, err = scheduler.NewScheduler(cfg, store, logger.Log)
		if err != nil {
			logger.Warn("Failed to create scheduler", zap.Error(err))
			schedulerEnabled = false
		}
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()

		if sched != nil {
			sched.Stop()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", zap.Error(err))
		}
	}()

	// Print startup info
	fmt.Printf("dewpoint API server\n")
	fmt.Printf("  Listen:       http://%s\n", cfg.Webserver.Listen)
	fmt.Printf("  Storage:      %s\n", cfg.Storage.Type)
	fmt.Printf("  Default unit: %s\n", defaultUnit)
	if cfg.Webserver.Auth != nil && cfg.Webserver.Auth.Username != "" {
		fmt.Printf("  Auth:         Basic Auth enabled\n")
	}
	if exporter != nil {
		fmt.Printf("  Export:       InfluxDB (%s)\n", cfg.Export.InfluxDB.Host)
	}

	if schedulerEnabled && sched != nil {
		if err := sched.Start(); err != nil {
			logger.Error("Failed to start scheduler", zap.Error(err))
		} else {
			fmt.Printf("  Retention:    %dd, prune at %q (next: %s)\n",
				cfg.History.RetentionDays, cfg.Scheduler.Schedule, sched.NextRun())
		}
	}

	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    GET /health                - Health check")
	fmt.Println("    GET /api/v1/dewpoint       - Compute a dew point")
	fmt.Println("    GET /api/v1/history        - List computations")
	fmt.Println("    GET /api/v1/history/stats  - Aggregated statistics")
	fmt.Println("    GET /api/v1/metrics        - Prometheus metrics")
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		select {
		case <-ctx.Done():
			return nil
		default:
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&noScheduler, "no-scheduler", false,
		"disable retention scheduler even if enabled in config")
}
