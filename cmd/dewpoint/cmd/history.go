package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wxkit/dewpoint/internal/storage"
)

var (
	historyJSON   bool
	historyLimit  int
	historySince  string
	historyUnit   string
	historySource string

	statsPeriod time.Duration
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded computations",
	Long: `List dew point computations recorded in history.

Examples:
  # Show the most recent computations
  dewpoint history

  # Show Fahrenheit computations from the last day
  dewpoint history --unit f --since 24h

  # Output as JSON
  dewpoint history --json`,
	RunE: runHistory,
}

// historyStatsCmd aggregates history over a period
var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated statistics over recorded computations",
	Long: `Show count, average humidity, and Celsius-normalized dew point
aggregates over the computations recorded in the given period.

Examples:
  dewpoint history stats
  dewpoint history stats --period 168h`,
	RunE: runHistoryStats,
}

func openStorage(ctx context.Context) (storage.Storage, error) {
	cfg := GetConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	store, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	filter := storage.Filter{
		Limit:  historyLimit,
		Source: historySource,
	}

	if historyUnit != "" {
		switch historyUnit {
		case "c", "C", "celsius":
			filter.Unit = "C"
		case "f", "F", "fahrenheit":
			filter.Unit = "F"
		default:
			return fmt.Errorf("unknown unit %q (use c or f)", historyUnit)
		}
	}

	if historySince != "" {
		if t, err := time.Parse(time.RFC3339, historySince); err == nil {
			filter.Since = t
		} else if d, err := time.ParseDuration(historySince); err == nil {
			filter.Since = time.Now().Add(-d)
		} else {
			return fmt.Errorf("invalid --since value %q (use a duration like 24h or an RFC3339 time)", historySince)
		}
	}

	comps, err := store.GetComputations(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to query history: %w", err)
	}

	if historyJSON {
		data, err := json.MarshalIndent(comps, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if len(comps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No computations recorded")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tTEMP\tHUMIDITY\tDEW POINT\tSOURCE")
	for _, c := range comps {
		fmt.Fprintf(w, "%d\t%s\t%.1f°%s\t%.0f%%\t%d°%s\t%s\n",
			c.ID,
			c.CreatedAt.Local().Format("2006-01-02 15:04"),
			c.Temperature, c.Unit,
			c.Humidity,
			int(math.Round(c.DewPoint)), c.Unit,
			c.Source,
		)
	}
	return w.Flush()
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	stats, err := store.GetStats(ctx, statsPeriod)
	if err != nil {
		return fmt.Errorf("failed to query stats: %w", err)
	}

	if historyJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Computations: %d (last %s)\n", stats.Count, statsPeriod)
	if stats.Count > 0 {
		fmt.Fprintf(out, "Dew point:    avg %.1f°C, min %.1f°C, max %.1f°C\n",
			stats.AvgDewPoint, stats.MinDewPoint, stats.MaxDewPoint)
		fmt.Fprintf(out, "Humidity:     avg %.0f%%\n", stats.AvgHumidity)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyStatsCmd)

	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false,
		"output as JSON")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20,
		"maximum number of computations to show")
	historyCmd.Flags().StringVar(&historySince, "since", "",
		"only show computations newer than a duration (24h) or RFC3339 time")
	historyCmd.Flags().StringVar(&historyUnit, "unit", "",
		"only show computations in the given unit (c or f)")
	historyCmd.Flags().StringVar(&historySource, "source", "",
		"only show computations from the given source (cli or api)")

	historyStatsCmd.Flags().DurationVar(&statsPeriod, "period", 24*time.Hour,
		"aggregation period")
}
