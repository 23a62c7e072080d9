// Package cmd contains all CLI commands for dewpoint.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wxkit/dewpoint/internal/config"
	"github.com/wxkit/dewpoint/internal/export"
	"github.com/wxkit/dewpoint/internal/locale"
	"github.com/wxkit/dewpoint/internal/logger"
	"github.com/wxkit/dewpoint/internal/meteo"
	"github.com/wxkit/dewpoint/internal/storage"
	"github.com/wxkit/dewpoint/pkg/version"
)

const (
	shortUsage = "Usage: dewpoint TEMPERATURE HUMIDITY\n"
	askForHelp = "Try 'dewpoint --help' for more information\n"

	helpText = `Compute the dew point from a given temperature and humidity. Temperatures are
interpreted by default according to the current measurement locale; humidity is
interpreted as a percentage.

Options:
      -c, --celsius, --centigrade
                              use the Celsius temperature scale
      -f, --fahrenheit        use the Fahrenheit temperature scale
      --config FILE           read configuration from FILE
      --no-save               do not record the computation in history
      --verbose               enable verbose/debug output
      --help                  display this help and exit

Subcommands:
  history                     list recorded computations
  serve                       start the API server
  config                      configuration management
`
)

// errUsage signals a wrong positional argument count; Execute renders it as
// the short usage line.
var errUsage = errors.New("wrong number of arguments")

// argumentError is an invalid temperature or humidity token.
type argumentError struct {
	kind  string // "temperature" or "humidity"
	token string
}

func (e *argumentError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.kind, e.token)
}

// flagError wraps option parsing failures so Execute can append the help hint.
type flagError struct {
	err error
}

func (e *flagError) Error() string { return e.err.Error() }
func (e *flagError) Unwrap() error { return e.err }

var (
	// Global flags
	cfgFile string
	verbose bool
	noSave  bool

	// Unit selection shared by the -c/-f/--centigrade flags; pflag parses
	// options in order, so the last one given wins.
	unitSel unitSelection

	// Measurement locale, read once at startup and passed down explicitly.
	measurementLocale = locale.Measurement()

	// Loaded configuration (available to subcommands)
	cfg *config.Config
)

type unitSelection struct {
	unit meteo.Unit
	set  bool
}

// unitValue is a pflag.Value that forces a fixed unit when its flag appears.
type unitValue struct {
	unit   meteo.Unit
	target *unitSelection
}

func (v *unitValue) String() string { return "" }
func (v *unitValue) Type() string   { return "" }

func (v *unitValue) Set(string) error {
	v.target.unit = v.unit
	v.target.set = true
	return nil
}

// rootCmd is the calculator itself: dewpoint [OPTIONS] TEMPERATURE HUMIDITY
var rootCmd = &cobra.Command{
	Use:           "dewpoint [OPTIONS] TEMPERATURE HUMIDITY",
	Short:         "Compute the dew point from a temperature and humidity",
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return errUsage
		}
		return nil
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "config" && cmd.Name() == "init" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if errors.Is(err, config.ErrNotFound) {
			// No config file: run as the bare calculator.
			cfg = config.NewDefault()
		} else if err != nil {
			return err
		}

		logLevel := cfg.General.LogLevel
		if verbose {
			logLevel = "debug"
		}
		if err := logger.Init(logLevel, logger.IsDevelopment()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
	RunE: runRoot,
}

func runRoot(cmd *cobra.Command, args []string) error {
	temperature, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return &argumentError{kind: "temperature", token: args[0]}
	}

	// ParseFloat consumes the whole token, so trailing garbage is rejected.
	humidity, err := strconv.ParseFloat(args[1], 64)
	if err != nil || humidity <= 0 {
		return &argumentError{kind: "humidity", token: args[1]}
	}

	unit := resolveUnit(cfg, measurementLocale)
	dewPoint := meteo.DewPointIn(unit, temperature, humidity)

	fmt.Fprintf(cmd.OutOrStdout(), "%d\n", int(math.Round(dewPoint)))

	if cfg != nil && cfg.History.Enabled && !noSave {
		recordComputation(unit, temperature, humidity, dewPoint)
	}

	return nil
}

// resolveUnit picks the temperature scale: an explicit flag beats the config
// default, which beats locale inference.
func resolveUnit(cfg *config.Config, measurementLocale string) meteo.Unit {
	if unitSel.set {
		return unitSel.unit
	}
	if cfg != nil {
		switch cfg.General.DefaultUnit {
		case "celsius":
			return meteo.Celsius
		case "fahrenheit":
			return meteo.Fahrenheit
		}
	}
	if locale.UsesFahrenheit(measurementLocale) {
		return meteo.Fahrenheit
	}
	return meteo.Celsius
}

// recordComputation saves the computation to history and exports it when
// configured. Failures are logged, never fatal: the result already printed.
func recordComputation(unit meteo.Unit, temperature, humidity, dewPoint float64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	comp := storage.NewComputation(unit, temperature, humidity, dewPoint, storage.SourceCLI)

	store, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		logger.Warn("Failed to create storage", zap.Error(err))
		return
	}
	if err := store.Init(ctx); err != nil {
		logger.Warn("Failed to initialize storage", zap.Error(err))
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveComputation(ctx, comp); err != nil {
		logger.Warn("Failed to save computation", zap.Error(err))
		return
	}
	logger.Debug("Computation saved", zap.Int64("id", comp.ID))

	if cfg.Export.InfluxDB.Enabled {
		exporter, err := export.NewInfluxExporter(cfg.Export.InfluxDB, logger.Log)
		if err != nil {
			logger.Warn("Failed to create exporter", zap.Error(err))
			return
		}
		defer func() { _ = exporter.Close() }()

		if err := exporter.Export(ctx, comp); err != nil {
			logger.Warn("Failed to export computation", zap.Error(err))
		}
	}
}

// printHelp writes the fixed help block plus the detected measurement locale
// and the unit it implies.
func printHelp(w io.Writer, measurementLocale string) {
	unit := "Celsius"
	if locale.UsesFahrenheit(measurementLocale) {
		unit = "Fahrenheit"
	}
	fmt.Fprint(w, shortUsage)
	fmt.Fprint(w, helpText)
	fmt.Fprintf(w, "\nYour current measurement locale is %s, which uses %s by\ndefault.\n",
		measurementLocale, unit)
}

// Execute runs the root command and renders failures on stderr.
// This is called by main.main(); a non-nil return means exit status 1.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printDiagnostic(os.Stderr, err)
	}
	return err
}

func printDiagnostic(w io.Writer, err error) {
	var argErr *argumentError
	var flgErr *flagError
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprint(w, shortUsage)
		fmt.Fprint(w, askForHelp)
	case errors.As(err, &argErr):
		fmt.Fprintf(w, "dewpoint: %s\n", argErr)
		fmt.Fprint(w, askForHelp)
	case errors.As(err, &flgErr):
		fmt.Fprintf(w, "dewpoint: %s\n", flgErr)
		fmt.Fprint(w, askForHelp)
	default:
		fmt.Fprintf(w, "dewpoint: %v\n", err)
	}
}

func init() {
	// Unit flags share one target so the last flag given wins.
	flags := rootCmd.Flags()
	flags.VarP(&unitValue{unit: meteo.Celsius, target: &unitSel}, "celsius", "c",
		"use the Celsius temperature scale")
	flags.Var(&unitValue{unit: meteo.Celsius, target: &unitSel}, "centigrade",
		"use the Celsius temperature scale")
	flags.VarP(&unitValue{unit: meteo.Fahrenheit, target: &unitSel}, "fahrenheit", "f",
		"use the Fahrenheit temperature scale")
	for _, name := range []string{"celsius", "centigrade", "fahrenheit"} {
		flags.Lookup(name).NoOptDefVal = "true"
	}

	rootCmd.Flags().BoolVar(&noSave, "no-save", false,
		"do not record the computation in history")

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: /etc/dewpoint/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false,
		"enable verbose/debug output")

	// Version template
	rootCmd.SetVersionTemplate(`{{printf "dewpoint %s\n" .Version}}`)

	// Option parsing failures carry the help hint.
	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &flagError{err: err}
	})

	// The root help is the original fixed text plus the locale line;
	// subcommands keep cobra's help.
	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		if c != rootCmd {
			defaultHelp(c, args)
			return
		}
		printHelp(c.OutOrStdout(), measurementLocale)
	})
}

// GetConfig returns the loaded configuration.
// Returns nil if config hasn't been loaded yet.
func GetConfig() *config.Config {
	return cfg
}

// SetConfig sets the configuration (useful for testing).
func SetConfig(c *config.Config) {
	cfg = c
}
