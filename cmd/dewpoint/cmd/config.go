package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wxkit/dewpoint/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Commands for managing dewpoint configuration.`,
}

// configValidateCmd validates the configuration
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Check the configuration file for errors.

Examples:
  dewpoint config validate
  dewpoint config validate --config /path/to/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}

		fmt.Println("Configuration is valid")
		fmt.Printf("   Default unit: %s\n", cfg.General.DefaultUnit)
		fmt.Printf("   History: enabled=%t, retention=%dd\n",
			cfg.History.Enabled, cfg.History.RetentionDays)
		fmt.Printf("   Storage: %s\n", cfg.Storage.Type)
		fmt.Printf("   Webserver: %s (enabled: %t)\n", cfg.Webserver.Listen, cfg.Webserver.Enabled)
		fmt.Printf("   Scheduler: %s (enabled: %t)\n", cfg.Scheduler.Schedule, cfg.Scheduler.Enabled)

		return nil
	},
}

// configShowCmd shows the current configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	Long: `Display the current configuration with all defaults applied.

Examples:
  dewpoint config show`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}

		fmt.Println("# Current dewpoint configuration")
		fmt.Println("# (with defaults applied)")
		fmt.Println()
		fmt.Print(string(data))

		return nil
	},
}

// configInitCmd generates an example configuration
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate an example configuration",
	Long: `Generate an example configuration file to stdout.

Examples:
  # Print example config to stdout
  dewpoint config init

  # Save example config to file
  dewpoint config init > /etc/dewpoint/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.NewDefault()
		cfg.History.Enabled = true
		cfg.Webserver.Enabled = true

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}

		fmt.Println("# dewpoint configuration")
		fmt.Println("# Generated from defaults")
		fmt.Println()
		fmt.Print(string(data))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
