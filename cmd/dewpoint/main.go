// Package main is the entry point for the dewpoint CLI.
package main

import (
	"os"

	"github.com/wxkit/dewpoint/cmd/dewpoint/cmd"
	"github.com/wxkit/dewpoint/internal/logger"
)

func main() {
	// Initialize default logger (will be reconfigured after config is loaded)
	logger.InitDefault()
	defer logger.Sync()

	// Execute the root command
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
