// @title Sports Meet Data API
// @version 1.0
// @description Schedules, rosters and class mapping of the school sports meet.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"log/slog"
	"os"

	"github.com/Dosada05/sports-meet/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sportsmeet",
	Short: "Sports meet data service",
	Long: `sportsmeet merges the per-day schedule files and per-event roster files of a
school sports meet into one aggregate document and serves it over HTTP.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd(), mergeCmd(), hashPasswordCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and installs the JSON logger as the default.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
