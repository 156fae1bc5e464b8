// Package cmd wires the hotel-ops command line: the HTTP server and the
// seeding helpers.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/hotel-ops/config"
	"github.com/yeremiapane/hotel-ops/database"
	"github.com/yeremiapane/hotel-ops/utils"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "hotel-ops",
	Short:         "Hotel room maintenance tracking API",
	Long:          `Tracks rooms, issue categories and maintenance issues for hotel staff, with an audit trail and live updates.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, seedCmd)
}

// Execute runs the root command. Without a subcommand it serves the API.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := utils.ConfigureLogger(cfg.App.LogLevel, cfg.App.LogFormat); err != nil {
		return nil, err
	}
	utils.ExposeErrorDetails = cfg.IsDevelopment()
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (database.Store, error) {
	store, err := config.InitStore(ctx, cfg.Database, cfg.IsDevelopment())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	utils.InfoLogger.Printf("Connected to %s database", cfg.Database.Driver)
	return store, nil
}
