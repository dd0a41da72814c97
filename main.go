package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bikebuild/config"
	"bikebuild/db"
	"bikebuild/logging"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bikebuild",
	Short: "Bike build planner API",
	Long: `bikebuild serves the JSON API for planning bicycle builds: builds, catalog
parts and the per-build component scaffold of categories, slots and groups.

Configuration comes from an optional YAML file (--config) overridden by the
PORT, DB_* and LOG_LEVEL environment variables.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(componentsCmd)
}

// openDatabase connects using the loaded config and brings the schema up
// to date.
func openDatabase(ctx context.Context) (*db.DB, error) {
	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Migrate(ctx, logger); err != nil {
		conn.Close()
		return nil, err
	}
	logger.Info("database ready",
		zap.String("driver", conn.Dialect.String()),
		zap.Int("schema_version", db.CurrentVersion()))
	return conn, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
