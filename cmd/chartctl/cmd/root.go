package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/chartkit/config"
	"github.com/rustyeddy/chartkit/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "chartctl",
	Short: "Render candlestick charts with indicators",
	Long: `Chartctl drives the chart engine offline.

It provides tools for:
  - Rendering bar series with overlays and indicator panels to SVG or PNG
  - Importing CSV and Dukascopy .bi5 candles into a SQLite bar store
  - Generating and validating chart configuration files`,
	SilenceUsage: true,
}

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "chart config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override log.format (text, json)")
}

// loadConfig returns the --config file or the defaults, with the global log
// overrides applied.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(cfgFile); err != nil {
			return nil, err
		}
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	lvl := slog.LevelInfo
	if cfg.Log.Level != "" {
		var err error
		if lvl, err = logger.ParseLevel(cfg.Log.Level); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	return logger.New(cmd.ErrOrStderr(), "chartctl", lvl, cfg.Log.Format), nil
}
