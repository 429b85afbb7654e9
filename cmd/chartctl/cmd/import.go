package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/chartkit/config"
	"github.com/rustyeddy/chartkit/feed"
	"github.com/rustyeddy/chartkit/market"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import bars into the SQLite bar store",
	Long: `Import reads a CSV or Dukascopy .bi5 candle file and upserts the bars
into the SQLite store under a symbol and interval. Invalid series are rejected
as a whole.

Examples:
  chartctl import -i eurusd_m1.csv -s EURUSD --interval M1 --db bars.db
  chartctl import -i BID_candles_min_1.bi5 --start 2024-03-04 -s EURUSD --interval M1 --db bars.db`,
	RunE: runImport,
}

var (
	impInput    string
	impType     string
	impDB       string
	impSymbol   string
	impInterval string
	impStart    string
	impPoint    float64
)

func init() {
	rootCmd.AddCommand(importCmd)

	f := importCmd.Flags()
	f.StringVarP(&impInput, "input", "i", "", "bar file (.csv or .bi5) (required)")
	f.StringVar(&impType, "type", "", "csv or bi5; inferred from --input when empty")
	f.StringVar(&impDB, "db", "./bars.db", "SQLite bar store")
	f.StringVarP(&impSymbol, "symbol", "s", "", "symbol to store under (required)")
	f.StringVar(&impInterval, "interval", "", "interval to store under, e.g. M1 (required)")
	f.StringVar(&impStart, "start", "", "bi5 period start (2006-01-02 or 2006-01)")
	f.Float64Var(&impPoint, "point", 0, "bi5 price scale; from the symbol when zero")

	importCmd.MarkFlagRequired("input")
	importCmd.MarkFlagRequired("symbol")
	importCmd.MarkFlagRequired("interval")
}

func runImport(cmd *cobra.Command, args []string) error {
	if _, err := market.TimeframeSeconds(impInterval); err != nil {
		return fmt.Errorf("--interval: %w", err)
	}
	if impType == "sqlite" {
		return fmt.Errorf("--type must be csv or bi5")
	}
	start, err := parseStart(impStart)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	symbol := strings.ToUpper(impSymbol)
	bars, err := loadBars(ctx, source{
		kind:   impType,
		feed:   config.FeedConfig{Path: impInput, Point: impPoint},
		symbol: symbol,
		start:  start,
	})
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	if err := market.ValidateSeries(bars); err != nil {
		return err
	}

	store, err := feed.NewSQLiteStore(impDB)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Save(ctx, symbol, impInterval, bars)
	if err != nil {
		return fmt.Errorf("save bars: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d bars into %s (%s %s)\n", n, impDB, symbol, impInterval)
	return nil
}
