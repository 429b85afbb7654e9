package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/chartkit/chart"
	"github.com/rustyeddy/chartkit/feed"
	"github.com/rustyeddy/chartkit/indicators"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the series held in a bar store",
	RunE:  runList,
}

var (
	listDB    string
	listKinds bool
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listDB, "db", "./bars.db", "SQLite bar store")
	listCmd.Flags().BoolVar(&listKinds, "kinds", false, "list the indicator kinds instead")
}

func runList(cmd *cobra.Command, args []string) error {
	if listKinds {
		return printKinds(cmd)
	}

	store, err := feed.NewSQLiteStore(listDB)
	if err != nil {
		return err
	}
	defer store.Close()

	series, err := store.List(cmd.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tINTERVAL\tBARS\tFIRST\tLAST")
	for _, s := range series {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.Symbol, s.Interval, s.Count,
			time.Unix(s.First, 0).UTC().Format(time.RFC3339),
			time.Unix(s.Last, 0).UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

func printKinds(cmd *cobra.Command) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tDEFAULT\tPLACEMENT")
	for _, k := range indicators.Kinds() {
		placement := "panel"
		if chart.IsOverlay(k) {
			placement = "overlay"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", k, indicators.DefaultParams(k).String(k), placement)
	}
	return tw.Flush()
}
