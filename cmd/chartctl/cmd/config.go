package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/chartkit/config"
	"github.com/rustyeddy/chartkit/indicators"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage chart configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  chartctl config init -o chart.yaml
  chartctl config validate -f chart.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "chart.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nEdit the file and run with:")
	fmt.Fprintf(out, "  chartctl render -c %s -i bars.csv -o chart.svg\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(out, "  Chart: %s %s (%dx%d %s)\n", cfg.Chart.Symbol, cfg.Chart.Interval, cfg.Chart.Width, cfg.Chart.Height, cfg.Chart.Format)
	fmt.Fprintf(out, "  Indicators: %d\n", len(cfg.Indicators))
	for _, ic := range cfg.Indicators {
		c := ic.ChartConfig()
		if c.Params == (indicators.Params{}) {
			c.Params = indicators.DefaultParams(c.Kind)
		}
		fmt.Fprintf(out, "    - %s\n", c.Label())
	}
	fmt.Fprintf(out, "  Feed: %s\n", cfg.Feed.Type)
	return nil
}
