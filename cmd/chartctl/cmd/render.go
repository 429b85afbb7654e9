package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/chartkit/chart"
	"github.com/rustyeddy/chartkit/config"
	"github.com/rustyeddy/chartkit/frame"
	"github.com/rustyeddy/chartkit/metrics"
	"github.com/rustyeddy/chartkit/surface"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a bar series to SVG or PNG",
	Long: `Render loads bars from a CSV file, a Dukascopy .bi5 candle file or the
SQLite bar store, attaches the configured indicators and writes the chart.

Examples:
  chartctl render -i eurusd_m1.csv --tf H1 -o eurusd.svg
  chartctl render -c chart.yaml --db bars.db -s EURUSD --interval M1 -o eurusd.png
  chartctl render -i BID_candles_min_1.bi5 --start 2024-03-04 --interval M1 -o day.svg`,
	RunE: runRender,
}

var (
	rInput    string
	rDB       string
	rType     string
	rSymbol   string
	rInterval string
	rTF       string
	rStart    string
	rFrom     string
	rTo       string
	rOutput   string
	rFormat   string
	rWidth    int
	rHeight   int
	rTheme    string
	rPointerX float64
	rTimeout  time.Duration
)

func init() {
	rootCmd.AddCommand(renderCmd)

	f := renderCmd.Flags()
	f.StringVarP(&rInput, "input", "i", "", "bar file (.csv or .bi5)")
	f.StringVar(&rDB, "db", "", "SQLite bar store")
	f.StringVar(&rType, "type", "", "feed type (csv, bi5, sqlite); inferred when empty")
	f.StringVarP(&rSymbol, "symbol", "s", "", "symbol (overrides chart.symbol)")
	f.StringVar(&rInterval, "interval", "", "source interval, e.g. M1 (overrides chart.interval)")
	f.StringVar(&rTF, "tf", "", "resample to this timeframe before rendering")
	f.StringVar(&rStart, "start", "", "bi5 period start (2006-01-02 or 2006-01)")
	f.StringVar(&rFrom, "from", "", "visible range start (RFC3339 or 2006-01-02)")
	f.StringVar(&rTo, "to", "", "visible range end")
	f.StringVarP(&rOutput, "output", "o", "", "output file (required)")
	f.StringVar(&rFormat, "format", "", "svg or png; inferred from --output when empty")
	f.IntVar(&rWidth, "width", 0, "image width (overrides chart.width)")
	f.IntVar(&rHeight, "height", 0, "image height (overrides chart.height)")
	f.StringVar(&rTheme, "theme", "", "light or dark (overrides chart.theme)")
	f.Float64Var(&rPointerX, "pointer-x", -1, "draw the crosshair at this x and print the read-out")
	f.DurationVar(&rTimeout, "timeout", 10*time.Second, "limit for loading and animating")

	renderCmd.MarkFlagRequired("output")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRenderFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), rTimeout)
	defer cancel()

	start, err := parseStart(rStart)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	bars, err := loadBars(ctx, source{
		kind:     rType,
		feed:     cfg.Feed,
		symbol:   cfg.Chart.Symbol,
		interval: cfg.Chart.Interval,
		start:    start,
	})
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	if len(bars) == 0 {
		return fmt.Errorf("no bars for %s %s", cfg.Chart.Symbol, cfg.Chart.Interval)
	}
	interval := cfg.Chart.Interval
	if rTF != "" {
		if bars, err = resample(bars, rTF); err != nil {
			return fmt.Errorf("resample: %w", err)
		}
		interval = rTF
	}
	log.Info("bars loaded", "symbol", cfg.Chart.Symbol, "interval", interval, "count", len(bars))

	format, err := surface.ParseFormat(cfg.Chart.Format)
	if err != nil {
		return err
	}
	opts, err := cfg.Options(log, m)
	if err != nil {
		return err
	}
	loop := frame.NewLoop(0)
	r, err := chart.New(surface.GoChartProvider(format), loop, cfg.Chart.Width, cfg.Chart.Height, opts)
	if err != nil {
		return err
	}

	r.SetSymbol(cfg.Chart.Symbol)
	if err := r.SetInterval(interval); err != nil {
		return err
	}
	for i, ic := range cfg.Indicators {
		if _, err := r.AddIndicatorConfig(ic.ChartConfig()); err != nil {
			return fmt.Errorf("indicators[%d]: %w", i, err)
		}
	}
	if err := r.SetData(bars); err != nil {
		return err
	}

	if rFrom != "" || rTo != "" {
		if err := setRange(r, rFrom, rTo); err != nil {
			return err
		}
		if err := loop.Run(ctx); err != nil {
			return fmt.Errorf("animate: %w", err)
		}
	}
	if rPointerX >= 0 {
		r.PointerMove(rPointerX, float64(cfg.Chart.Height)/2)
		printReadout(cmd, r, rPointerX)
	}

	if err := save(r, rOutput); err != nil {
		return err
	}
	logMetrics(log, reg)
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Rendered %d bars to %s\n", len(bars), rOutput)
	return nil
}

// applyRenderFlags layers the render flags over the loaded config.
func applyRenderFlags(cfg *config.Config) {
	if rInput != "" {
		cfg.Feed.Path = rInput
	}
	if rDB != "" {
		cfg.Feed.DBPath = rDB
	}
	if rSymbol != "" {
		cfg.Chart.Symbol = rSymbol
	}
	if rInterval != "" {
		cfg.Chart.Interval = rInterval
	}
	if rWidth > 0 {
		cfg.Chart.Width = rWidth
	}
	if rHeight > 0 {
		cfg.Chart.Height = rHeight
	}
	if rTheme != "" {
		cfg.Chart.Theme = rTheme
	}
	switch {
	case rFormat != "":
		cfg.Chart.Format = rFormat
	case rOutput != "":
		if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(rOutput)), "."); ext == "svg" || ext == "png" {
			cfg.Chart.Format = ext
		}
	}
}

func setRange(r *chart.Renderer, from, to string) error {
	v := r.Viewport()
	start, end := v.XMin, v.XMax
	if from != "" {
		t, err := parseStart(from)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		start = float64(t.Unix())
	}
	if to != "" {
		t, err := parseStart(to)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}
		end = float64(t.Unix())
	}
	if end <= start {
		return fmt.Errorf("visible range end must be after start")
	}
	r.SetVisibleRange(start, end)
	return nil
}

func printReadout(cmd *cobra.Command, r *chart.Renderer, x float64) {
	out := cmd.OutOrStdout()
	ro, ok := r.Readout(x)
	if !ok {
		fmt.Fprintf(out, "no bar under x=%g\n", x)
		return
	}
	b := ro.Bar
	fmt.Fprintf(out, "%s O %g H %g L %g C %g V %g\n",
		b.At().Format(time.RFC3339), b.Open, b.High, b.Low, b.Close, b.Volume)
	for _, rd := range ro.Indicators {
		fmt.Fprintf(out, "  %s %s %.5f\n", rd.Label, rd.Line, rd.Value)
	}
}

func save(r *chart.Renderer, path string) error {
	g, ok := r.Surface().(*surface.GoChart)
	if !ok {
		return fmt.Errorf("surface %T cannot be saved", r.Surface())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := g.Save(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode chart: %w", err)
	}
	return f.Close()
}

// logMetrics dumps the sample count of every gathered family at debug level.
func logMetrics(log *slog.Logger, g prometheus.Gatherer) {
	if !log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	mfs, err := g.Gather()
	if err != nil {
		log.Warn("gather metrics", "error", err)
		return
	}
	for _, mf := range mfs {
		for _, mt := range mf.GetMetric() {
			v := mt.GetCounter().GetValue()
			if h := mt.GetHistogram(); h != nil {
				v = float64(h.GetSampleCount())
			}
			if gg := mt.GetGauge(); gg != nil {
				v = gg.GetValue()
			}
			log.Debug("metric", "name", mf.GetName(), "value", v)
		}
	}
}
