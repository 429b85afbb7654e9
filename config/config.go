// Package config loads and validates chart configuration files.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/chartkit/chart"
	"github.com/rustyeddy/chartkit/indicators"
	"github.com/rustyeddy/chartkit/market"
	"github.com/rustyeddy/chartkit/metrics"
	"github.com/rustyeddy/chartkit/surface"
)

// Config represents a complete chart setup
type Config struct {
	Chart      ChartConfig       `json:"chart" yaml:"chart"`
	Animation  AnimationConfig   `json:"animation" yaml:"animation"`
	Indicators []IndicatorConfig `json:"indicators,omitempty" yaml:"indicators,omitempty"`
	Feed       FeedConfig        `json:"feed" yaml:"feed"`
	Log        LogConfig         `json:"log" yaml:"log"`
}

// ChartConfig describes the rendered chart
type ChartConfig struct {
	Symbol        string  `json:"symbol" yaml:"symbol"`
	Interval      string  `json:"interval" yaml:"interval"` // e.g. "M1", "H1", "D1"
	Width         int     `json:"width" yaml:"width"`
	Height        int     `json:"height" yaml:"height"`
	Format        string  `json:"format" yaml:"format"` // "svg" or "png"
	Theme         string  `json:"theme" yaml:"theme"`   // "light" or "dark"
	FitBars       int     `json:"fit_bars,omitempty" yaml:"fit_bars,omitempty"`
	MaxPanelRatio float64 `json:"max_panel_ratio,omitempty" yaml:"max_panel_ratio,omitempty"`
}

// AnimationConfig holds the viewport transition durations
type AnimationConfig struct {
	Range string `json:"range" yaml:"range"` // e.g. "300ms"
	Pan   string `json:"pan" yaml:"pan"`     // e.g. "150ms"
}

// RangeDuration parses Range; empty means the renderer default.
func (a AnimationConfig) RangeDuration() (time.Duration, error) {
	return parseDuration(a.Range)
}

// PanDuration parses Pan; empty means the renderer default.
func (a AnimationConfig) PanDuration() (time.Duration, error) {
	return parseDuration(a.Pan)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

// IndicatorConfig is one indicator attached at startup
type IndicatorConfig struct {
	ID          string            `json:"id,omitempty" yaml:"id,omitempty"`
	Kind        string            `json:"kind" yaml:"kind"`
	Params      indicators.Params `json:"params" yaml:"params"`
	Style       chart.Style       `json:"style,omitempty" yaml:"style,omitempty"`
	Overlay     *bool             `json:"overlay,omitempty" yaml:"overlay,omitempty"` // nil: kind default
	Hidden      bool              `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	PanelHeight float64           `json:"panel_height,omitempty" yaml:"panel_height,omitempty"`
}

// ChartConfig converts the entry into a chart indicator config.
func (ic IndicatorConfig) ChartConfig() chart.Config {
	kind := indicators.Kind(strings.ToLower(ic.Kind))
	overlay := chart.IsOverlay(kind)
	if ic.Overlay != nil {
		overlay = *ic.Overlay
	}
	return chart.Config{
		ID:          ic.ID,
		Kind:        kind,
		Params:      ic.Params,
		Style:       ic.Style,
		Visible:     !ic.Hidden,
		Overlay:     overlay,
		PanelHeight: ic.PanelHeight,
	}
}

// FeedConfig says where bars come from
type FeedConfig struct {
	Type   string  `json:"type" yaml:"type"` // "csv", "sqlite" or "bi5"
	Path   string  `json:"path,omitempty" yaml:"path,omitempty"`
	DBPath string  `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	Point  float64 `json:"point,omitempty" yaml:"point,omitempty"` // bi5 price scale, e.g. 0.00001
}

// LogConfig controls logging
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text or json
}

// LoadFromFile loads configuration from a YAML or JSON file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML for .yaml/.yml paths and as
// JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart.width and chart.height must be positive")
	}
	if c.Chart.Interval != "" {
		if _, err := market.TimeframeSeconds(c.Chart.Interval); err != nil {
			return fmt.Errorf("chart.interval: %w", err)
		}
	}
	if _, err := surface.ParseFormat(c.Chart.Format); err != nil {
		return fmt.Errorf("chart.format: %w", err)
	}
	if c.Chart.Theme != "" && c.Chart.Theme != "light" && c.Chart.Theme != "dark" {
		return fmt.Errorf("chart.theme must be 'light' or 'dark'")
	}
	if c.Chart.MaxPanelRatio < 0 || c.Chart.MaxPanelRatio > 1 {
		return fmt.Errorf("chart.max_panel_ratio must be between 0 and 1")
	}
	if _, err := c.Animation.RangeDuration(); err != nil {
		return fmt.Errorf("animation.range: %w", err)
	}
	if _, err := c.Animation.PanDuration(); err != nil {
		return fmt.Errorf("animation.pan: %w", err)
	}

	seen := make(map[string]bool)
	for i, ic := range c.Indicators {
		kind := indicators.Kind(strings.ToLower(ic.Kind))
		if _, err := indicators.Lookup(kind); err != nil {
			return fmt.Errorf("indicators[%d]: %w", i, err)
		}
		if ic.Params != (indicators.Params{}) {
			if err := ic.Params.WithDefaults(kind).Validate(kind); err != nil {
				return fmt.Errorf("indicators[%d]: %w", i, err)
			}
		}
		if ic.ID != "" {
			if seen[ic.ID] {
				return fmt.Errorf("indicators[%d]: duplicate id %s", i, ic.ID)
			}
			seen[ic.ID] = true
		}
	}

	switch c.Feed.Type {
	case "", "csv", "bi5":
	case "sqlite":
		if c.Feed.DBPath == "" {
			return fmt.Errorf("feed db_path required for sqlite type")
		}
	default:
		return fmt.Errorf("feed.type must be 'csv', 'sqlite' or 'bi5'")
	}
	if c.Feed.Point < 0 {
		return fmt.Errorf("feed.point must not be negative")
	}

	if c.Log.Level != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	return nil
}

// Options builds renderer options from the chart and animation sections.
func (c *Config) Options(log *slog.Logger, m *metrics.Metrics) (chart.Options, error) {
	rng, err := c.Animation.RangeDuration()
	if err != nil {
		return chart.Options{}, fmt.Errorf("animation.range: %w", err)
	}
	pan, err := c.Animation.PanDuration()
	if err != nil {
		return chart.Options{}, fmt.Errorf("animation.pan: %w", err)
	}
	return chart.Options{
		RangeDuration: rng,
		PanDuration:   pan,
		FitBars:       c.Chart.FitBars,
		MaxPanelRatio: c.Chart.MaxPanelRatio,
		Theme:         chart.ThemeByName(c.Chart.Theme),
		Logger:        log,
		Metrics:       m,
	}, nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Chart: ChartConfig{
			Symbol:   "EURUSD",
			Interval: "H1",
			Width:    1200,
			Height:   700,
			Format:   "svg",
			Theme:    "light",
			FitBars:  120,
		},
		Animation: AnimationConfig{
			Range: "300ms",
			Pan:   "150ms",
		},
		Indicators: []IndicatorConfig{
			{Kind: "sma", Params: indicators.Params{Period: 20}},
			{Kind: "bollinger", Params: indicators.Params{Period: 20, K: 2}},
			{Kind: "rsi", Params: indicators.Params{Period: 14}},
			{Kind: "macd", Params: indicators.Params{Fast: 12, Slow: 26, Signal: 9}},
		},
		Feed: FeedConfig{
			Type: "csv",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
