package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/chartkit/indicators"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "EURUSD", cfg.Chart.Symbol)
	assert.Equal(t, "svg", cfg.Chart.Format)
	assert.Len(t, cfg.Indicators, 4)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"zero width", func(c *Config) { c.Chart.Width = 0 }, "chart.width and chart.height must be positive"},
		{"bad interval", func(c *Config) { c.Chart.Interval = "M7" }, "chart.interval"},
		{"bad format", func(c *Config) { c.Chart.Format = "gif" }, "chart.format"},
		{"bad theme", func(c *Config) { c.Chart.Theme = "neon" }, "chart.theme"},
		{"panel ratio", func(c *Config) { c.Chart.MaxPanelRatio = 1.5 }, "chart.max_panel_ratio"},
		{"bad range duration", func(c *Config) { c.Animation.Range = "soon" }, "animation.range"},
		{"negative pan duration", func(c *Config) { c.Animation.Pan = "-1s" }, "animation.pan"},
		{"unknown indicator", func(c *Config) { c.Indicators[0].Kind = "ichimoku" }, "indicators[0]: unknown indicator kind \"ichimoku\", want one of adx"},
		{"bad indicator params", func(c *Config) { c.Indicators[2].Params.Period = -3 }, "indicators[2]"},
		{"duplicate ids", func(c *Config) {
			c.Indicators[0].ID = "a"
			c.Indicators[1].ID = "a"
		}, "duplicate id"},
		{"sqlite without db", func(c *Config) { c.Feed.Type = "sqlite" }, "feed db_path required"},
		{"unknown feed", func(c *Config) { c.Feed.Type = "kafka" }, "feed.type"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
		{"yml format", ".yml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Chart.Theme = "dark"
			overlay := false
			cfg.Indicators[0].Overlay = &overlay
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))
			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.Chart, loaded.Chart)
			assert.Equal(t, cfg.Animation, loaded.Animation)
			require.Len(t, loaded.Indicators, len(cfg.Indicators))
			assert.Equal(t, cfg.Indicators[1].Params, loaded.Indicators[1].Params)
			require.NotNil(t, loaded.Indicators[0].Overlay)
			assert.False(t, *loaded.Indicators[0].Overlay)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.yaml")
	data := "chart:\n  symbol: GBPUSD\n  width: 640\n  height: 480\n  format: png\nanimation:\n  pan: 80ms\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "GBPUSD", cfg.Chart.Symbol)
	assert.Equal(t, "png", cfg.Chart.Format)

	pan, err := cfg.Animation.PanDuration()
	require.NoError(t, err)
	assert.Equal(t, 80*time.Millisecond, pan)
	rng, err := cfg.Animation.RangeDuration()
	require.NoError(t, err)
	assert.Equal(t, 300*time.Millisecond, rng)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestIndicatorChartConfig(t *testing.T) {
	ic := IndicatorConfig{Kind: "RSI", Params: indicators.Params{Period: 7}, Hidden: true}
	cc := ic.ChartConfig()
	assert.Equal(t, indicators.KindRSI, cc.Kind)
	assert.False(t, cc.Overlay)
	assert.False(t, cc.Visible)

	cc = IndicatorConfig{Kind: "ema"}.ChartConfig()
	assert.True(t, cc.Overlay)
	assert.True(t, cc.Visible)

	yes := true
	cc = IndicatorConfig{Kind: "atr", Overlay: &yes}.ChartConfig()
	assert.True(t, cc.Overlay)
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Animation.Range = "1s"
	cfg.Chart.Theme = "dark"

	opts, err := cfg.Options(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Second, opts.RangeDuration)
	assert.Equal(t, 150*time.Millisecond, opts.PanDuration)
	assert.Equal(t, "#131722", opts.Theme.Background)

	cfg.Animation.Pan = "bogus"
	_, err = cfg.Options(nil, nil)
	assert.Error(t, err)
}
