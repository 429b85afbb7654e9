package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rustyeddy/chartkit/config"
	"github.com/rustyeddy/chartkit/feed"
	"github.com/rustyeddy/chartkit/market"
)

const defaultPoint = 0.00001

// source says where to read bars from, merged from config and flags.
type source struct {
	kind     string // --type, wins over everything
	feed     config.FeedConfig
	symbol   string
	interval string
	start    time.Time // bi5 period start
	from, to int64     // sqlite range, 0 = open
}

// feedType picks the loader: --type, then the input extension, then the
// store when only a database is given, then the configured type.
func (s source) feedType() string {
	if s.kind != "" {
		return s.kind
	}
	switch strings.ToLower(filepath.Ext(s.feed.Path)) {
	case ".bi5":
		return "bi5"
	case ".csv":
		return "csv"
	}
	if s.feed.Path == "" && s.feed.DBPath != "" {
		return "sqlite"
	}
	if s.feed.Type != "" {
		return s.feed.Type
	}
	return "csv"
}

// point is the bi5 price scale: configured, else the symbol's quote
// precision, else five decimals.
func (s source) point() float64 {
	if s.feed.Point > 0 {
		return s.feed.Point
	}
	if in, ok := market.LookupInstrument(s.symbol); ok {
		return in.Point()
	}
	return defaultPoint
}

func loadBars(ctx context.Context, s source) ([]market.Bar, error) {
	switch s.feedType() {
	case "csv":
		if s.feed.Path == "" {
			return nil, fmt.Errorf("input path required for csv feed")
		}
		return feed.LoadCSV(s.feed.Path)

	case "bi5":
		if s.feed.Path == "" {
			return nil, fmt.Errorf("input path required for bi5 feed")
		}
		if s.start.IsZero() {
			return nil, fmt.Errorf("--start required for bi5 feed")
		}
		return feed.LoadBI5(s.feed.Path, s.start, s.point())

	case "sqlite":
		store, err := feed.NewSQLiteStore(s.feed.DBPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(ctx, s.symbol, s.interval, s.from, s.to)

	default:
		return nil, fmt.Errorf("unknown feed type %q", s.feedType())
	}
}

// parseStart accepts a day (2006-01-02), a month (2006-01) or RFC3339.
func parseStart(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad time %q", v)
}

// resample aggregates bars into tf when it is coarser than the source.
func resample(bars []market.Bar, tf string) ([]market.Bar, error) {
	sec, err := market.TimeframeSeconds(tf)
	if err != nil {
		return nil, err
	}
	if sp := market.Spacing(bars); sp > 0 && sp >= sec {
		return bars, nil
	}
	return market.Aggregate(bars, sec, 1)
}
