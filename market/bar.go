// Package market holds the bar series the chart engine consumes.
package market

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidSeries is returned when a supplied series breaks ordering or
// OHLC invariants. The caller keeps rendering the previously accepted series.
var ErrInvalidSeries = errors.New("invalid series")

// Bar represents one OHLCV sample for a fixed interval.
type Bar struct {
	Time   int64   `json:"time" yaml:"time"` // unix seconds, bucket open
	Open   float64 `json:"open" yaml:"open"`
	High   float64 `json:"high" yaml:"high"`
	Low    float64 `json:"low" yaml:"low"`
	Close  float64 `json:"close" yaml:"close"`
	Volume float64 `json:"volume" yaml:"volume"`
}

// At returns the bar open time in UTC.
func (b Bar) At() time.Time {
	return time.Unix(b.Time, 0).UTC()
}

// Up reports whether the bar closed at or above its open.
func (b Bar) Up() bool {
	return b.Close >= b.Open
}

// Validate checks the OHLCV invariants of a single bar.
func (b Bar) Validate() error {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite value at t=%d", b.Time)
		}
		if v < 0 {
			return fmt.Errorf("negative value at t=%d", b.Time)
		}
	}
	if b.High < math.Max(b.Open, b.Close) {
		return fmt.Errorf("high %.6f below body at t=%d", b.High, b.Time)
	}
	if b.Low > math.Min(b.Open, b.Close) {
		return fmt.Errorf("low %.6f above body at t=%d", b.Low, b.Time)
	}
	return nil
}

// ValidateSeries checks that times are strictly increasing and every bar is
// well formed. Errors wrap ErrInvalidSeries.
func ValidateSeries(bars []Bar) error {
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("%w: bar %d: %v", ErrInvalidSeries, i, err)
		}
		if i > 0 && b.Time <= bars[i-1].Time {
			if b.Time == bars[i-1].Time {
				return fmt.Errorf("%w: duplicate time %d at bar %d", ErrInvalidSeries, b.Time, i)
			}
			return fmt.Errorf("%w: time %d at bar %d is before %d", ErrInvalidSeries, b.Time, i, bars[i-1].Time)
		}
	}
	return nil
}
