package indicators

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/chartkit/market"
)

// Params carries the tunables of every calculator; each kind reads only the
// fields it needs.
type Params struct {
	Period int          `json:"period,omitempty" yaml:"period,omitempty"`
	Source market.Price `json:"source,omitempty" yaml:"source,omitempty"`

	// MACD
	Fast   int `json:"fast,omitempty" yaml:"fast,omitempty"`
	Slow   int `json:"slow,omitempty" yaml:"slow,omitempty"`
	Signal int `json:"signal,omitempty" yaml:"signal,omitempty"`

	// Bollinger band width in standard deviations. Zero is legal and
	// collapses the bands onto the middle line.
	K float64 `json:"k" yaml:"k"`

	// Stochastic
	KPeriod int `json:"k_period,omitempty" yaml:"k_period,omitempty"`
	DPeriod int `json:"d_period,omitempty" yaml:"d_period,omitempty"`
	Smooth  int `json:"smooth,omitempty" yaml:"smooth,omitempty"`

	// Oscillator thresholds used for per-point coloring.
	Overbought float64 `json:"overbought,omitempty" yaml:"overbought,omitempty"`
	Oversold   float64 `json:"oversold,omitempty" yaml:"oversold,omitempty"`
}

// DefaultParams returns the conventional settings for kind.
func DefaultParams(kind Kind) Params {
	switch kind {
	case KindSMA, KindEMA:
		return Params{Period: 20, Source: market.PriceClose}
	case KindRSI:
		return Params{Period: 14, Source: market.PriceClose, Overbought: 70, Oversold: 30}
	case KindMACD:
		return Params{Fast: 12, Slow: 26, Signal: 9, Source: market.PriceClose}
	case KindBollinger:
		return Params{Period: 20, K: 2, Source: market.PriceClose}
	case KindStochastic:
		return Params{KPeriod: 14, Smooth: 3, DPeriod: 3, Overbought: 80, Oversold: 20}
	case KindForce:
		return Params{Period: 13}
	case KindATR, KindADX:
		return Params{Period: 14}
	default:
		return Params{}
	}
}

// WithDefaults fills zero periods, source and thresholds from DefaultParams.
// K is kept as given.
func (p Params) WithDefaults(kind Kind) Params {
	d := DefaultParams(kind)
	if p.Period == 0 {
		p.Period = d.Period
	}
	if p.Source == "" {
		p.Source = d.Source
	}
	if p.Fast == 0 {
		p.Fast = d.Fast
	}
	if p.Slow == 0 {
		p.Slow = d.Slow
	}
	if p.Signal == 0 {
		p.Signal = d.Signal
	}
	if p.KPeriod == 0 {
		p.KPeriod = d.KPeriod
	}
	if p.DPeriod == 0 {
		p.DPeriod = d.DPeriod
	}
	if p.Smooth == 0 {
		p.Smooth = d.Smooth
	}
	if p.Overbought == 0 {
		p.Overbought = d.Overbought
	}
	if p.Oversold == 0 {
		p.Oversold = d.Oversold
	}
	return p
}

// Validate checks that the fields kind reads are usable.
func (p Params) Validate(kind Kind) error {
	if _, err := Lookup(kind); err != nil {
		return err
	}
	if !p.Source.Valid() {
		return fmt.Errorf("%s: unknown price source %q", kind, p.Source)
	}
	positive := func(name string, v int) error {
		if v <= 0 {
			return fmt.Errorf("%s: %s must be positive, got %d", kind, name, v)
		}
		return nil
	}
	switch kind {
	case KindSMA, KindEMA, KindRSI, KindForce, KindATR, KindADX:
		return positive("period", p.Period)
	case KindBollinger:
		if p.K < 0 {
			return fmt.Errorf("%s: k must not be negative, got %g", kind, p.K)
		}
		return positive("period", p.Period)
	case KindMACD:
		for _, f := range []struct {
			n string
			v int
		}{{"fast", p.Fast}, {"slow", p.Slow}, {"signal", p.Signal}} {
			if err := positive(f.n, f.v); err != nil {
				return err
			}
		}
	case KindStochastic:
		for _, f := range []struct {
			n string
			v int
		}{{"k_period", p.KPeriod}, {"d_period", p.DPeriod}, {"smooth", p.Smooth}} {
			if err := positive(f.n, f.v); err != nil {
				return err
			}
		}
	}
	if p.Overbought != 0 || p.Oversold != 0 {
		if p.Oversold >= p.Overbought {
			return fmt.Errorf("%s: oversold %g must be below overbought %g", kind, p.Oversold, p.Overbought)
		}
	}
	return nil
}

// String renders the parameters the way the kind is usually labelled,
// e.g. "MACD(12,26,9)".
func (p Params) String(kind Kind) string {
	switch kind {
	case KindMACD:
		return fmt.Sprintf("MACD(%d,%d,%d)", p.Fast, p.Slow, p.Signal)
	case KindBollinger:
		return fmt.Sprintf("BB(%d,%g)", p.Period, p.K)
	case KindStochastic:
		return fmt.Sprintf("Stoch(%d,%d,%d)", p.KPeriod, p.Smooth, p.DPeriod)
	case KindVolume:
		return "Volume"
	case KindForce:
		return fmt.Sprintf("Force(%d)", p.Period)
	default:
		return fmt.Sprintf("%s(%d)", strings.ToUpper(string(kind)), p.Period)
	}
}
