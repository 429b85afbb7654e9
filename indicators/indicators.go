// Package indicators provides technical analysis calculators for the chart.
//
// Every calculator is a pure function of a bar series and its parameters: no
// state survives between calls, so the same calculator can be re-run on any
// sub-range or with new parameters at any time. A series shorter than a
// calculator's warmup yields an empty Output, never an error.
package indicators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/chartkit/market"
)

// Kind names a calculator.
type Kind string

const (
	KindSMA        Kind = "sma"
	KindEMA        Kind = "ema"
	KindRSI        Kind = "rsi"
	KindMACD       Kind = "macd"
	KindBollinger  Kind = "bollinger"
	KindStochastic Kind = "stochastic"
	KindVolume     Kind = "volume"
	KindForce      Kind = "force"
	KindATR        Kind = "atr"
	KindADX        Kind = "adx"
)

// Value is one derived point, always aligned to a source bar's time.
type Value struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// Line is a named run of values, e.g. the "signal" line of MACD.
type Line struct {
	Name   string  `json:"name"`
	Values []Value `json:"values"`
}

// Output is everything one calculator run produced, lines in draw order.
type Output struct {
	Lines []Line `json:"lines"`
}

// Empty reports whether no line carries a value.
func (o Output) Empty() bool {
	for _, l := range o.Lines {
		if len(l.Values) > 0 {
			return false
		}
	}
	return true
}

// Line returns the values of the named line, or nil.
func (o Output) Line(name string) []Value {
	for _, l := range o.Lines {
		if l.Name == name {
			return l.Values
		}
	}
	return nil
}

// Len returns the total number of values across all lines.
func (o Output) Len() int {
	n := 0
	for _, l := range o.Lines {
		n += len(l.Values)
	}
	return n
}

// Calculator maps a bar series and parameters to derived lines.
type Calculator func(bars []market.Bar, p Params) Output

var calculators = map[Kind]Calculator{
	KindSMA: func(bars []market.Bar, p Params) Output {
		return SMA(bars, p.Period, p.Source)
	},
	KindEMA: func(bars []market.Bar, p Params) Output {
		return EMA(bars, p.Period, p.Source)
	},
	KindRSI: func(bars []market.Bar, p Params) Output {
		return RSI(bars, p.Period, p.Source)
	},
	KindMACD: func(bars []market.Bar, p Params) Output {
		return MACD(bars, p.Fast, p.Slow, p.Signal, p.Source)
	},
	KindBollinger: func(bars []market.Bar, p Params) Output {
		return Bollinger(bars, p.Period, p.K, p.Source)
	},
	KindStochastic: func(bars []market.Bar, p Params) Output {
		return Stochastic(bars, p.KPeriod, p.Smooth, p.DPeriod)
	},
	KindVolume: func(bars []market.Bar, _ Params) Output {
		return Volume(bars)
	},
	KindForce: func(bars []market.Bar, p Params) Output {
		return ForceIndex(bars, p.Period)
	},
	KindATR: func(bars []market.Bar, p Params) Output {
		return ATR(bars, p.Period)
	},
	KindADX: func(bars []market.Bar, p Params) Output {
		return ADX(bars, p.Period)
	},
}

// Lookup returns the calculator registered for kind.
func Lookup(kind Kind) (Calculator, error) {
	c, ok := calculators[kind]
	if !ok {
		names := make([]string, 0, len(calculators))
		for _, k := range Kinds() {
			names = append(names, string(k))
		}
		return nil, fmt.Errorf("unknown indicator kind %q, want one of %s", kind, strings.Join(names, ", "))
	}
	return c, nil
}

// Kinds lists every registered kind in sorted order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(calculators))
	for k := range calculators {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// line aligns vals to bars starting at bar index offset.
func line(name string, bars []market.Bar, offset int, vals []float64) Line {
	l := Line{Name: name, Values: make([]Value, len(vals))}
	for i, v := range vals {
		l.Values[i] = Value{Time: bars[offset+i].Time, Value: v}
	}
	return l
}
