package market

import (
	"math"
	"sort"
)

// Price selects which bar field feeds a calculation.
type Price string

const (
	PriceClose Price = "close"
	PriceOpen  Price = "open"
	PriceHigh  Price = "high"
	PriceLow   Price = "low"
	PriceHL2   Price = "hl2"
	PriceHLC3  Price = "hlc3"
	PriceOHLC4 Price = "ohlc4"
)

// Valid reports whether p names a known price field. Empty means close.
func (p Price) Valid() bool {
	switch p {
	case "", PriceClose, PriceOpen, PriceHigh, PriceLow, PriceHL2, PriceHLC3, PriceOHLC4:
		return true
	}
	return false
}

// Of returns the selected price of b.
func (p Price) Of(b Bar) float64 {
	switch p {
	case PriceOpen:
		return b.Open
	case PriceHigh:
		return b.High
	case PriceLow:
		return b.Low
	case PriceHL2:
		return (b.High + b.Low) / 2
	case PriceHLC3:
		return (b.High + b.Low + b.Close) / 3
	case PriceOHLC4:
		return (b.Open + b.High + b.Low + b.Close) / 4
	default:
		return b.Close
	}
}

// Values extracts the selected price of every bar.
func Values(bars []Bar, p Price) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = p.Of(b)
	}
	return out
}

// Window returns the index range [lo, hi) of bars whose time lies in
// [from, to]. Bars must be sorted by time.
func Window(bars []Bar, from, to float64) (lo, hi int) {
	lo = sort.Search(len(bars), func(i int) bool { return float64(bars[i].Time) >= from })
	hi = sort.Search(len(bars), func(i int) bool { return float64(bars[i].Time) > to })
	return lo, hi
}

// Nearest returns the index of the bar closest in time to t, or -1 when the
// series is empty.
func Nearest(bars []Bar, t float64) int {
	n := len(bars)
	if n == 0 {
		return -1
	}
	i := sort.Search(n, func(i int) bool { return float64(bars[i].Time) >= t })
	switch {
	case i == 0:
		return 0
	case i == n:
		return n - 1
	}
	if t-float64(bars[i-1].Time) <= float64(bars[i].Time)-t {
		return i - 1
	}
	return i
}

// Extent returns the lowest low and highest high of bars. ok is false for an
// empty slice.
func Extent(bars []Bar) (lo, hi float64, ok bool) {
	if len(bars) == 0 {
		return 0, 0, false
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, b := range bars {
		lo = math.Min(lo, b.Low)
		hi = math.Max(hi, b.High)
	}
	return lo, hi, true
}

// Spacing returns the smallest positive gap between consecutive bar times,
// which is the series interval when no bars are missing. It returns 0 for
// fewer than two bars.
func Spacing(bars []Bar) int64 {
	var s int64
	for i := 1; i < len(bars); i++ {
		d := bars[i].Time - bars[i-1].Time
		if d > 0 && (s == 0 || d < s) {
			s = d
		}
	}
	return s
}
