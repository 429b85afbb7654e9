package indicators

import (
	"github.com/rustyeddy/chartkit/market"
)

// Volume emits the raw bar volume for every bar.
func Volume(bars []market.Bar) Output {
	if len(bars) == 0 {
		return Output{}
	}
	vals := make([]float64, len(bars))
	for i, b := range bars {
		vals[i] = b.Volume
	}
	return Output{Lines: []Line{line("volume", bars, 0, vals)}}
}

// ForceIndex is the EMA over period of (close - previous close) * volume.
// It needs period+1 bars; the first value lands on bar period.
func ForceIndex(bars []market.Bar, period int) Output {
	if period <= 0 || len(bars) < period+1 {
		return Output{}
	}
	raw := make([]float64, len(bars)-1) // raw[i] -> bar i+1
	for i := 1; i < len(bars); i++ {
		raw[i-1] = (bars[i].Close - bars[i-1].Close) * bars[i].Volume
	}
	vals := emaOf(raw, period)
	return Output{Lines: []Line{line("force", bars, period, vals)}}
}
