package indicators

import (
	"github.com/rustyeddy/chartkit/market"
)

// Stochastic calculates the stochastic oscillator.
//
// Raw %K is where the close sits inside the high/low range of the last
// kPeriod bars, scaled to 0..100; a zero range counts as 0. %K is raw %K
// smoothed by an SMA over smooth bars (smooth <= 1 disables smoothing) and
// %D is the SMA of %K over dPeriod bars.
func Stochastic(bars []market.Bar, kPeriod, smooth, dPeriod int) Output {
	if kPeriod <= 0 || dPeriod <= 0 {
		return Output{}
	}
	if smooth < 1 {
		smooth = 1
	}
	if len(bars) < kPeriod+smooth-1 {
		return Output{}
	}

	raw := make([]float64, len(bars)-kPeriod+1)
	for i := range raw {
		window := bars[i : i+kPeriod]
		hh, ll := window[0].High, window[0].Low
		for _, b := range window[1:] {
			hh = max(hh, b.High)
			ll = min(ll, b.Low)
		}
		if hh == ll {
			raw[i] = 0
			continue
		}
		raw[i] = clamp((window[kPeriod-1].Close-ll)/(hh-ll)*100, 0, 100)
	}

	kVals := raw
	kStart := kPeriod - 1
	if smooth > 1 {
		kVals = smaOf(raw, smooth)
		kStart += smooth - 1
	}

	out := Output{Lines: []Line{line("k", bars, kStart, kVals)}}
	if dVals := smaOf(kVals, dPeriod); dVals != nil {
		out.Lines = append(out.Lines, line("d", bars, kStart+dPeriod-1, dVals))
	} else {
		out.Lines = append(out.Lines, Line{Name: "d"})
	}
	return out
}
