package indicators

import (
	"github.com/rustyeddy/chartkit/market"
)

// SMA calculates the Simple Moving Average of src over period bars. The
// first value lands on bar period-1.
func SMA(bars []market.Bar, period int, src market.Price) Output {
	vals := smaOf(market.Values(bars, src), period)
	if vals == nil {
		return Output{}
	}
	return Output{Lines: []Line{line("sma", bars, period-1, vals)}}
}

// EMA calculates the Exponential Moving Average of src. It is seeded with the
// SMA of the first period bars and then smoothed with 2/(period+1).
func EMA(bars []market.Bar, period int, src market.Price) Output {
	vals := emaOf(market.Values(bars, src), period)
	if vals == nil {
		return Output{}
	}
	return Output{Lines: []Line{line("ema", bars, period-1, vals)}}
}

// smaOf returns the mean of every full window; out[i] covers xs[i:i+period].
// Each window is summed afresh so no drift accumulates along the series.
func smaOf(xs []float64, period int) []float64 {
	if period <= 0 || len(xs) < period {
		return nil
	}
	out := make([]float64, len(xs)-period+1)
	for i := range out {
		sum := 0.0
		for _, x := range xs[i : i+period] {
			sum += x
		}
		out[i] = sum / float64(period)
	}
	return out
}

// emaOf returns the EMA aligned so out[i] belongs to xs[i+period-1].
func emaOf(xs []float64, period int) []float64 {
	if period <= 0 || len(xs) < period {
		return nil
	}
	multiplier := 2.0 / float64(period+1)

	out := make([]float64, len(xs)-period+1)
	sum := 0.0
	for _, x := range xs[:period] {
		sum += x
	}
	out[0] = sum / float64(period)

	for i := 1; i < len(out); i++ {
		x := xs[i+period-1]
		out[i] = (x-out[i-1])*multiplier + out[i-1]
	}
	return out
}

// wilderOf is Wilder's smoothing: seeded with the mean of the first period
// values, then (prev*(period-1) + x) / period. out[i] belongs to xs[i+period-1].
func wilderOf(xs []float64, period int) []float64 {
	if period <= 0 || len(xs) < period {
		return nil
	}
	p := float64(period)

	out := make([]float64, len(xs)-period+1)
	sum := 0.0
	for _, x := range xs[:period] {
		sum += x
	}
	out[0] = sum / p

	for i := 1; i < len(out); i++ {
		out[i] = (out[i-1]*(p-1) + xs[i+period-1]) / p
	}
	return out
}
