package indicators

import (
	"github.com/rustyeddy/chartkit/market"
)

// RSI calculates the Relative Strength Index with Wilder's smoothing.
//
// It needs period+1 bars; the first value lands on bar period. Values are
// clamped to [0, 100] and an average loss of exactly zero yields 100.
func RSI(bars []market.Bar, period int, src market.Price) Output {
	if period <= 0 || len(bars) < period+1 {
		return Output{}
	}
	xs := market.Values(bars, src)
	p := float64(period)

	// 1. seed with the simple average of the first period deltas
	sumGain, sumLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		gain, loss := split(xs[i] - xs[i-1])
		sumGain += gain
		sumLoss += loss
	}
	avgGain, avgLoss := sumGain/p, sumLoss/p

	vals := make([]float64, 0, len(xs)-period)
	vals = append(vals, rsiValue(avgGain, avgLoss))

	// 2. Wilder smoothing for the rest
	for i := period + 1; i < len(xs); i++ {
		gain, loss := split(xs[i] - xs[i-1])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		vals = append(vals, rsiValue(avgGain, avgLoss))
	}

	return Output{Lines: []Line{line("rsi", bars, period, vals)}}
}

func split(delta float64) (gain, loss float64) {
	if delta > 0 {
		return delta, 0
	}
	return 0, -delta
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return clamp(100-100/(1+rs), 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
