package indicators

import (
	"github.com/rustyeddy/chartkit/market"
)

// MACD calculates the Moving Average Convergence Divergence.
//
// macd = EMA(fast) - EMA(slow), signal = EMA(signal) of macd and
// histogram = macd - signal. All three lines share the same bars; the series
// needs max(fast, slow) + signal bars.
func MACD(bars []market.Bar, fast, slow, signal int, src market.Price) Output {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return Output{}
	}
	longest := max(fast, slow)
	if len(bars) < longest+signal {
		return Output{}
	}

	xs := market.Values(bars, src)
	fastEMA := emaOf(xs, fast) // fastEMA[i] -> bar i+fast-1
	slowEMA := emaOf(xs, slow) // slowEMA[i] -> bar i+slow-1

	// macd line from the first bar where both averages exist
	macdLine := make([]float64, len(xs)-longest+1)
	for i := range macdLine {
		bar := i + longest - 1
		macdLine[i] = fastEMA[bar-(fast-1)] - slowEMA[bar-(slow-1)]
	}

	signalLine := emaOf(macdLine, signal) // signalLine[i] -> macdLine[i+signal-1]
	start := longest - 1 + signal - 1

	m := make([]float64, len(signalLine))
	h := make([]float64, len(signalLine))
	for i, s := range signalLine {
		m[i] = macdLine[i+signal-1]
		h[i] = m[i] - s
	}

	return Output{Lines: []Line{
		line("histogram", bars, start, h),
		line("macd", bars, start, m),
		line("signal", bars, start, signalLine),
	}}
}
