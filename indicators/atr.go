package indicators

import (
	"math"

	"github.com/rustyeddy/chartkit/market"
)

// ATR calculates the Average True Range with Wilder's smoothing.
// It needs period+1 bars because the true range uses the previous close.
func ATR(bars []market.Bar, period int) Output {
	if period <= 0 || len(bars) < period+1 {
		return Output{}
	}
	tr := make([]float64, len(bars)-1) // tr[i] -> bar i+1
	for i := 1; i < len(bars); i++ {
		tr[i-1] = trueRange(bars[i], bars[i-1])
	}
	return Output{Lines: []Line{line("atr", bars, period, wilderOf(tr, period))}}
}

// trueRange calculates the True Range for a bar given the previous bar
func trueRange(current, previous market.Bar) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)

	return math.Max(highLow, math.Max(highClose, lowClose))
}
