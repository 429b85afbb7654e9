package indicators

import (
	"math"

	"github.com/rustyeddy/chartkit/market"
)

// Bollinger calculates Bollinger Bands: the SMA of src over period plus and
// minus k population standard deviations. Upper, middle and lower values are
// emitted for the same bars.
func Bollinger(bars []market.Bar, period int, k float64, src market.Price) Output {
	if period <= 0 || len(bars) < period {
		return Output{}
	}
	xs := market.Values(bars, src)
	n := len(xs) - period + 1

	upper := make([]float64, n)
	middle := make([]float64, n)
	lower := make([]float64, n)

	for i := 0; i < n; i++ {
		window := xs[i : i+period]
		sum := 0.0
		for _, x := range window {
			sum += x
		}
		mean := sum / float64(period)

		ss := 0.0
		for _, x := range window {
			d := x - mean
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(period))

		middle[i] = mean
		upper[i] = mean + k*sd
		lower[i] = mean - k*sd
	}

	start := period - 1
	return Output{Lines: []Line{
		line("upper", bars, start, upper),
		line("middle", bars, start, middle),
		line("lower", bars, start, lower),
	}}
}
