package indicators

import (
	"math"

	"github.com/rustyeddy/chartkit/market"
)

// ADX implements Wilder's Average Directional Index (trend strength) along
// with the +DI and -DI lines it is built from.
//
// Warmup:
//   - period bars of TR/+DM/-DM seed the smoothed values, so +DI/-DI start on bar period
//   - period DX values seed ADX, so ADX starts on bar 2*period-1
func ADX(bars []market.Bar, period int) Output {
	if period <= 0 || len(bars) < 2*period {
		return Output{}
	}

	n := len(bars) - 1
	tr := make([]float64, n)
	pdm := make([]float64, n)
	mdm := make([]float64, n)
	for i := 1; i < len(bars); i++ {
		c, prev := bars[i], bars[i-1]

		// directional movement, current vs previous highs/lows
		upMove := c.High - prev.High
		downMove := prev.Low - c.Low
		if upMove > downMove && upMove > 0 {
			pdm[i-1] = upMove
		}
		if downMove > upMove && downMove > 0 {
			mdm[i-1] = downMove
		}
		tr[i-1] = trueRange(c, prev)
	}

	trS := wilderOf(tr, period)
	pdmS := wilderOf(pdm, period)
	mdmS := wilderOf(mdm, period)

	pdi := make([]float64, len(trS))
	mdi := make([]float64, len(trS))
	dx := make([]float64, len(trS))
	for i := range trS {
		// guard pathological flat data
		if trS[i] == 0 {
			continue
		}
		pdi[i] = 100 * pdmS[i] / trS[i]
		mdi[i] = 100 * mdmS[i] / trS[i]
		if den := pdi[i] + mdi[i]; den != 0 {
			dx[i] = 100 * math.Abs(pdi[i]-mdi[i]) / den
		}
	}

	adx := wilderOf(dx, period)
	return Output{Lines: []Line{
		line("adx", bars, 2*period-1, adx),
		line("plus_di", bars, period, pdi),
		line("minus_di", bars, period, mdi),
	}}
}
