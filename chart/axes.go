package chart

import (
	"math"
	"strconv"
	"time"

	"github.com/rustyeddy/chartkit/viewport"
)

// timeSteps are the grid intervals the time axis may use, in seconds.
var timeSteps = []int64{
	1, 5, 15, 30,
	60, 5 * 60, 15 * 60, 30 * 60,
	3600, 2 * 3600, 4 * 3600, 6 * 3600, 12 * 3600,
	86400, 2 * 86400, 7 * 86400, 14 * 86400, 30 * 86400, 90 * 86400, 365 * 86400,
}

// maxTimeTicks bounds one axis pass whatever the span.
const maxTimeTicks = 64

// timeTicks returns grid times inside [lo, hi], about n of them. Spans past
// the largest step use nice multiples of a year.
func timeTicks(lo, hi float64, n int) (ticks []int64, step int64) {
	if n < 1 || !(lo < hi) || math.Abs(lo) > maxTickTime || math.Abs(hi) > maxTickTime {
		return nil, 0
	}
	raw := (hi - lo) / float64(n)
	year := timeSteps[len(timeSteps)-1]
	step = 0
	for _, s := range timeSteps {
		if float64(s) >= raw {
			step = s
			break
		}
	}
	if step == 0 {
		step = year * int64(viewport.NiceStep(raw/float64(year)))
	}
	for t := int64(math.Ceil(lo/float64(step))) * step; float64(t) <= hi && len(ticks) < maxTimeTicks; t += step {
		ticks = append(ticks, t)
	}
	return ticks, step
}

// maxTickTime keeps tick arithmetic well inside int64.
const maxTickTime = 1 << 52

// timeLabel formats t for a grid of the given step.
func timeLabel(t, step int64) string {
	at := time.Unix(t, 0).UTC()
	switch {
	case step < 60:
		return at.Format("15:04:05")
	case step < 86400:
		if at.Hour() == 0 && at.Minute() == 0 {
			return at.Format("Jan 02")
		}
		return at.Format("15:04")
	case step < 30*86400:
		return at.Format("Jan 02")
	default:
		return at.Format("Jan 2006")
	}
}

// priceDecimals is how many decimals a price grid of the given step needs.
func priceDecimals(step float64) int {
	if step <= 0 || step >= 1 {
		return 0
	}
	return int(math.Ceil(-math.Log10(step) - 1e-9))
}

func priceLabel(p float64, decimals int) string {
	return strconv.FormatFloat(p, 'f', decimals, 64)
}
