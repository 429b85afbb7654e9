package market

import "fmt"

// Aggregate resamples a sorted series into buckets of tf seconds. Buckets
// with fewer than minBars source bars are dropped, so gaps stay gaps.
func Aggregate(bars []Bar, tf int64, minBars int) ([]Bar, error) {
	if tf <= 0 {
		return nil, fmt.Errorf("aggregate: timeframe must be positive, got %d", tf)
	}
	if minBars < 1 {
		minBars = 1
	}

	var (
		out   []Bar
		cur   Bar
		count int
	)
	flush := func() {
		if count >= minBars {
			out = append(out, cur)
		}
		count = 0
	}

	for _, b := range bars {
		bucket := (b.Time / tf) * tf
		if count > 0 && bucket != cur.Time {
			flush()
		}
		if count == 0 {
			cur = Bar{Time: bucket, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
			count = 1
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
		count++
	}
	if count > 0 {
		flush()
	}
	return out, nil
}
