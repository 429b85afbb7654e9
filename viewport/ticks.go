package viewport

import "math"

// Ticks returns "nice" grid values (1, 2 or 5 times a power of ten) inside
// [lo, hi], aiming for about n of them.
func Ticks(lo, hi float64, n int) []float64 {
	if n < 1 || !(lo < hi) || math.IsInf(hi-lo, 0) {
		return nil
	}
	step := NiceStep((hi - lo) / float64(n))
	if step <= 0 {
		return nil
	}
	// integer multiples keep values on the grid; dividing by the inverse
	// step keeps decimal steps exact (12/10 rather than 12*0.1)
	inv := 0.0
	if step < 1 {
		inv = math.Round(1 / step)
	}
	var out []float64
	for k := math.Ceil(lo / step); k*step <= hi+step*1e-9; k++ {
		if inv > 0 {
			out = append(out, k/inv)
		} else {
			out = append(out, k*step)
		}
		if len(out) > 4*n+4 {
			break
		}
	}
	return out
}

// NiceStep rounds raw up to the next 1, 2 or 5 times a power of ten.
func NiceStep(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0
	}
	exp := math.Floor(math.Log10(raw))
	base := math.Pow(10, exp)
	switch f := raw / base; {
	case f <= 1:
		return base
	case f <= 2:
		return 2 * base
	case f <= 5:
		return 5 * base
	default:
		return 10 * base
	}
}
