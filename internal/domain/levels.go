package domain

import "math"

// ColorbarLevels returns symmetric contour levels for a diverging colormap:
// -amp, -amp+delta, ... up to (not including) 0, then delta, 2*delta, ... amp.
// Zero itself is never a level. amp and delta must be positive.
func ColorbarLevels(amp, delta float64) []float64 {
	if !(amp > 0 && delta > 0) {
		return nil
	}
	neg := arange(-amp, 0, delta)
	pos := arange(delta, amp+delta, delta)
	return append(neg, pos...)
}

// arange returns start, start+step, ... strictly below stop.
func arange(start, stop, step float64) []float64 {
	n := int(math.Ceil((stop - start) / step))
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
