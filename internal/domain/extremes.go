package domain

import (
	"fmt"
	"math"
	"slices"
)

// Quantile returns the q-th quantile (0 <= q <= 1) of values using linear
// interpolation between the closest order statistics. NaN values are ignored;
// the result is NaN when no finite value remains.
func Quantile(values []float64, q float64) (float64, error) {
	if q < 0 || q > 1 || math.IsNaN(q) {
		return 0, fmt.Errorf("%w: quantile %g outside [0, 1]", ErrInvalidArgument, q)
	}
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return math.NaN(), nil
	}
	slices.Sort(sorted)

	h := q * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo]), nil
}

// EdgeTrim returns the number of points CountExtremes drops from each end of
// the series for a rolling window of w years: round((w-1)/2), ties to even.
func EdgeTrim(w int) int {
	return int(math.RoundToEven(float64(w-1) / 2))
}

// CountExtremes returns the centered rolling count, over window years, of the
// values in s that exceed the cutoffPerc percentile of s.
//
// The window at index t covers [t-w/2, t-w/2+w-1], so for odd w it is
// symmetric about t and for even w it holds one more point before t than
// after. EdgeTrim(window) points are dropped from each end. For even windows
// the first retained point can still reach before the series start; its
// count covers only the in-range part and its label is listed in Truncated.
func CountExtremes(s Series, cutoffPerc float64, window int) (CountSeries, error) {
	if !(cutoffPerc > 0 && cutoffPerc < 100) {
		return CountSeries{}, fmt.Errorf("%w: cutoff percentile %g outside (0, 100)", ErrInvalidArgument, cutoffPerc)
	}
	n := s.Len()
	if window < 1 || window > n {
		return CountSeries{}, fmt.Errorf("%w: window %d outside [1, %d]", ErrInvalidArgument, window, n)
	}
	if len(s.Time) != n {
		return CountSeries{}, fmt.Errorf("%w: %d times for %d values", ErrDimensionMismatch, len(s.Time), n)
	}

	threshold, err := Quantile(s.Values, cutoffPerc/100)
	if err != nil {
		return CountSeries{}, err
	}

	// prefix[i] is the number of exceedances in s.Values[:i].
	prefix := make([]int, n+1)
	for i, v := range s.Values {
		prefix[i+1] = prefix[i]
		if v > threshold {
			prefix[i+1]++
		}
	}

	trim := EdgeTrim(window)
	size := max(n-2*trim, 0)
	out := CountSeries{Time: make([]int, 0, size), Counts: make([]int, 0, size)}
	for t := trim; t < n-trim; t++ {
		start := t - window/2
		end := start + window - 1
		if start < 0 || end > n-1 {
			out.Truncated = append(out.Truncated, s.Time[t])
		}
		start = max(start, 0)
		end = min(end, n-1)
		out.Time = append(out.Time, s.Time[t])
		out.Counts = append(out.Counts, prefix[end+1]-prefix[start])
	}
	return out, nil
}
