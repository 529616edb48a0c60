package domain

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// seasonYear returns the DJF season a month belongs to, labelled by the year
// of its January, and false for months outside Dec-Jan-Feb.
func seasonYear(ym YearMonth) (int, bool) {
	switch ym.Month {
	case time.December:
		return ym.Year + 1, true
	case time.January, time.February:
		return ym.Year, true
	default:
		return 0, false
	}
}

// DJFAverage averages each Dec-Jan-Feb season of f and labels it with the
// year of its January. The first and last seasons are dropped: for a record
// running January to December they hold only two and one months respectively.
// Months are expected in chronological order.
func DJFAverage(f MonthlyField) (Field, error) {
	var (
		years  []int
		groups [][]int
	)
	for t, ym := range f.Months {
		year, ok := seasonYear(ym)
		if !ok {
			continue
		}
		if n := len(years); n > 0 && years[n-1] == year {
			groups[n-1] = append(groups[n-1], t)
			continue
		}
		years = append(years, year)
		groups = append(groups, []int{t})
	}
	if len(years) < 3 {
		return Field{}, fmt.Errorf("%w: need at least 3 DJF seasons, got %d", ErrPreconditionViolation, len(years))
	}
	years = years[1 : len(years)-1]
	groups = groups[1 : len(groups)-1]

	cells := f.Cells()
	out := Field{Grid: f.Grid.clone(), Time: slices.Clone(years), Values: make([]float64, len(years)*cells)}
	for g, members := range groups {
		dst := out.Values[g*cells : (g+1)*cells]
		for k := range dst {
			sum, count := 0.0, 0
			for _, t := range members {
				if v := f.Values[t*cells+k]; !math.IsNaN(v) {
					sum += v
					count++
				}
			}
			if count == 0 {
				dst[k] = math.NaN()
				continue
			}
			dst[k] = sum / float64(count)
		}
	}
	return out, nil
}
