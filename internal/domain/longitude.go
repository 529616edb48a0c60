package domain

import (
	"slices"
	"sort"
)

// ConvertLongitude maps longitudes from [0, 360) to (-180, 180]. Values above
// 180 are shifted by -360; the input slice is not modified.
func ConvertLongitude(lon []float64) []float64 {
	out := slices.Clone(lon)
	for i, v := range out {
		if v > 180 {
			out[i] = v - 360
		}
	}
	return out
}

// SwitchLongitudeRange converts the longitudes of f to (-180, 180] and
// reorders the data so longitude increases.
func SwitchLongitudeRange(f Field) Field {
	order, lon := sortedLongitude(f.Lon)
	out := Field{
		Grid:   Grid{Lat: slices.Clone(f.Lat), Lon: lon},
		Time:   slices.Clone(f.Time),
		Values: make([]float64, len(f.Values)),
	}
	reorderLon(out.Values, f.Values, len(f.Lon), order)
	return out
}

// SwitchLongitudeRangeMonthly is SwitchLongitudeRange for a monthly field.
func SwitchLongitudeRangeMonthly(f MonthlyField) MonthlyField {
	order, lon := sortedLongitude(f.Lon)
	out := MonthlyField{
		Grid:   Grid{Lat: slices.Clone(f.Lat), Lon: lon},
		Months: slices.Clone(f.Months),
		Values: make([]float64, len(f.Values)),
	}
	reorderLon(out.Values, f.Values, len(f.Lon), order)
	return out
}

// ReverseLatitude flips the direction of the latitude axis, e.g. from
// [-90, 90] to [90, -90], along with the data.
func ReverseLatitude(f Field) Field {
	nlat, nlon := len(f.Lat), len(f.Lon)
	out := Field{
		Grid:   Grid{Lat: slices.Clone(f.Lat), Lon: slices.Clone(f.Lon)},
		Time:   slices.Clone(f.Time),
		Values: make([]float64, len(f.Values)),
	}
	slices.Reverse(out.Lat)
	for t := range f.Time {
		src, dst := f.Step(t), out.Step(t)
		for i := 0; i < nlat; i++ {
			copy(dst[i*nlon:(i+1)*nlon], src[(nlat-1-i)*nlon:(nlat-i)*nlon])
		}
	}
	return out
}

func sortedLongitude(lon []float64) (order []int, sorted []float64) {
	converted := ConvertLongitude(lon)
	order = make([]int, len(converted))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return converted[order[a]] < converted[order[b]] })

	sorted = make([]float64, len(order))
	for k, j := range order {
		sorted[k] = converted[j]
	}
	return order, sorted
}

// reorderLon copies src into dst permuting the innermost (lon) axis by order.
func reorderLon(dst, src []float64, nlon int, order []int) {
	if nlon == 0 {
		return
	}
	for row := 0; row < len(src)/nlon; row++ {
		base := row * nlon
		for k, j := range order {
			dst[base+k] = src[base+j]
		}
	}
}
