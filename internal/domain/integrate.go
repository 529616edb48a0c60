package domain

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// spacingTolerance is the relative deviation from the first coordinate step
// accepted before a grid is considered irregular.
const spacingTolerance = 1e-4

// Range is an inclusive coordinate interval in degrees.
type Range struct {
	Min float64
	Max float64
}

func (r *Range) contains(v float64) bool {
	return r == nil || (v >= r.Min && v <= r.Max)
}

// CheckRegular verifies that coords has at least two points and constant spacing.
func CheckRegular(name string, coords []float64) error {
	if len(coords) < 2 {
		return fmt.Errorf("%w: %s needs at least 2 grid points, got %d", ErrPreconditionViolation, name, len(coords))
	}
	step := coords[1] - coords[0]
	if step == 0 {
		return fmt.Errorf("%w: %s has repeated coordinate %g", ErrPreconditionViolation, name, coords[0])
	}
	for i := 2; i < len(coords); i++ {
		d := coords[i] - coords[i-1]
		if math.Abs(d-step) > spacingTolerance*math.Abs(step) {
			return fmt.Errorf("%w: %s spacing %g at index %d differs from %g",
				ErrPreconditionViolation, name, d, i, step)
		}
	}
	return nil
}

// PatchAreas returns the area in m² of one grid cell at each latitude of g:
// R² cos(phi) dphi dtheta.
func PatchAreas(g Grid) ([]float64, error) {
	if err := CheckRegular("lat", g.Lat); err != nil {
		return nil, err
	}
	if err := CheckRegular("lon", g.Lon); err != nil {
		return nil, err
	}
	dtheta := math.Abs(g.Lon[1]-g.Lon[0]) * RadPerDeg
	dphi := math.Abs(g.Lat[1]-g.Lat[0]) * RadPerDeg

	areas := make([]float64, len(g.Lat))
	for i, lat := range g.Lat {
		areas[i] = EarthRadius * EarthRadius * math.Cos(lat*RadPerDeg) * dphi * dtheta
	}
	return areas, nil
}

// SpatialIntegral sums value * dA over the grid at each time step. The result
// is in (input units) * m². NaN values contribute nothing.
func SpatialIntegral(f Field) (Series, error) {
	areas, err := PatchAreas(f.Grid)
	if err != nil {
		return Series{}, err
	}
	nlon := len(f.Lon)
	weights := make([]float64, f.Cells())
	for i, a := range areas {
		for j := 0; j < nlon; j++ {
			weights[i*nlon+j] = a
		}
	}

	out := Series{Time: slices.Clone(f.Time), Values: make([]float64, len(f.Time))}
	weighted := make([]float64, len(weights))
	for t := range f.Time {
		for k, v := range f.Step(t) {
			if math.IsNaN(v) {
				weighted[k] = 0
				continue
			}
			weighted[k] = v * weights[k]
		}
		out.Values[t] = floats.Sum(weighted)
	}
	return out, nil
}

// MaskArea returns the area in m² of the flagged cells at each time step.
func MaskArea(m Mask) (Series, error) {
	return SpatialIntegral(m.Float())
}

// SpatialAverage returns the cos(lat)-weighted mean of f at each time step,
// restricted to the optional lon and lat ranges (nil means the full extent).
// NaN values are skipped.
func SpatialAverage(f Field, lonRange, latRange *Range) (Series, error) {
	if len(f.Lat) == 0 || len(f.Lon) == 0 {
		return Series{}, fmt.Errorf("%w: field has no lat/lon coordinates", ErrPreconditionViolation)
	}
	nlon := len(f.Lon)
	idx := make([]int, 0, f.Cells())
	cosLat := make([]float64, 0, f.Cells())
	for i, lat := range f.Lat {
		if !latRange.contains(lat) {
			continue
		}
		for j, lon := range f.Lon {
			if !lonRange.contains(lon) {
				continue
			}
			idx = append(idx, i*nlon+j)
			cosLat = append(cosLat, math.Cos(lat*RadPerDeg))
		}
	}
	if len(idx) == 0 {
		return Series{}, fmt.Errorf("%w: averaging range selects no grid points", ErrPreconditionViolation)
	}

	out := Series{Time: slices.Clone(f.Time), Values: make([]float64, len(f.Time))}
	values := make([]float64, 0, len(idx))
	weights := make([]float64, 0, len(idx))
	for t := range f.Time {
		step := f.Step(t)
		values, weights = values[:0], weights[:0]
		for n, k := range idx {
			if v := step[k]; !math.IsNaN(v) {
				values = append(values, v)
				weights = append(weights, cosLat[n])
			}
		}
		if len(values) == 0 {
			out.Values[t] = math.NaN()
			continue
		}
		out.Values[t] = stat.Mean(values, weights)
	}
	return out, nil
}

// GlobalMean is SpatialAverage over the full extent of f.
func GlobalMean(f Field) (Series, error) {
	return SpatialAverage(f, nil, nil)
}
