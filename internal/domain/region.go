package domain

import (
	"fmt"
	"slices"
)

// Region is a longitude/latitude rectangle in degrees, bounds inclusive.
type Region struct {
	Name   string  `json:"name"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
}

var (
	// Azores is the domain over which the AHA index is computed.
	Azores = Region{Name: "azores", LonMin: -60, LonMax: 10, LatMin: 10, LatMax: 52}

	// NorthAtlantic is the wider domain used for context maps.
	NorthAtlantic = Region{Name: "north_atlantic", LonMin: -70, LonMax: 15, LatMin: 0, LatMax: 70}
)

// Contains reports whether (lon, lat) lies inside the rectangle.
func (r Region) Contains(lon, lat float64) bool {
	return lon >= r.LonMin && lon <= r.LonMax && lat >= r.LatMin && lat <= r.LatMax
}

// Trim selects the grid points of f that fall inside r. Coordinate order is preserved.
func Trim(f Field, r Region) (Field, error) {
	latIdx, lonIdx, err := selectRegion(f.Grid, r)
	if err != nil {
		return Field{}, err
	}
	out := Field{
		Grid:   subGrid(f.Grid, latIdx, lonIdx),
		Time:   slices.Clone(f.Time),
		Values: make([]float64, 0, len(f.Time)*len(latIdx)*len(lonIdx)),
	}
	for t := range f.Time {
		for _, i := range latIdx {
			for _, j := range lonIdx {
				out.Values = append(out.Values, f.At(t, i, j))
			}
		}
	}
	return out, nil
}

// TrimMonthly is Trim for a monthly field.
func TrimMonthly(f MonthlyField, r Region) (MonthlyField, error) {
	latIdx, lonIdx, err := selectRegion(f.Grid, r)
	if err != nil {
		return MonthlyField{}, err
	}
	out := MonthlyField{
		Grid:   subGrid(f.Grid, latIdx, lonIdx),
		Months: slices.Clone(f.Months),
		Values: make([]float64, 0, len(f.Months)*len(latIdx)*len(lonIdx)),
	}
	nlon := len(f.Lon)
	for t := range f.Months {
		step := f.Step(t)
		for _, i := range latIdx {
			for _, j := range lonIdx {
				out.Values = append(out.Values, step[i*nlon+j])
			}
		}
	}
	return out, nil
}

// TrimToAzores trims f to the Azores region.
func TrimToAzores(f Field) (Field, error) { return Trim(f, Azores) }

// TrimToNorthAtlantic trims f to the North Atlantic region.
func TrimToNorthAtlantic(f Field) (Field, error) { return Trim(f, NorthAtlantic) }

func selectRegion(g Grid, r Region) (latIdx, lonIdx []int, err error) {
	if len(g.Lat) == 0 || len(g.Lon) == 0 {
		return nil, nil, fmt.Errorf("%w: field has no lat/lon coordinates", ErrPreconditionViolation)
	}
	latIdx = indicesWithin(g.Lat, r.LatMin, r.LatMax)
	lonIdx = indicesWithin(g.Lon, r.LonMin, r.LonMax)
	if len(latIdx) == 0 || len(lonIdx) == 0 {
		return nil, nil, fmt.Errorf("%w: region %q selects no grid points", ErrPreconditionViolation, r.Name)
	}
	return latIdx, lonIdx, nil
}

func indicesWithin(coords []float64, lo, hi float64) []int {
	var idx []int
	for i, c := range coords {
		if c >= lo && c <= hi {
			idx = append(idx, i)
		}
	}
	return idx
}

func subGrid(g Grid, latIdx, lonIdx []int) Grid {
	out := Grid{Lat: make([]float64, len(latIdx)), Lon: make([]float64, len(lonIdx))}
	for k, i := range latIdx {
		out.Lat[k] = g.Lat[i]
	}
	for k, j := range lonIdx {
		out.Lon[k] = g.Lon[j]
	}
	return out
}
