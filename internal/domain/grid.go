package domain

import (
	"fmt"
	"slices"
	"time"
)

// Grid holds the latitude and longitude coordinates, in degrees, shared by
// every time step of a field.
type Grid struct {
	Lat []float64 `json:"lat"`
	Lon []float64 `json:"lon"`
}

// Cells returns the number of grid points per time step.
func (g Grid) Cells() int { return len(g.Lat) * len(g.Lon) }

func (g Grid) clone() Grid {
	return Grid{Lat: slices.Clone(g.Lat), Lon: slices.Clone(g.Lon)}
}

// YearMonth labels one month of a monthly time axis.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Field is a gridded quantity indexed by (year, lat, lon).
type Field struct {
	Grid
	Time   []int     `json:"time"`
	Values []float64 `json:"values"`
}

// NewField validates the shape of values against the axes and returns the field.
func NewField(times []int, lat, lon []float64, values []float64) (Field, error) {
	if want := len(times) * len(lat) * len(lon); len(values) != want {
		return Field{}, fmt.Errorf("%w: %d values for %d times x %d lat x %d lon",
			ErrDimensionMismatch, len(values), len(times), len(lat), len(lon))
	}
	return Field{Grid: Grid{Lat: lat, Lon: lon}, Time: times, Values: values}, nil
}

// At returns the value at time index t, latitude index i and longitude index j.
func (f Field) At(t, i, j int) float64 {
	return f.Values[(t*len(f.Lat)+i)*len(f.Lon)+j]
}

// Step returns the (lat, lon) slab of time index t. The slice aliases f.Values.
func (f Field) Step(t int) []float64 {
	n := f.Cells()
	return f.Values[t*n : (t+1)*n]
}

// Clone returns a deep copy of f.
func (f Field) Clone() Field {
	return Field{Grid: f.Grid.clone(), Time: slices.Clone(f.Time), Values: slices.Clone(f.Values)}
}

// MonthlyField is a gridded quantity on a monthly time axis, as read from disk.
type MonthlyField struct {
	Grid
	Months []YearMonth `json:"months"`
	Values []float64   `json:"values"`
}

// NewMonthlyField validates the shape of values against the axes.
func NewMonthlyField(months []YearMonth, lat, lon []float64, values []float64) (MonthlyField, error) {
	if want := len(months) * len(lat) * len(lon); len(values) != want {
		return MonthlyField{}, fmt.Errorf("%w: %d values for %d months x %d lat x %d lon",
			ErrDimensionMismatch, len(values), len(months), len(lat), len(lon))
	}
	return MonthlyField{Grid: Grid{Lat: lat, Lon: lon}, Months: months, Values: values}, nil
}

// Step returns the (lat, lon) slab of time index t. The slice aliases f.Values.
func (f MonthlyField) Step(t int) []float64 {
	n := f.Cells()
	return f.Values[t*n : (t+1)*n]
}

// Mask is a boolean field, true where a cell exceeds its threshold.
type Mask struct {
	Grid
	Time   []int  `json:"time"`
	Values []bool `json:"values"`
}

// At returns the flag at time index t, latitude index i and longitude index j.
func (m Mask) At(t, i, j int) bool {
	return m.Values[(t*len(m.Lat)+i)*len(m.Lon)+j]
}

// Float converts the mask to a field of 1.0 and 0.0 values for integration.
func (m Mask) Float() Field {
	values := make([]float64, len(m.Values))
	for k, v := range m.Values {
		if v {
			values[k] = 1
		}
	}
	return Field{Grid: m.Grid.clone(), Time: slices.Clone(m.Time), Values: values}
}

// Series is a one-dimensional quantity indexed by year.
type Series struct {
	Time   []int     `json:"time"`
	Values []float64 `json:"values"`
}

// NewSeries validates that times and values have the same length.
func NewSeries(times []int, values []float64) (Series, error) {
	if len(times) != len(values) {
		return Series{}, fmt.Errorf("%w: %d times for %d values", ErrDimensionMismatch, len(times), len(values))
	}
	return Series{Time: times, Values: values}, nil
}

// Len returns the number of time steps.
func (s Series) Len() int { return len(s.Values) }

// CountSeries is the rolling count of extreme years. Truncated lists the time
// labels whose rolling window extended past the end of the input series.
type CountSeries struct {
	Time      []int `json:"time"`
	Counts    []int `json:"counts"`
	Truncated []int `json:"truncated,omitempty"`
}

// Len returns the number of time steps.
func (c CountSeries) Len() int { return len(c.Counts) }

func checkSameTime(a, b []int) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: time axis length %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			return fmt.Errorf("%w: time label %d vs %d at index %d", ErrDimensionMismatch, a[i], b[i], i)
		}
	}
	return nil
}
