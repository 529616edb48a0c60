package netcdf

import (
	"fmt"
	"math"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"

	"github.com/couchcryptid/azores-high-index/internal/domain"
)

// fillValue marks missing cells in written files.
const fillValue float32 = 1e20

var timeEpoch = time.Date(1850, time.January, 1, 0, 0, 0, 0, time.UTC)

// TimeUnits is the units attribute written on the time coordinate.
const TimeUnits = "days since 1850-01-01 00:00:00"

// WriteMonthly writes f as a classic NetCDF file. Each month is stamped at the
// 15th so readers on any supported calendar decode the same labels. NaN
// values are stored as _FillValue.
func WriteMonthly(path string, f domain.MonthlyField, names Config) error {
	nlat, nlon := len(f.Lat), len(f.Lon)
	if len(f.Values) != len(f.Months)*nlat*nlon {
		return fmt.Errorf("%w: %d values for %d months on a %dx%d grid",
			domain.ErrDimensionMismatch, len(f.Values), len(f.Months), nlat, nlon)
	}

	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	days := make([]float64, len(f.Months))
	for k, ym := range f.Months {
		t := time.Date(ym.Year, ym.Month, 15, 0, 0, 0, 0, time.UTC)
		days[k] = float64(t.Unix()-timeEpoch.Unix()) / secondsPerDay
	}

	data := make([][][]float32, len(f.Months))
	for t := range data {
		step := f.Step(t)
		data[t] = make([][]float32, nlat)
		for i := range data[t] {
			row := make([]float32, nlon)
			for j := range row {
				v := step[i*nlon+j]
				if math.IsNaN(v) {
					row[j] = fillValue
					continue
				}
				row[j] = float32(v)
			}
			data[t][i] = row
		}
	}

	vars := []struct {
		name  string
		value api.Variable
		attrs map[string]any
	}{
		{names.TimeVar, api.Variable{Values: days, Dimensions: []string{names.TimeVar}},
			map[string]any{"units": TimeUnits, "calendar": "standard"}},
		{names.LatVar, api.Variable{Values: f.Lat, Dimensions: []string{names.LatVar}},
			map[string]any{"units": "degrees_north"}},
		{names.LonVar, api.Variable{Values: f.Lon, Dimensions: []string{names.LonVar}},
			map[string]any{"units": "degrees_east"}},
		{names.SLPVar, api.Variable{Values: data, Dimensions: []string{names.TimeVar, names.LatVar, names.LonVar}},
			map[string]any{"units": "Pa", "_FillValue": fillValue}},
	}

	for _, v := range vars {
		keys := make([]string, 0, len(v.attrs))
		for _, k := range []string{"units", "calendar", "_FillValue"} {
			if _, ok := v.attrs[k]; ok {
				keys = append(keys, k)
			}
		}
		attrs, err := util.NewOrderedMap(keys, v.attrs)
		if err != nil {
			cw.Close()
			return fmt.Errorf("attributes for %q: %w", v.name, err)
		}
		v.value.Attributes = attrs
		if err := cw.AddVar(v.name, v.value); err != nil {
			cw.Close()
			return fmt.Errorf("write variable %q: %w", v.name, err)
		}
	}

	if err := cw.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
