// Package netcdf reads and writes monthly sea-level-pressure grids stored as
// CF-style NetCDF files with (time, lat, lon) dimensions.
package netcdf

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/couchcryptid/azores-high-index/internal/domain"
)

// Config names the file and the variables read from it.
type Config struct {
	Path    string
	SLPVar  string
	LatVar  string
	LonVar  string
	TimeVar string
}

// Loader reads a monthly SLP dataset from a NetCDF file.
type Loader struct {
	cfg    Config
	logger *slog.Logger
}

// NewLoader creates a Loader for the configured file.
func NewLoader(cfg Config, logger *slog.Logger) *Loader {
	return &Loader{cfg: cfg, logger: logger}
}

// Source returns the path of the file the loader reads.
func (l *Loader) Source() string { return l.cfg.Path }

// Load reads the file and reduces it to DJF annual means with longitude in (-180, 180].
func (l *Loader) Load(ctx context.Context) (domain.Dataset, error) {
	monthly, err := l.ReadMonthly(ctx)
	if err != nil {
		return domain.Dataset{}, err
	}
	ds, err := domain.PrepareDataset(monthly, l.cfg.Path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("prepare %s: %w", l.cfg.Path, err)
	}
	return ds, nil
}

// ReadMonthly reads the raw monthly field without any reduction.
func (l *Loader) ReadMonthly(ctx context.Context) (domain.MonthlyField, error) {
	if err := ctx.Err(); err != nil {
		return domain.MonthlyField{}, err
	}

	nc, err := netcdf.Open(l.cfg.Path)
	if err != nil {
		return domain.MonthlyField{}, fmt.Errorf("open %s: %w", l.cfg.Path, err)
	}
	defer nc.Close()

	lat, err := readCoord(nc, l.cfg.LatVar)
	if err != nil {
		return domain.MonthlyField{}, err
	}
	lon, err := readCoord(nc, l.cfg.LonVar)
	if err != nil {
		return domain.MonthlyField{}, err
	}
	months, err := readTime(nc, l.cfg.TimeVar)
	if err != nil {
		return domain.MonthlyField{}, err
	}

	if err := ctx.Err(); err != nil {
		return domain.MonthlyField{}, err
	}

	values, err := l.readData(nc)
	if err != nil {
		return domain.MonthlyField{}, err
	}

	f, err := domain.NewMonthlyField(months, lat, lon, values)
	if err != nil {
		return domain.MonthlyField{}, fmt.Errorf("variable %q: %w", l.cfg.SLPVar, err)
	}

	l.logger.Debug("dataset read",
		"path", l.cfg.Path,
		"variable", l.cfg.SLPVar,
		"months", len(months),
		"lat", len(lat),
		"lon", len(lon),
	)
	return f, nil
}

func (l *Loader) readData(nc api.Group) ([]float64, error) {
	vr, err := nc.GetVariable(l.cfg.SLPVar)
	if err != nil {
		return nil, fmt.Errorf("read variable %q: %w", l.cfg.SLPVar, err)
	}
	want := []string{l.cfg.TimeVar, l.cfg.LatVar, l.cfg.LonVar}
	if !slices.Equal(vr.Dimensions, want) {
		return nil, fmt.Errorf("%w: variable %q has dimensions %v, want %v",
			domain.ErrDimensionMismatch, l.cfg.SLPVar, vr.Dimensions, want)
	}

	values, err := flatten(vr.Values)
	if err != nil {
		return nil, fmt.Errorf("read variable %q: %w", l.cfg.SLPVar, err)
	}
	unpack(values, vr.Attributes)
	return values, nil
}

func readCoord(nc api.Group, name string) ([]float64, error) {
	values, _, err := readCoordVar(nc, name)
	return values, err
}

func readCoordVar(nc api.Group, name string) ([]float64, *api.Variable, error) {
	vr, err := nc.GetVariable(name)
	if err != nil {
		return nil, nil, fmt.Errorf("read coordinate %q: %w", name, err)
	}
	if len(vr.Dimensions) != 1 {
		return nil, nil, fmt.Errorf("%w: coordinate %q has %d dimensions", domain.ErrDimensionMismatch, name, len(vr.Dimensions))
	}
	values, err := flatten(vr.Values)
	if err != nil {
		return nil, nil, fmt.Errorf("read coordinate %q: %w", name, err)
	}
	return values, vr, nil
}

func readTime(nc api.Group, name string) ([]domain.YearMonth, error) {
	raw, vr, err := readCoordVar(nc, name)
	if err != nil {
		return nil, err
	}
	units, _ := attrString(vr.Attributes, "units")
	cal, _ := attrString(vr.Attributes, "calendar")
	months, err := decodeTimes(raw, units, cal)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", name, err)
	}
	return months, nil
}

// unpack applies _FillValue/missing_value masking then scale_factor and add_offset.
func unpack(values []float64, attrs api.AttributeMap) {
	var fills []float64
	for _, key := range []string{"_FillValue", "missing_value"} {
		if v, ok := attrFloat(attrs, key); ok {
			fills = append(fills, v)
		}
	}
	scale, hasScale := attrFloat(attrs, "scale_factor")
	offset, hasOffset := attrFloat(attrs, "add_offset")
	if !hasScale {
		scale = 1
	}
	if !hasOffset {
		offset = 0
	}

	for k, v := range values {
		if isFill(v, fills) {
			values[k] = math.NaN()
			continue
		}
		values[k] = v*scale + offset
	}
}

func isFill(v float64, fills []float64) bool {
	for _, f := range fills {
		if v == f || (math.IsNaN(f) && math.IsNaN(v)) {
			return true
		}
	}
	return false
}
