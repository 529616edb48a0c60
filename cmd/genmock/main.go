// Command genmock writes a synthetic monthly sea-level-pressure NetCDF file
// for local runs and tests. The field is a zonal pressure profile on a global
// grid with an Azores High whose winter extent grows over the record and
// jumps in a few chosen years.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/slp_monthly.nc -start 1850 -years 150
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/couchcryptid/azores-high-index/internal/adapter/netcdf"
	"github.com/couchcryptid/azores-high-index/internal/domain"
)

const (
	basePressure  = 101325.0 // Pa
	highCenterLon = 332.0    // degrees east
	highCenterLat = 36.0
)

type options struct {
	out      string
	start    int
	years    int
	res      float64
	seed     uint64
	noise    float64
	extremes []int
	names    netcdf.Config
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var opts options
	var extremes string
	flag.StringVar(&opts.out, "out", "", "output NetCDF path")
	flag.IntVar(&opts.start, "start", 1850, "first calendar year")
	flag.IntVar(&opts.years, "years", 150, "number of calendar years")
	flag.Float64Var(&opts.res, "res", 2.5, "grid resolution in degrees")
	flag.Uint64Var(&opts.seed, "seed", 1, "random seed")
	flag.Float64Var(&opts.noise, "noise", 150, "monthly noise standard deviation in Pa")
	flag.StringVar(&extremes, "extremes", "", "comma-separated winter years with an enlarged high")
	flag.StringVar(&opts.names.SLPVar, "slp-var", "PSL", "SLP variable name")
	flag.StringVar(&opts.names.LatVar, "lat-var", "lat", "latitude variable name")
	flag.StringVar(&opts.names.LonVar, "lon-var", "lon", "longitude variable name")
	flag.StringVar(&opts.names.TimeVar, "time-var", "time", "time variable name")
	flag.Parse()

	if opts.out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if opts.years < 2 || opts.res <= 0 || opts.res > 30 {
		return fmt.Errorf("need -years >= 2 and -res in (0, 30]")
	}
	years, err := parseYears(extremes)
	if err != nil {
		return err
	}
	opts.extremes = years

	field := generate(opts)
	if err := os.MkdirAll(filepath.Dir(opts.out), 0o755); err != nil {
		return err
	}
	if err := netcdf.WriteMonthly(opts.out, field, opts.names); err != nil {
		return fmt.Errorf("writing %s: %w", opts.out, err)
	}

	log.Printf("wrote %s: %d months on a %dx%d grid", opts.out, len(field.Months), len(field.Lat), len(field.Lon))
	return nil
}

func parseYears(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var years []int
	for _, part := range strings.Split(s, ",") {
		y, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid -extremes year %q: %w", part, err)
		}
		years = append(years, y)
	}
	return years, nil
}

// generate builds the monthly field. Longitude runs over [0, 360) and
// latitude from north to south, the layout of most model output.
func generate(opts options) domain.MonthlyField {
	lon := axis(0, 360-opts.res, opts.res)
	lat := axis(-90, 90, opts.res)
	for i, j := 0, len(lat)-1; i < j; i, j = i+1, j-1 {
		lat[i], lat[j] = lat[j], lat[i]
	}

	noise := distuv.Normal{Mu: 0, Sigma: opts.noise, Src: rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15)}
	extreme := make(map[int]bool, len(opts.extremes))
	for _, y := range opts.extremes {
		extreme[y] = true
	}

	months := make([]domain.YearMonth, 0, opts.years*12)
	for y := opts.start; y < opts.start+opts.years; y++ {
		for m := time.January; m <= time.December; m++ {
			months = append(months, domain.YearMonth{Year: y, Month: m})
		}
	}

	cells := len(lat) * len(lon)
	values := make([]float64, len(months)*cells)
	for t, ym := range months {
		winter := ym.Month == time.December || ym.Month <= time.February
		seasonYear := ym.Year
		if ym.Month == time.December {
			seasonYear++
		}
		progress := float64(ym.Year-opts.start) / float64(opts.years)

		// The high widens through the record; winters flagged as extreme get
		// a further boost.
		amp, width := 800.0, 12.0+6*progress
		if winter && extreme[seasonYear] {
			amp, width = 1400, width+10
		}

		for i, la := range lat {
			zonal := 600 * math.Cos(3*la*domain.RadPerDeg)
			for j, lo := range lon {
				d2 := sq(lo-highCenterLon) + sq(la-highCenterLat)
				high := amp * math.Exp(-d2/(2*sq(width)))
				values[t*cells+i*len(lon)+j] = basePressure + zonal + high + noise.Rand()
			}
		}
	}

	return domain.MonthlyField{
		Grid:   domain.Grid{Lat: lat, Lon: lon},
		Months: months,
		Values: values,
	}
}

func axis(start, stop, step float64) []float64 {
	n := int(math.Round((stop-start)/step)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func sq(v float64) float64 { return v * v }
