// Command validate checks that a monthly SLP NetCDF file meets the input
// requirements of the AHA computation: regular coordinates, a contiguous
// monthly time axis with enough DJF seasons, plausible pressure values and
// full coverage of the Azores domain.
//
// Usage:
//
//	go run ./cmd/validate -data data/mock/slp_monthly.nc
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/azores-high-index/internal/adapter/netcdf"
	"github.com/couchcryptid/azores-high-index/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type limits struct {
	minPa      float64
	maxPa      float64
	maxMissing float64
}

func main() {
	var cfg netcdf.Config
	var lim limits
	flag.StringVar(&cfg.Path, "data", "", "path to the monthly SLP NetCDF file")
	flag.StringVar(&cfg.SLPVar, "slp-var", "PSL", "SLP variable name")
	flag.StringVar(&cfg.LatVar, "lat-var", "lat", "latitude variable name")
	flag.StringVar(&cfg.LonVar, "lon-var", "lon", "longitude variable name")
	flag.StringVar(&cfg.TimeVar, "time-var", "time", "time variable name")
	flag.Float64Var(&lim.minPa, "min-pa", 85000, "lowest plausible SLP in Pa")
	flag.Float64Var(&lim.maxPa, "max-pa", 110000, "highest plausible SLP in Pa")
	flag.Float64Var(&lim.maxMissing, "max-missing", 0.05, "largest allowed fraction of missing values")
	flag.Parse()

	if cfg.Path == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(cfg, lim))
}

func run(cfg netcdf.Config, lim limits) int {
	fmt.Println("=== AHA Input Validation ===")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	monthly, err := netcdf.NewLoader(cfg, logger).ReadMonthly(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read %s: %v\n", cfg.Path, err)
		return 1
	}

	phases := []*phase{
		validateCoordinates(monthly.Grid),
		validateTimeAxis(monthly.Months),
		validateValues(monthly, lim),
		validateSeasonalInput(monthly, cfg.Path),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Grid: %d lat x %d lon, %d months", len(monthly.Lat), len(monthly.Lon), len(monthly.Months))
	if n := len(monthly.Months); n > 0 {
		first, last := monthly.Months[0], monthly.Months[n-1]
		fmt.Printf(" (%d-%02d to %d-%02d)", first.Year, first.Month, last.Year, last.Month)
	}
	fmt.Println()

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validateCoordinates(g domain.Grid) *phase {
	p := &phase{name: "Regular coordinates"}
	if err := domain.CheckRegular("lat", g.Lat); err != nil {
		p.errorf("%v", err)
	}
	if err := domain.CheckRegular("lon", g.Lon); err != nil {
		p.errorf("%v", err)
	}
	for i, v := range g.Lat {
		if v < -90 || v > 90 {
			p.errorf("lat[%d] = %g outside [-90, 90]", i, v)
		}
	}
	for i, v := range g.Lon {
		if v < -180 || v > 360 {
			p.errorf("lon[%d] = %g outside [-180, 360]", i, v)
		}
	}
	return p
}

func validateTimeAxis(months []domain.YearMonth) *phase {
	p := &phase{name: "Contiguous monthly time axis"}
	if len(months) == 0 {
		p.errorf("time axis is empty")
		return p
	}
	for i := 1; i < len(months); i++ {
		prev, cur := months[i-1], months[i]
		if want := next(prev); cur != want {
			p.errorf("index %d: %d-%02d follows %d-%02d, want %d-%02d",
				i, cur.Year, cur.Month, prev.Year, prev.Month, want.Year, want.Month)
		}
	}
	return p
}

func next(ym domain.YearMonth) domain.YearMonth {
	if ym.Month == time.December {
		return domain.YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return domain.YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

func validateValues(f domain.MonthlyField, lim limits) *phase {
	p := &phase{name: "Plausible SLP values"}
	if len(f.Values) == 0 {
		p.errorf("no values")
		return p
	}

	var missing, outside int
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range f.Values {
		if math.IsNaN(v) {
			missing++
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
		if v < lim.minPa || v > lim.maxPa {
			outside++
		}
	}

	if frac := float64(missing) / float64(len(f.Values)); frac > lim.maxMissing {
		p.errorf("%.2f%% of values missing, limit %.2f%%", 100*frac, 100*lim.maxMissing)
	}
	if outside > 0 {
		p.errorf("%d values outside [%g, %g] Pa (range %g to %g); check units", outside, lim.minPa, lim.maxPa, lo, hi)
	}
	return p
}

func validateSeasonalInput(f domain.MonthlyField, source string) *phase {
	p := &phase{name: "DJF seasons and Azores coverage"}
	ds, err := domain.PrepareDataset(f, source)
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	azores, err := domain.TrimToAzores(ds.SLP)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	if err := domain.CheckRegular("azores lat", azores.Lat); err != nil {
		p.errorf("%v", err)
	}
	cells := azores.Cells()
	for k := range cells {
		empty := true
		for t := range azores.Time {
			if !math.IsNaN(azores.Values[t*cells+k]) {
				empty = false
				break
			}
		}
		if empty {
			i, j := k/len(azores.Lon), k%len(azores.Lon)
			p.errorf("Azores cell (lat %g, lon %g) has no data in any season", azores.Lat[i], azores.Lon[j])
		}
	}
	for t, v := range ds.GlobalMean.Values {
		if math.IsNaN(v) {
			p.errorf("global mean undefined in %d", ds.GlobalMean.Time[t])
		}
	}
	return p
}
