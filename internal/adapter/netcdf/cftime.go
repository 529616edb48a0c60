package netcdf

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/azores-high-index/internal/domain"
)

const secondsPerDay = 86400

type calendar int

const (
	calStandard calendar = iota
	calNoLeap
	calAllLeap
)

var (
	noLeapDays  = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	allLeapDays = [12]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
)

// parseCalendar maps a CF calendar attribute to a supported calendar.
// Mixed Julian/Gregorian "standard" dates are treated as proleptic Gregorian.
func parseCalendar(s string) (calendar, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "gregorian", "proleptic_gregorian":
		return calStandard, nil
	case "noleap", "365_day":
		return calNoLeap, nil
	case "all_leap", "366_day":
		return calAllLeap, nil
	default:
		return 0, fmt.Errorf("unsupported calendar %q", s)
	}
}

// civil is a calendar-agnostic date and time of day.
type civil struct {
	year, month, day int
	seconds          float64
}

type timeUnits struct {
	months bool
	// seconds per unit when months is false
	scale float64
	epoch civil
}

// parseTimeUnits parses CF units such as "days since 1850-01-01 00:00:00".
func parseTimeUnits(s string) (timeUnits, error) {
	unit, ref, ok := strings.Cut(strings.TrimSpace(s), " since ")
	if !ok {
		return timeUnits{}, fmt.Errorf("time units %q: missing \"since\"", s)
	}

	var u timeUnits
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "seconds", "second", "secs", "sec", "s":
		u.scale = 1
	case "minutes", "minute", "mins", "min":
		u.scale = 60
	case "hours", "hour", "hrs", "hr", "h":
		u.scale = 3600
	case "days", "day", "d":
		u.scale = secondsPerDay
	case "months", "month":
		u.months = true
	default:
		return timeUnits{}, fmt.Errorf("time units %q: unsupported unit %q", s, unit)
	}

	epoch, err := parseCivil(ref)
	if err != nil {
		return timeUnits{}, fmt.Errorf("time units %q: %w", s, err)
	}
	u.epoch = epoch
	return u, nil
}

// parseCivil accepts "YYYY-M[-D][ HH:MM[:SS[.f]]]" with an optional "T" separator
// and trailing "Z".
func parseCivil(s string) (civil, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	datePart, clockPart, _ := strings.Cut(strings.Replace(s, "T", " ", 1), " ")

	fields := strings.Split(datePart, "-")
	if len(fields) < 2 || len(fields) > 3 {
		return civil{}, fmt.Errorf("malformed reference date %q", s)
	}
	c := civil{day: 1}
	var err error
	if c.year, err = strconv.Atoi(fields[0]); err != nil {
		return civil{}, fmt.Errorf("reference year %q: %w", fields[0], err)
	}
	if c.month, err = strconv.Atoi(fields[1]); err != nil || c.month < 1 || c.month > 12 {
		return civil{}, fmt.Errorf("malformed reference month %q", fields[1])
	}
	if len(fields) == 3 {
		if c.day, err = strconv.Atoi(fields[2]); err != nil || c.day < 1 || c.day > 31 {
			return civil{}, fmt.Errorf("malformed reference day %q", fields[2])
		}
	}

	clockPart = strings.TrimSpace(clockPart)
	if clockPart == "" {
		return c, nil
	}
	hms := strings.Split(clockPart, ":")
	if len(hms) > 3 {
		return civil{}, fmt.Errorf("malformed reference time %q", clockPart)
	}
	mult := []float64{3600, 60, 1}
	for i, part := range hms {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return civil{}, fmt.Errorf("malformed reference time %q", clockPart)
		}
		c.seconds += v * mult[i]
	}
	return c, nil
}

// decodeTimes converts raw time coordinate values to year/month labels.
func decodeTimes(values []float64, units, calName string) ([]domain.YearMonth, error) {
	u, err := parseTimeUnits(units)
	if err != nil {
		return nil, err
	}
	cal, err := parseCalendar(calName)
	if err != nil {
		return nil, err
	}

	out := make([]domain.YearMonth, len(values))
	for k, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New("time coordinate contains non-finite values")
		}
		if u.months {
			out[k] = addMonths(u.epoch, int(math.Floor(v)))
			continue
		}
		out[k] = addSeconds(u.epoch, v*u.scale, cal)
	}
	return out, nil
}

func addMonths(epoch civil, n int) domain.YearMonth {
	idx := epoch.year*12 + epoch.month - 1 + n
	year := floorDiv(idx, 12)
	return domain.YearMonth{Year: year, Month: time.Month(idx-12*year) + 1}
}

func addSeconds(epoch civil, secs float64, cal calendar) domain.YearMonth {
	total := epoch.seconds + secs
	days := int(math.Floor(total / secondsPerDay))

	if cal == calStandard {
		base := time.Date(epoch.year, time.Month(epoch.month), epoch.day, 0, 0, 0, 0, time.UTC)
		t := base.AddDate(0, 0, days)
		return domain.YearMonth{Year: t.Year(), Month: t.Month()}
	}

	lengths := noLeapDays
	if cal == calAllLeap {
		lengths = allLeapDays
	}
	yearLen := 0
	for _, n := range lengths {
		yearLen += n
	}

	n := epoch.year*yearLen + epoch.day - 1 + days
	for m := 0; m < epoch.month-1; m++ {
		n += lengths[m]
	}
	year := floorDiv(n, yearLen)
	doy := n - year*yearLen
	month := 0
	for doy >= lengths[month] {
		doy -= lengths[month]
		month++
	}
	return domain.YearMonth{Year: year, Month: time.Month(month + 1)}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
