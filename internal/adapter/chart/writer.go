// Package chart renders index reports as PNG charts.
package chart

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/azores-high-index/internal/domain"
)

// Output file names under the writer's directory.
const (
	IndexFile    = "aha_index.png"
	ExtremesFile = "aha_extremes.png"
	MapFile      = "aha_peak_anomaly.png"
)

// colorbarSteps is the number of levels on each side of zero in the anomaly map.
const colorbarSteps = 5

// Writer renders the latest report as PNG files.
// It implements pipeline.Publisher.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a writer targeting dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "chart" }

// Publish renders the index and rolling-count charts, plus the peak anomaly
// map when the report carries one.
func (w *Writer) Publish(ctx context.Context, report domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := indexChart(report, filepath.Join(w.dir, IndexFile)); err != nil {
		return fmt.Errorf("index chart: %w", err)
	}
	if err := extremesChart(report, filepath.Join(w.dir, ExtremesFile)); err != nil {
		return fmt.Errorf("extremes chart: %w", err)
	}
	if report.Peak != nil {
		if err := anomalyMap(*report.Peak, filepath.Join(w.dir, MapFile)); err != nil {
			return fmt.Errorf("anomaly map: %w", err)
		}
	}
	w.logger.Debug("charts rendered", "dir", w.dir, "map", report.Peak != nil)
	return nil
}

func indexChart(r domain.Report, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Azores High Area, DJF (%s)", r.Params.Norm)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Area (km²)"
	p.Add(plotter.NewGrid())

	pts, extremes := plotter.XYs{}, plotter.XYs{}
	for k, year := range r.AHA.Time {
		v := r.AHA.Values[k]
		if math.IsNaN(v) {
			continue
		}
		pt := plotter.XY{X: float64(year), Y: v}
		pts = append(pts, pt)
		if v > r.Threshold {
			extremes = append(extremes, pt)
		}
	}
	if len(pts) == 0 {
		return fmt.Errorf("%w: no finite index values", domain.ErrPreconditionViolation)
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	p.Add(line)
	p.Legend.Add("AHA", line)

	threshold := r.Threshold
	cutoff := plotter.NewFunction(func(float64) float64 { return threshold })
	cutoff.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	cutoff.Color = color.Gray{Y: 96}
	p.Add(cutoff)
	p.Legend.Add(fmt.Sprintf("%gth percentile", r.Params.CutoffPercentile), cutoff)

	if len(extremes) > 0 {
		sc, err := plotter.NewScatter(extremes)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
		sc.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(sc)
		p.Legend.Add("extreme year", sc)
	}
	p.Legend.Top = true

	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}

func extremesChart(r domain.Report, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Extreme AHA years per %d-year window", r.Params.Window)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Count"
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, r.Extremes.Len())
	for k, year := range r.Extremes.Time {
		pts[k] = plotter.XY{X: float64(year), Y: float64(r.Extremes.Counts[k])}
	}
	if len(pts) > 0 {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.StepStyle = plotter.MidStep
		p.Add(line)
	}

	return p.Save(10*vg.Inch, 3*vg.Inch, path)
}

// snapshotGrid adapts a Snapshot to plotter.GridXYZ with ascending axes.
type snapshotGrid struct {
	s             domain.Snapshot
	latDescending bool
	lonDescending bool
}

func newSnapshotGrid(s domain.Snapshot) snapshotGrid {
	return snapshotGrid{
		s:             s,
		latDescending: s.Lat[0] > s.Lat[len(s.Lat)-1],
		lonDescending: s.Lon[0] > s.Lon[len(s.Lon)-1],
	}
}

func (g snapshotGrid) Dims() (c, r int) { return len(g.s.Lon), len(g.s.Lat) }

func (g snapshotGrid) Z(c, r int) float64 { return g.s.At(g.row(r), g.col(c)) }

func (g snapshotGrid) X(c int) float64 { return g.s.Lon[g.col(c)] }

func (g snapshotGrid) Y(r int) float64 { return g.s.Lat[g.row(r)] }

func (g snapshotGrid) row(r int) int {
	if g.latDescending {
		return len(g.s.Lat) - 1 - r
	}
	return r
}

func (g snapshotGrid) col(c int) int {
	if g.lonDescending {
		return len(g.s.Lon) - 1 - c
	}
	return c
}

func anomalyMap(s domain.Snapshot, path string) error {
	if len(s.Lat) < 2 || len(s.Lon) < 2 {
		return fmt.Errorf("%w: anomaly map needs a 2x2 grid, got %dx%d",
			domain.ErrPreconditionViolation, len(s.Lat), len(s.Lon))
	}

	amp := colorbarAmplitude(s.Values)
	levels := domain.ColorbarLevels(amp, amp/colorbarSteps)

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-amp)
	cm.SetMax(amp)
	pal := cm.Palette(len(levels) - 1)

	h := plotter.NewHeatMap(newSnapshotGrid(s), pal)
	h.Min, h.Max = -amp, amp
	colors := pal.Colors()
	h.Underflow, h.Overflow = colors[0], colors[len(colors)-1]
	h.NaN = color.Transparent

	p := plot.New()
	p.Title.Text = fmt.Sprintf("DJF SLP anomaly %d (%s, ±%g)", s.Year, s.Region, amp)
	p.X.Label.Text = "Longitude (°E)"
	p.Y.Label.Text = "Latitude (°N)"
	p.Add(h)
	p.X.Tick.Marker = degreeTicks(s.Lon)
	p.Y.Tick.Marker = degreeTicks(s.Lat)

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

// colorbarAmplitude rounds the largest absolute anomaly up to one significant digit.
func colorbarAmplitude(values []float64) float64 {
	maxAbs := 0.0
	for _, v := range values {
		if !math.IsNaN(v) {
			maxAbs = math.Max(maxAbs, math.Abs(v))
		}
	}
	if maxAbs == 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(maxAbs)))
	return math.Ceil(maxAbs/mag) * mag
}

// degreeTicks labels every 10° between the extremes of coords.
func degreeTicks(coords []float64) plot.ConstantTicks {
	lo, hi := coords[0], coords[len(coords)-1]
	if lo > hi {
		lo, hi = hi, lo
	}
	var ticks plot.ConstantTicks
	for d := math.Ceil(lo/10) * 10; d <= hi; d += 10 {
		ticks = append(ticks, plot.Tick{Value: d, Label: fmt.Sprintf("%g", d)})
	}
	return ticks
}
