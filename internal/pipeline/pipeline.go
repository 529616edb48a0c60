package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/azores-high-index/internal/domain"
	"github.com/couchcryptid/azores-high-index/internal/observability"
)

const (
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second

	loadOp = "load"
)

// DatasetLoader reads and prepares the seasonal SLP dataset.
type DatasetLoader interface {
	Load(ctx context.Context) (domain.Dataset, error)
}

// Publisher delivers a finished report to one output sink.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, report domain.Report) error
}

// Options tunes a pipeline run. Zero values select the defaults.
type Options struct {
	Params         domain.Params
	Retries        int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Pipeline orchestrates the load-analyze-publish run.
type Pipeline struct {
	loader     DatasetLoader
	analyzer   *Analyzer
	publishers []Publisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	opts       Options
	ready      atomic.Bool
	latest     atomic.Pointer[domain.Report]
}

// New creates a Pipeline with the given stages and observability.
func New(l DatasetLoader, a *Analyzer, publishers []Publisher, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.Params == (domain.Params{}) {
		opts.Params = domain.DefaultParams()
	}
	opts.Retries = max(opts.Retries, 1)
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = defaultInitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	return &Pipeline{
		loader:     l,
		analyzer:   a,
		publishers: publishers,
		logger:     logger,
		metrics:    metrics,
		opts:       opts,
	}
}

// CheckReadiness returns nil once a report has been computed, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no report has been computed yet")
	}
	return nil
}

// Latest returns the most recent scheduled report.
func (p *Pipeline) Latest() (domain.Report, bool) {
	r := p.latest.Load()
	if r == nil {
		return domain.Report{}, false
	}
	return *r, true
}

// Run loads the dataset, computes the report for the configured parameters
// and publishes it to every sink concurrently. A dataset that cannot be loaded
// or analyzed fails the run; sink failures are retried with exponential backoff
// and reported together once every sink has finished.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"norm", p.opts.Params.Norm.String(),
		"cutoff", p.opts.Params.CutoffPercentile,
		"window", p.opts.Params.Window,
		"sinks", len(p.publishers),
	)
	p.metrics.PipelineUp.Set(1)
	defer p.metrics.PipelineUp.Set(0)

	start := time.Now()
	var ds domain.Dataset
	err := p.retry(ctx, loadOp, func(ctx context.Context) error {
		var err error
		ds, err = p.loader.Load(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	p.metrics.LoadDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("dataset loaded",
		"source", ds.Source,
		"years", len(ds.SLP.Time),
		"lat", len(ds.SLP.Lat),
		"lon", len(ds.SLP.Lon),
	)

	p.analyzer.SetDataset(ds)
	report, err := p.analyzer.Compute(ctx, p.opts.Params)
	if err != nil {
		return fmt.Errorf("compute report: %w", err)
	}
	p.latest.Store(&report)
	p.ready.Store(true)
	p.recordReport(report)

	if err := p.publish(ctx, report); err != nil {
		return err
	}
	p.logger.Info("pipeline finished", "run_id", report.RunID, "duration", time.Since(start))
	return nil
}

func (p *Pipeline) publish(ctx context.Context, report domain.Report) error {
	errs := make([]error, len(p.publishers))
	var g errgroup.Group
	for i, pub := range p.publishers {
		g.Go(func() error {
			start := time.Now()
			err := p.retry(ctx, pub.Name(), func(ctx context.Context) error {
				return pub.Publish(ctx, report)
			})
			if err != nil {
				errs[i] = fmt.Errorf("publish to %s: %w", pub.Name(), err)
				return nil
			}
			p.metrics.PublishDuration.WithLabelValues(pub.Name()).Observe(time.Since(start).Seconds())
			p.logger.Info("report published", "sink", pub.Name(), "run_id", report.RunID)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// retry runs op up to opts.Retries times, sleeping with exponential backoff
// between attempts. Failures other than loading are counted against the sink
// called name.
func (p *Pipeline) retry(ctx context.Context, name string, op func(context.Context) error) error {
	backoff := p.opts.InitialBackoff
	var err error
	for attempt := 1; attempt <= p.opts.Retries; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if name != loadOp {
			p.metrics.PublishErrors.WithLabelValues(name).Inc()
		}
		if !retryable(err) {
			return err
		}
		p.logger.Warn("attempt failed", "op", name, "attempt", attempt, "of", p.opts.Retries, "error", err)
		if attempt == p.opts.Retries {
			break
		}
		if !sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, p.opts.MaxBackoff)
	}
	return err
}

// retryable reports whether err could clear on a later attempt. Input that
// breaks the algorithm's requirements will fail the same way every time.
func retryable(err error) bool {
	return !errors.Is(err, domain.ErrInvalidArgument) &&
		!errors.Is(err, domain.ErrDimensionMismatch) &&
		!errors.Is(err, domain.ErrPreconditionViolation)
}

func (p *Pipeline) recordReport(r domain.Report) {
	p.metrics.LastAHAMeanKm2.Set(r.Summary.Mean)
	if len(r.Extremes.Counts) > 0 {
		p.metrics.LastExtremeYears.Set(float64(slices.Max(r.Extremes.Counts)))
	}
	p.metrics.LastRunTimestamp.Set(float64(r.ComputedAt.Unix()))
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
