package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/azores-high-index/internal/domain"
	"github.com/couchcryptid/azores-high-index/internal/observability"
)

// Analyzer computes reports from the most recently loaded dataset.
// It implements domain.Calculator and is safe for concurrent use.
type Analyzer struct {
	mu      sync.RWMutex
	ds      *domain.Dataset
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAnalyzer creates an Analyzer with no dataset.
func NewAnalyzer(logger *slog.Logger, metrics *observability.Metrics) *Analyzer {
	return &Analyzer{logger: logger, metrics: metrics}
}

// SetDataset replaces the dataset used by subsequent computations.
func (a *Analyzer) SetDataset(ds domain.Dataset) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ds = &ds
}

// Compute builds a report for p. It returns domain.ErrNotReady until a dataset is set.
func (a *Analyzer) Compute(ctx context.Context, p domain.Params) (domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return domain.Report{}, err
	}
	a.mu.RLock()
	ds := a.ds
	a.mu.RUnlock()
	if ds == nil {
		return domain.Report{}, domain.ErrNotReady
	}

	start := time.Now()
	a.metrics.RunsTotal.Inc()
	r, err := domain.BuildReport(*ds, p)
	if err != nil {
		a.metrics.RunErrors.Inc()
		return domain.Report{}, err
	}
	a.metrics.RunDuration.Observe(time.Since(start).Seconds())

	a.logger.Debug("report computed",
		"run_id", r.RunID,
		"norm", p.Norm.String(),
		"cutoff", p.CutoffPercentile,
		"window", p.Window,
		"years", r.AHA.Len(),
	)
	return r, nil
}
