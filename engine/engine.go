// Package engine is the in-memory statistical analysis core: it takes a
// rectangular dataset and derives trends, correlations, forecasts,
// anomalies, correlation-ranked candidate causes, data quality scores,
// hypothesis tests, and a synthesized executive summary.
//
// Analyze is a pure function of its input: results are built fresh per
// call, nothing is mutated afterwards, and no state is shared between
// calls, so one Engine may serve concurrent analyses of different
// datasets.
package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"datalens/domain/analysis"
	"datalens/domain/core"
)

// Config holds the engine's tunables. Start from DefaultConfig and
// override: the score fields are taken literally, zero included, so a
// zero-valued Config disables them rather than picking up defaults.
type Config struct {
	StatMode          StatMode
	ForecastHorizon   int
	ForecastWorkers   int
	AccuracyScore     float64 // fixed quality dimension
	TimelinessScore   float64 // fixed quality dimension
	SummaryConfidence float64 // fixed executive-summary confidence, 0-1
	Clock             core.Clock
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		StatMode:          ModeApproximate,
		ForecastHorizon:   12,
		ForecastWorkers:   4,
		AccuracyScore:     85,
		TimelinessScore:   90,
		SummaryConfidence: 0.85,
		Clock:             core.SystemClock,
	}
}

// Engine runs the analysis passes.
type Engine struct {
	cfg  Config
	dist *Distributions
}

// New creates an engine. Structural fields (mode, horizon, workers,
// clock) fall back to defaults when unset; the placeholder scores are
// honored as given — an explicit zero stays zero.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.StatMode == "" {
		cfg.StatMode = def.StatMode
	}
	if cfg.ForecastHorizon <= 0 {
		cfg.ForecastHorizon = def.ForecastHorizon
	}
	if cfg.ForecastWorkers <= 0 {
		cfg.ForecastWorkers = def.ForecastWorkers
	}
	if cfg.Clock == nil {
		cfg.Clock = def.Clock
	}
	return &Engine{cfg: cfg, dist: NewDistributions(cfg.StatMode)}
}

// Analyze classifies the dataset's fields, runs every analysis pass
// concurrently over the immutable input, and synthesizes the combined
// result. Passes are read-only and independent, so they need no locking;
// each writes only its own slot of the result before the join.
//
// An empty dataset (or one with no numeric fields) returns a result with
// empty collections, never an error: partial output always beats failure.
func (e *Engine) Analyze(ctx context.Context, ds analysis.Dataset) (*analysis.Result, error) {
	now := e.cfg.Clock()

	res := analysis.NewResult()
	res.RowCount = len(ds)
	res.GeneratedAt = now

	fields, dateField := ClassifyFields(ds)
	res.DateField = dateField
	if len(fields) > 0 {
		res.NumericFields = fields
	}

	res.Quality = e.assessQuality(ds, fields)

	if len(ds) == 0 || len(fields) == 0 {
		e.synthesize(res, now)
		return res, nil
	}

	axis := dateAxis(ds, dateField, now)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Trends = e.analyzeTrends(ds, fields, axis)
		// Forecasts need the trend pass's volatility and fit scores, so
		// the two share a goroutine instead of recomputing.
		res.Forecasts = e.analyzeForecasts(gctx, ds, fields, res.Trends, axis)
		return nil
	})
	g.Go(func() error {
		res.Correlations = e.analyzeCorrelations(ds, fields)
		return nil
	})
	g.Go(func() error {
		res.Anomalies = e.analyzeAnomalies(ds, fields, axis)
		return nil
	})
	g.Go(func() error {
		res.RootCauses = e.analyzeRootCauses(ds, fields, axis)
		return nil
	})
	g.Go(func() error {
		res.MeanTests = e.analyzeMeanTests(ds, fields)
		return nil
	})
	g.Go(func() error {
		res.NormalityTests = e.analyzeNormality(ds, fields)
		return nil
	})
	g.Go(func() error {
		res.MeanIntervals = e.analyzeMeanIntervals(ds, fields)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.synthesize(res, now)
	return res, nil
}

// AnalyzeSeries analyzes a single named series without building records
// first. Used by the real-time variant, which holds per-metric buffers
// rather than row-oriented datasets.
func (e *Engine) AnalyzeSeries(ctx context.Context, name string, values []float64) (*analysis.Result, error) {
	ds := make(analysis.Dataset, len(values))
	for i, v := range values {
		ds[i] = analysis.DataPoint{name: v}
	}
	return e.Analyze(ctx, ds)
}
