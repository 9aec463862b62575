package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"datalens/domain/analysis"
)

const (
	minForecastSamples = 5
	smoothingAlpha     = 0.3

	shortSeriesLimit  = 20
	longSeriesLimit   = 100
	lowVolatility     = 0.1
	strongFitScore    = 70
	seasonalAutocorr  = 0.5
	linearConfFloor   = 20
	smoothConfStart   = 85
	smoothConfFloor   = 15
	linearConfDecay   = 2
	smoothConfDecay   = 3
	minBacktestPoints = 3
	fallbackAccuracy  = 75
)

var seasonalLags = []int{7, 12, 24}

// analyzeForecasts projects every numeric field with at least five values
// forward by the configured horizon. Model fits run concurrently but
// bounded, one permit per field.
func (e *Engine) analyzeForecasts(ctx context.Context, ds analysis.Dataset, fields []string, trends []analysis.TrendResult, axis []time.Time) []analysis.ForecastResult {
	trendByField := make(map[string]analysis.TrendResult, len(trends))
	for _, t := range trends {
		trendByField[t.Field] = t
	}

	sem := semaphore.NewWeighted(int64(e.cfg.ForecastWorkers))
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []analysis.ForecastResult
	)

	for _, field := range fields {
		s := extractSeries(ds, field, axis)
		if len(s.Values) < minForecastSamples {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(field string, s series) {
			defer wg.Done()
			defer sem.Release(1)
			result := e.forecastField(field, s, trendByField[field])
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(field, s)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Field < results[j].Field })
	return results
}

func (e *Engine) forecastField(field string, s series, trend analysis.TrendResult) analysis.ForecastResult {
	model, basis := selectModel(s.Values, trend)

	lastDate := s.Dates[len(s.Dates)-1]
	var points []analysis.ForecastPoint
	switch model {
	case analysis.ModelLinear:
		points = e.linearProjection(s.Values, trend.FitScore, lastDate)
	default:
		points = e.smoothingProjection(s.Values, lastDate)
	}

	return analysis.ForecastResult{
		Field:    field,
		Model:    model,
		Basis:    basis,
		Points:   points,
		Accuracy: backtestAccuracy(s.Values, model, trend.FitScore),
		Trend:    trend.Direction,
	}
}

// selectModel is the fixed dispatch heuristic. Short or cleanly-trending
// series extrapolate the regression line; long volatile or seasonal series
// get exponential smoothing. The names are honest: there is no neural
// network behind any branch.
func selectModel(values []float64, trend analysis.TrendResult) (analysis.ForecastModel, analysis.ForecastBasis) {
	n := len(values)
	switch {
	case n < shortSeriesLimit:
		return analysis.ModelLinear, analysis.BasisShortSeries
	case trend.Volatility < lowVolatility && trend.FitScore > strongFitScore:
		return analysis.ModelLinear, analysis.BasisStableTrend
	case n > longSeriesLimit && trend.Volatility > volatileThreshold:
		return analysis.ModelSmoothing, analysis.BasisLongVolatile
	case isSeasonal(values):
		return analysis.ModelSmoothing, analysis.BasisSeasonal
	default:
		return analysis.ModelSmoothing, analysis.BasisDefault
	}
}

func isSeasonal(values []float64) bool {
	for _, lag := range seasonalLags {
		if lag >= len(values)/2 {
			continue
		}
		if autocorrelation(values, lag) > seasonalAutocorr {
			return true
		}
	}
	return false
}

// linearProjection extrapolates the regression line. Per-point confidence
// starts at the trend fit score and decays 2 points per step.
func (e *Engine) linearProjection(values []float64, fitScore float64, lastDate time.Time) []analysis.ForecastPoint {
	fit := fitOLS(values)
	n := len(values)
	points := make([]analysis.ForecastPoint, 0, e.cfg.ForecastHorizon)
	for step := 1; step <= e.cfg.ForecastHorizon; step++ {
		conf := fitScore - float64(step*linearConfDecay)
		points = append(points, analysis.ForecastPoint{
			Offset:     step,
			Date:       lastDate.AddDate(0, 0, step),
			Value:      fit.Intercept + fit.Slope*float64(n-1+step),
			Confidence: clamp(conf, linearConfFloor, 100),
		})
	}
	return points
}

// smoothingProjection holds the exponentially smoothed level flat across
// the horizon. Confidence decays from 85 by 3 points per step.
func (e *Engine) smoothingProjection(values []float64, lastDate time.Time) []analysis.ForecastPoint {
	level := exponentialSmoothing(values, smoothingAlpha)
	points := make([]analysis.ForecastPoint, 0, e.cfg.ForecastHorizon)
	for step := 1; step <= e.cfg.ForecastHorizon; step++ {
		conf := float64(smoothConfStart - step*smoothConfDecay)
		points = append(points, analysis.ForecastPoint{
			Offset:     step,
			Date:       lastDate.AddDate(0, 0, step),
			Value:      level,
			Confidence: clamp(conf, smoothConfFloor, 100),
		})
	}
	return points
}

// backtestAccuracy holds out the last 20% of points, refits on the rest,
// and scores the holdout by mean absolute percentage error. Holdouts under
// three points are too small to trust; those get the fallback score.
func backtestAccuracy(values []float64, model analysis.ForecastModel, fitScore float64) float64 {
	holdout := len(values) / 5
	if holdout < minBacktestPoints {
		return fallbackAccuracy
	}

	train := values[:len(values)-holdout]
	actual := values[len(values)-holdout:]

	predicted := make([]float64, holdout)
	switch model {
	case analysis.ModelLinear:
		fit := fitOLS(train)
		for i := range predicted {
			predicted[i] = fit.Intercept + fit.Slope*float64(len(train)+i)
		}
	default:
		level := exponentialSmoothing(train, smoothingAlpha)
		for i := range predicted {
			predicted[i] = level
		}
	}

	var sumPct float64
	counted := 0
	for i, a := range actual {
		if a == 0 {
			continue
		}
		sumPct += absFloat(predicted[i]-a) / absFloat(a)
		counted++
	}
	if counted == 0 {
		return fallbackAccuracy
	}
	mape := sumPct / float64(counted)
	return clamp((1-mape)*100, 0, 100)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
