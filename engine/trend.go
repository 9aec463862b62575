package engine

import (
	"math"
	"time"

	"datalens/domain/analysis"
)

const (
	minTrendSamples    = 3
	volatileThreshold  = 0.2
	stableSlope        = 0.01
	changePointShift   = 0.10 // relative mean shift that flags a change point
	significanceAlpha  = 0.05
	nearPerfectFitEps  = 1e-12
	clampedCorrelation = 0.999999
)

// series is a field's parseable values aligned with their date stamps.
type series struct {
	Values []float64
	Dates  []time.Time
}

// extractSeries pairs each parseable value of a field with the date of the
// row it came from, dropping unparseable cells from both sides.
func extractSeries(ds analysis.Dataset, field string, axis []time.Time) series {
	s := series{
		Values: make([]float64, 0, len(ds)),
		Dates:  make([]time.Time, 0, len(ds)),
	}
	for i, record := range ds {
		raw, ok := record[field]
		if !ok {
			continue
		}
		if v, ok := toFloat(raw); ok {
			s.Values = append(s.Values, v)
			s.Dates = append(s.Dates, axis[i])
		}
	}
	return s
}

// analyzeTrends runs the trend pass over every numeric field. Fields with
// fewer than three parseable values are skipped silently; partial results
// beat no results.
func (e *Engine) analyzeTrends(ds analysis.Dataset, fields []string, axis []time.Time) []analysis.TrendResult {
	results := make([]analysis.TrendResult, 0, len(fields))
	for _, field := range fields {
		s := extractSeries(ds, field, axis)
		if len(s.Values) < minTrendSamples {
			continue
		}
		results = append(results, e.trendOf(field, s))
	}
	return results
}

func (e *Engine) trendOf(field string, s series) analysis.TrendResult {
	n := len(s.Values)
	fit := fitOLS(s.Values)
	fitScore := clamp(fit.RSquared*100, 0, 100)
	volatility := residualVolatility(s.Values, fit)

	direction := classifyTrend(fit.Slope, volatility)
	changePoints := detectChangePoints(s)

	tStat, pValue := e.slopeSignificance(fit.Slope, fit.RSquared, n)

	crit := criticalValue(n)
	ci := analysis.Interval{
		Lower: fit.Slope - crit*fit.SlopeSE,
		Upper: fit.Slope + crit*fit.SlopeSE,
		Level: 0.95,
	}

	return analysis.TrendResult{
		Field:        field,
		Direction:    direction,
		Slope:        fit.Slope,
		Intercept:    fit.Intercept,
		Strength:     math.Abs(fit.Slope),
		FitScore:     fitScore,
		Volatility:   volatility,
		TStatistic:   tStat,
		PValue:       pValue,
		Significant:  pValue < significanceAlpha,
		SlopeCI:      ci,
		ChangePoints: changePoints,
		SampleSize:   n,
	}
}

func classifyTrend(slope, volatility float64) analysis.TrendDirection {
	if volatility > volatileThreshold {
		return analysis.TrendVolatile
	}
	if math.Abs(slope) < stableSlope {
		return analysis.TrendStable
	}
	if slope > 0 {
		return analysis.TrendIncreasing
	}
	return analysis.TrendDecreasing
}

// slopeSignificance derives a t-statistic from the slope and the fit score
// via slope / sqrt((1-c²)/(n-2)), c being R². Near-perfect fits are clamped
// so the statistic stays finite; the p-value still lands at ~0.
func (e *Engine) slopeSignificance(slope, rSquared float64, n int) (tStat, pValue float64) {
	if n <= 2 {
		return 0, 1
	}
	c := clamp(rSquared, 0, clampedCorrelation)
	se := math.Sqrt((1 - c*c) / float64(n-2))
	if se < nearPerfectFitEps {
		se = nearPerfectFitEps
	}
	tStat = slope / se
	pValue = e.dist.TwoTailedT(tStat, n-2)
	return tStat, pValue
}

// detectChangePoints slides a window of max(3, n/10) across the series and
// flags indices where the mean after the index shifts more than 10%
// relative to the mean before it.
func detectChangePoints(s series) []analysis.ChangePoint {
	n := len(s.Values)
	window := n / 10
	if window < 3 {
		window = 3
	}
	if n < 2*window {
		return nil
	}

	var points []analysis.ChangePoint
	for i := window; i <= n-window; i++ {
		before := meanOf(s.Values[i-window : i])
		after := meanOf(s.Values[i : i+window])
		if before == 0 {
			continue
		}
		shift := after - before
		if math.Abs(shift)/math.Abs(before) <= changePointShift {
			continue
		}
		direction := "up"
		if shift < 0 {
			direction = "down"
		}
		points = append(points, analysis.ChangePoint{
			Index:     i,
			Date:      s.Dates[i],
			Magnitude: math.Abs(shift),
			Direction: direction,
		})
	}
	return points
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
