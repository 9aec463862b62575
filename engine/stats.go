package engine

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"datalens/domain/analysis"
)

// olsFit is an ordinary least squares fit of value against row index.
type olsFit struct {
	Slope     float64
	Intercept float64
	RSquared  float64 // 0 when total variance is 0
	SlopeSE   float64 // standard error of the slope, 0 for perfect fits
	N         int
}

// fitOLS regresses values on their indices 0..n-1. A flat series yields
// slope 0 and RSquared 0: with no variance to explain, the fit explains
// none of it by convention.
func fitOLS(values []float64) olsFit {
	n := len(values)
	fit := olsFit{N: n}
	if n < 2 {
		if n == 1 {
			fit.Intercept = values[0]
		}
		return fit
	}

	fn := float64(n)
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		fit.Intercept = sumY / fn
		return fit
	}

	fit.Slope = (fn*sumXY - sumX*sumY) / denom
	fit.Intercept = (sumY - fit.Slope*sumX) / fn

	meanY := sumY / fn
	var ssTot, ssRes float64
	for i, y := range values {
		pred := fit.Intercept + fit.Slope*float64(i)
		ssTot += (y - meanY) * (y - meanY)
		ssRes += (y - pred) * (y - pred)
	}

	if ssTot > 0 {
		fit.RSquared = clamp(1-ssRes/ssTot, 0, 1)
	}
	if n > 2 {
		meanX := sumX / fn
		var sxx float64
		for i := range values {
			dx := float64(i) - meanX
			sxx += dx * dx
		}
		if sxx > 0 {
			fit.SlopeSE = math.Sqrt((ssRes / float64(n-2)) / sxx)
		}
	}
	return fit
}

// pearson computes the Pearson correlation via the sum formula. A zero
// denominator (constant series) is coerced to 0 rather than NaN.
func pearson(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0
	}

	fn := float64(n)
	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
		sumYY += y[i] * y[i]
	}

	denom := math.Sqrt((fn*sumXX - sumX*sumX) * (fn*sumYY - sumY*sumY))
	if denom == 0 {
		return 0
	}
	r := (fn*sumXY - sumX*sumY) / denom
	return clamp(r, -1, 1)
}

// residualVolatility is the coefficient of variation of the residuals
// around the fitted trend line: the spread that the trend itself does not
// account for. A noiseless ramp scores 0 even though its raw values vary.
// Zero mean coerces to 0 instead of dividing.
func residualVolatility(values []float64, fit olsFit) float64 {
	mean, err := stats.Mean(stats.Float64Data(values))
	if err != nil || mean == 0 {
		return 0
	}
	residuals := make([]float64, len(values))
	for i, v := range values {
		residuals[i] = v - (fit.Intercept + fit.Slope*float64(i))
	}
	sd, err := stats.StandardDeviationPopulation(stats.Float64Data(residuals))
	if err != nil {
		return 0
	}
	return math.Abs(sd / mean)
}

// autocorrelation at the given lag, normalized by the series variance.
func autocorrelation(values []float64, lag int) float64 {
	n := len(values)
	if lag <= 0 || lag >= n {
		return 0
	}
	mean, err := stats.Mean(stats.Float64Data(values))
	if err != nil {
		return 0
	}
	var num, den float64
	for i := 0; i < n; i++ {
		d := values[i] - mean
		den += d * d
	}
	if den == 0 {
		return 0
	}
	for i := 0; i < n-lag; i++ {
		num += (values[i] - mean) * (values[i+lag] - mean)
	}
	return num / den
}

// exponentialSmoothing returns the final smoothed level of the series.
func exponentialSmoothing(values []float64, alpha float64) float64 {
	if len(values) == 0 {
		return 0
	}
	level := values[0]
	for _, v := range values[1:] {
		level = alpha*v + (1-alpha)*level
	}
	return level
}

// dateAxis builds one timestamp per row. When a date field exists its
// values are used (falling back to the synthetic axis on parse failure);
// otherwise rows are day-spaced ending at "now" so the newest row is the
// most recent date.
func dateAxis(ds analysis.Dataset, dateField string, now time.Time) []time.Time {
	n := len(ds)
	axis := make([]time.Time, n)
	for i := range axis {
		axis[i] = now.AddDate(0, 0, -(n - 1 - i))
	}
	if dateField == "" {
		return axis
	}
	for i, record := range ds {
		switch v := record[dateField].(type) {
		case time.Time:
			axis[i] = v
		case string:
			if t, ok := parseDate(v); ok {
				axis[i] = t
			}
		}
	}
	return axis
}
