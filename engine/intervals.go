package engine

import (
	"math"

	"github.com/montanaflynn/stats"

	"datalens/domain/analysis"
)

// analyzeMeanIntervals computes a 95% confidence interval on each field's
// mean: mean ± critical × (s/√n), with the same rough two-point critical
// value the other passes use.
func (e *Engine) analyzeMeanIntervals(ds analysis.Dataset, fields []string) []analysis.MeanInterval {
	results := make([]analysis.MeanInterval, 0, len(fields))
	for _, field := range fields {
		values := numericValues(ds, field)
		if len(values) < minTrendSamples {
			continue
		}

		mean, _ := stats.Mean(stats.Float64Data(values))
		sd, _ := stats.StandardDeviation(stats.Float64Data(values))
		margin := criticalValue(len(values)) * sd / math.Sqrt(float64(len(values)))

		results = append(results, analysis.MeanInterval{
			Field: field,
			Mean:  mean,
			CI: analysis.Interval{
				Lower: mean - margin,
				Upper: mean + margin,
				Level: 0.95,
			},
			SampleSize: len(values),
		})
	}
	return results
}
