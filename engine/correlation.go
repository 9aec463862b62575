package engine

import (
	"math"

	"datalens/domain/analysis"
)

const (
	minCorrelationSamples = 3
	strongCorrelation     = 0.7
	moderateCorrelation   = 0.3
	// Pairs weaker than this are computed but discarded. Deliberate noise
	// filter: near-zero correlations add nothing but clutter downstream.
	correlationNoiseFloor = 0.1
)

// analyzeCorrelations runs Pearson correlation over every unordered pair of
// numeric fields. Pairs with mismatched or too-short value vectors are
// skipped; only pairs above the noise floor are retained.
func (e *Engine) analyzeCorrelations(ds analysis.Dataset, fields []string) []analysis.CorrelationResult {
	vectors := make(map[string][]float64, len(fields))
	for _, field := range fields {
		vectors[field] = numericValues(ds, field)
	}

	results := make([]analysis.CorrelationResult, 0)
	for i := 0; i < len(fields); i++ {
		for j := i + 1; j < len(fields); j++ {
			x, y := vectors[fields[i]], vectors[fields[j]]
			if len(x) != len(y) || len(x) < minCorrelationSamples {
				continue
			}
			result := e.correlate(fields[i], fields[j], x, y)
			if math.Abs(result.R) > correlationNoiseFloor {
				results = append(results, result)
			}
		}
	}
	return results
}

func (e *Engine) correlate(fieldA, fieldB string, x, y []float64) analysis.CorrelationResult {
	n := len(x)
	r := pearson(x, y)

	// Clamp for the derived statistics so |r|=1 stays finite
	rc := clamp(r, -clampedCorrelation, clampedCorrelation)
	tStat := rc * math.Sqrt(float64(n-2)/(1-rc*rc))
	pValue := e.dist.TwoTailedT(tStat, n-2)

	sign := "positive"
	if r < 0 {
		sign = "negative"
	}

	return analysis.CorrelationResult{
		FieldA:       fieldA,
		FieldB:       fieldB,
		R:            r,
		Relationship: classifyRelationship(r),
		Sign:         sign,
		TStatistic:   tStat,
		PValue:       pValue,
		DF:           n - 2,
		FisherCI:     fisherInterval(rc, n),
		SampleSize:   n,
	}
}

func classifyRelationship(r float64) analysis.RelationshipStrength {
	abs := math.Abs(r)
	switch {
	case abs >= strongCorrelation:
		return analysis.RelationshipStrong
	case abs >= moderateCorrelation:
		return analysis.RelationshipModerate
	default:
		return analysis.RelationshipWeak
	}
}

// fisherInterval builds the 95% confidence interval on r via the Fisher
// z-transform: z = atanh(r), SE = 1/sqrt(n-3), transformed back with tanh.
func fisherInterval(r float64, n int) analysis.Interval {
	if n <= 3 {
		return analysis.Interval{Lower: r, Upper: r, Level: 0.95}
	}
	z := math.Atanh(r)
	se := 1 / math.Sqrt(float64(n-3))
	return analysis.Interval{
		Lower: math.Tanh(z - 1.96*se),
		Upper: math.Tanh(z + 1.96*se),
		Level: 0.95,
	}
}
