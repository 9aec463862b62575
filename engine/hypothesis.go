package engine

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"datalens/domain/analysis"
)

const minNormalitySamples = 5

// analyzeMeanTests runs a one-sample t-test (H0: mean = 0) per numeric
// field. A zero-variance series makes the statistic degenerate; it is
// reported as not significant rather than dividing by zero.
func (e *Engine) analyzeMeanTests(ds analysis.Dataset, fields []string) []analysis.HypothesisTestResult {
	results := make([]analysis.HypothesisTestResult, 0, len(fields))
	for _, field := range fields {
		values := numericValues(ds, field)
		if len(values) < minTrendSamples {
			continue
		}
		results = append(results, e.oneSampleT(field, values))
	}
	return results
}

func (e *Engine) oneSampleT(field string, values []float64) analysis.HypothesisTestResult {
	n := len(values)
	mean, _ := stats.Mean(stats.Float64Data(values))
	sd, _ := stats.StandardDeviation(stats.Float64Data(values))

	result := analysis.HypothesisTestResult{
		Field:      field,
		Test:       "one_sample_t",
		Critical:   criticalValue(n),
		SampleSize: n,
	}

	if sd == 0 {
		result.PValue = 1
		result.Conclusion = fmt.Sprintf("%q is constant at %.4g; the one-sample t-test is not applicable", field, mean)
		return result
	}

	result.Statistic = mean / (sd / math.Sqrt(float64(n)))
	result.PValue = e.dist.TwoTailedT(result.Statistic, n-1)
	result.Significant = result.PValue < significanceAlpha

	if result.Significant {
		result.Conclusion = fmt.Sprintf("The mean of %q (%.4g) differs significantly from zero (t=%.2f, p=%.4f)", field, mean, result.Statistic, result.PValue)
	} else {
		result.Conclusion = fmt.Sprintf("No significant evidence that the mean of %q differs from zero (t=%.2f, p=%.4f)", field, result.Statistic, result.PValue)
	}
	return result
}

// analyzeNormality applies a Jarque-Bera style test built from sample
// skewness and kurtosis per field with at least five values. For this test
// "significant" means the normality hypothesis is rejected.
func (e *Engine) analyzeNormality(ds analysis.Dataset, fields []string) []analysis.HypothesisTestResult {
	results := make([]analysis.HypothesisTestResult, 0, len(fields))
	for _, field := range fields {
		values := numericValues(ds, field)
		if len(values) < minNormalitySamples {
			continue
		}
		results = append(results, e.normalityTest(field, values))
	}
	return results
}

func (e *Engine) normalityTest(field string, values []float64) analysis.HypothesisTestResult {
	n := len(values)
	skew, kurt := sampleMoments(values)
	jb := (float64(n) / 6.0) * (skew*skew + (kurt-3)*(kurt-3)/4)
	pValue := e.dist.NormalityPValue(jb)
	rejected := pValue < significanceAlpha

	result := analysis.HypothesisTestResult{
		Field:       field,
		Test:        "jarque_bera",
		Statistic:   jb,
		PValue:      pValue,
		Critical:    criticalValue(n),
		Significant: rejected,
		SampleSize:  n,
	}
	if rejected {
		result.Conclusion = fmt.Sprintf("%q deviates from normality (JB=%.2f, p=%.4f); parametric tests on it are approximate", field, jb, pValue)
	} else {
		result.Conclusion = fmt.Sprintf("%q is consistent with a normal distribution (JB=%.2f, p=%.4f)", field, jb, pValue)
	}
	return result
}

// sampleMoments returns sample skewness and (non-excess) kurtosis. A
// zero-spread series reports skewness 0 and kurtosis 3, i.e. exactly
// normal, so the JB statistic stays at 0.
func sampleMoments(values []float64) (skewness, kurtosis float64) {
	n := float64(len(values))
	mean, _ := stats.Mean(stats.Float64Data(values))
	sd, _ := stats.StandardDeviationPopulation(stats.Float64Data(values))
	if sd == 0 {
		return 0, 3
	}
	var m3, m4 float64
	for _, v := range values {
		z := (v - mean) / sd
		m3 += z * z * z
		m4 += z * z * z * z
	}
	return m3 / n, m4 / n
}
