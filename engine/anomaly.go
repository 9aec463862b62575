package engine

import (
	"sort"
	"time"

	"datalens/domain/analysis"
)

const (
	minAnomalySamples = 10
	iqrFenceFactor    = 1.5
)

// analyzeAnomalies applies Tukey's IQR rule per numeric field. Fields with
// fewer than ten values or zero outliers produce no entry at all.
func (e *Engine) analyzeAnomalies(ds analysis.Dataset, fields []string, axis []time.Time) []analysis.AnomalyResult {
	results := make([]analysis.AnomalyResult, 0)
	for _, field := range fields {
		s := extractSeries(ds, field, axis)
		if len(s.Values) < minAnomalySamples {
			continue
		}
		anomalies := detectOutliers(s)
		if len(anomalies) == 0 {
			continue
		}
		results = append(results, analysis.AnomalyResult{Field: field, Anomalies: anomalies})
	}
	return results
}

func detectOutliers(s series) []analysis.Anomaly {
	q1, q3 := quartiles(s.Values)
	iqr := q3 - q1
	lower := q1 - iqrFenceFactor*iqr
	upper := q3 + iqrFenceFactor*iqr

	var anomalies []analysis.Anomaly
	for i, v := range s.Values {
		if v >= lower && v <= upper {
			continue
		}
		var deviation float64
		if v > upper {
			deviation = v - upper
		} else {
			deviation = lower - v
		}
		anomalies = append(anomalies, analysis.Anomaly{
			Index:     i,
			Date:      s.Dates[i],
			Value:     v,
			Severity:  outlierSeverity(deviation, iqr),
			Deviation: deviation,
		})
	}
	return anomalies
}

// outlierSeverity scales with how far past the fence the value sits:
// beyond a full extra IQR is high, beyond half an IQR medium, else low.
func outlierSeverity(deviation, iqr float64) analysis.Severity {
	switch {
	case deviation > iqr:
		return analysis.SeverityHigh
	case deviation > 0.5*iqr:
		return analysis.SeverityMedium
	default:
		return analysis.SeverityLow
	}
}

// quartiles uses sorted-array indexing (floor(n/4), floor(3n/4)) rather
// than interpolation, matching the fence values reports have always shown.
func quartiles(values []float64) (q1, q3 float64) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	q1 = sorted[n/4]
	q3 = sorted[(3*n)/4]
	return q1, q3
}
