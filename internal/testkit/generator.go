// Package testkit provides synthetic dataset generators for tests and
// local demos. All generators are seed-deterministic.
package testkit

import (
	"math"
	"math/rand"

	"datalens/domain/analysis"
)

// LinearSeries generates n points on slope*i + intercept with uniform
// noise of the given amplitude.
func LinearSeries(n int, slope, intercept, noise float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		values[i] = slope*float64(i) + intercept + (rng.Float64()*2-1)*noise
	}
	return values
}

// SeasonalSeries generates n points of a sine wave with the given period
// riding on a base level.
func SeasonalSeries(n int, period float64, amplitude, base float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = base + amplitude*math.Sin(2*math.Pi*float64(i)/period)
	}
	return values
}

// Constant generates n copies of v.
func Constant(n int, v float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return values
}

// WithOutlier returns a copy of values with a single extreme value spliced
// in at index.
func WithOutlier(values []float64, index int, outlier float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	out[index] = outlier
	return out
}

// Dataset builds row-oriented records from named column vectors. Columns
// must share a length; shorter columns leave trailing cells missing.
func Dataset(columns map[string][]float64) analysis.Dataset {
	n := 0
	for _, col := range columns {
		if len(col) > n {
			n = len(col)
		}
	}
	ds := make(analysis.Dataset, n)
	for i := range ds {
		record := make(analysis.DataPoint, len(columns))
		for name, col := range columns {
			if i < len(col) {
				record[name] = col[i]
			}
		}
		ds[i] = record
	}
	return ds
}

// MessyDataset builds a dataset with deliberate quality problems: missing
// cells, duplicate rows, and non-numeric strays in a numeric column.
func MessyDataset() analysis.Dataset {
	ds := analysis.Dataset{}
	for i := 0; i < 20; i++ {
		record := analysis.DataPoint{
			"amount": float64(100 + i),
			"region": "north",
		}
		if i%5 == 0 {
			record["amount"] = "" // missing
		}
		if i == 7 {
			record["amount"] = "n/a" // invalid
		}
		ds = append(ds, record)
	}
	// Exact duplicates of the first row
	ds = append(ds, analysis.DataPoint{"amount": "", "region": "north"})
	ds = append(ds, analysis.DataPoint{"amount": "", "region": "north"})
	return ds
}
