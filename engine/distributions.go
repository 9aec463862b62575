package engine

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// StatMode selects how p-values are derived.
type StatMode string

const (
	// ModeApproximate uses the closed-form normal approximations the
	// original analytics engine shipped with. P-values diverge from exact
	// ones at small sample sizes; kept as the default so outputs stay
	// comparable with the historical reports.
	ModeApproximate StatMode = "approximate"
	// ModeExact uses proper Student's t and chi-square CDFs.
	ModeExact StatMode = "exact"
)

// Distributions provides unified access to the statistical distributions
// the analysis passes need, in either approximate or exact mode.
type Distributions struct {
	mode StatMode
}

// NewDistributions creates a distributions helper for the given mode.
// Unknown modes fall back to approximate.
func NewDistributions(mode StatMode) *Distributions {
	if mode != ModeExact {
		mode = ModeApproximate
	}
	return &Distributions{mode: mode}
}

// Mode returns the active mode.
func (d *Distributions) Mode() StatMode { return d.mode }

// TwoTailedT returns the two-tailed p-value for a t-statistic with the
// given degrees of freedom.
func (d *Distributions) TwoTailedT(t float64, df int) float64 {
	if df <= 0 {
		return 1.0
	}
	p := 2 * (1 - d.tCDF(math.Abs(t), float64(df)))
	return clamp(p, 0, 1)
}

// tCDF approximates (or computes) the cumulative distribution function of
// the t-distribution at t >= 0.
func (d *Distributions) tCDF(t, df float64) float64 {
	if d.mode == ModeExact {
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		return dist.CDF(t)
	}

	// Normal approximation for large df
	if df > 30 {
		return 0.5 * (1 + math.Erf(t/math.Sqrt2))
	}

	// Rough small-df approximation: linear near zero, rational tail beyond
	if math.Abs(t) < 1.0 {
		return 0.5 + (t / (2.0 * math.Sqrt(df)))
	}
	if t > 0 {
		return 1.0 - (0.5 / (1.0 + t*t/df))
	}
	return 0.5 / (1.0 + t*t/df)
}

// NormalityPValue converts a Jarque-Bera statistic to a p-value.
// Approximate mode uses exp(-JB/2); exact mode the chi-square(2) tail.
func (d *Distributions) NormalityPValue(jb float64) float64 {
	if jb < 0 {
		return 1.0
	}
	if d.mode == ModeExact {
		chi := distuv.ChiSquared{K: 2}
		return clamp(1-chi.CDF(jb), 0, 1)
	}
	return clamp(math.Exp(-jb/2), 0, 1)
}

// criticalValue returns the two-sided 95% critical value for sample size n.
// A rough two-point lookup, not a full t-table: 1.96 for large samples,
// 2.0 otherwise.
func criticalValue(n int) float64 {
	if n > 30 {
		return 1.96
	}
	return 2.0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
