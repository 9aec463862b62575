package engine

import (
	"math"
	"testing"
)

func TestDistributions_UnknownModeFallsBack(t *testing.T) {
	d := NewDistributions("bayesian")
	if d.Mode() != ModeApproximate {
		t.Errorf("unknown modes must fall back to approximate, got %s", d.Mode())
	}
}

func TestTwoTailedT_Approximate(t *testing.T) {
	d := NewDistributions(ModeApproximate)

	if p := d.TwoTailedT(0, 10); p != 1 {
		t.Errorf("t=0 must give p=1, got %v", p)
	}
	if p := d.TwoTailedT(12, 100); p >= 0.001 {
		t.Errorf("an extreme statistic must be significant, got p=%v", p)
	}
	if p := d.TwoTailedT(1.5, 0); p != 1 {
		t.Errorf("non-positive df must give p=1, got %v", p)
	}
	// Symmetry in the sign of t
	if d.TwoTailedT(2.5, 8) != d.TwoTailedT(-2.5, 8) {
		t.Error("two-tailed p must not depend on the sign of t")
	}
}

func TestTwoTailedT_ModesAgreeAtLargeDF(t *testing.T) {
	approx := NewDistributions(ModeApproximate)
	exact := NewDistributions(ModeExact)

	for _, tv := range []float64{0.5, 1.0, 2.0, 3.0} {
		pa := approx.TwoTailedT(tv, 200)
		pe := exact.TwoTailedT(tv, 200)
		if math.Abs(pa-pe) > 0.01 {
			t.Errorf("t=%v: approximate %v and exact %v diverge at df=200", tv, pa, pe)
		}
	}
}

func TestTwoTailedT_MonotoneWithinBranches(t *testing.T) {
	// The small-df approximation switches formulas at |t|=1; each branch is
	// monotone on its own.
	d := NewDistributions(ModeApproximate)
	for _, branch := range [][]float64{
		{0, 0.3, 0.6, 0.9},
		{1, 1.5, 2, 3, 5, 10},
	} {
		prev := 1.1
		for _, tv := range branch {
			p := d.TwoTailedT(tv, 12)
			if p > prev {
				t.Errorf("p must not increase with |t|: p(%v)=%v after %v", tv, p, prev)
			}
			prev = p
		}
	}
}

func TestNormalityPValue(t *testing.T) {
	d := NewDistributions(ModeApproximate)

	if p := d.NormalityPValue(0); p != 1 {
		t.Errorf("JB=0 must give p=1, got %v", p)
	}
	if p := d.NormalityPValue(-1); p != 1 {
		t.Errorf("negative JB is degenerate and must give p=1, got %v", p)
	}
	if p := d.NormalityPValue(20); p >= 0.001 {
		t.Errorf("a large JB must be decisive, got p=%v", p)
	}

	exact := NewDistributions(ModeExact)
	// chi-square(2) tail equals exp(-x/2), so modes agree on this test
	for _, jb := range []float64{0.5, 2, 6, 10} {
		if math.Abs(d.NormalityPValue(jb)-exact.NormalityPValue(jb)) > 1e-6 {
			t.Errorf("JB=%v: modes disagree", jb)
		}
	}
}

func TestCriticalValue(t *testing.T) {
	if criticalValue(10) != 2.0 {
		t.Errorf("small samples use 2.0, got %v", criticalValue(10))
	}
	if criticalValue(31) != 1.96 {
		t.Errorf("large samples use 1.96, got %v", criticalValue(31))
	}
}
