package engine

import (
	"context"
	"testing"

	"datalens/domain/analysis"
	"datalens/internal/testkit"
)

// shiftedSeries has a hard level shift halfway through, guaranteeing a
// change point for the effect field.
func shiftedSeries(n int, low, high float64) []float64 {
	return append(testkit.Constant(n/2, low), testkit.Constant(n-n/2, high)...)
}

func TestRootCause_RanksCorrelatedDriver(t *testing.T) {
	effect := shiftedSeries(20, 10, 50)
	driver := shiftedSeries(20, 100, 500) // same shape, tracks the effect
	noise := testkit.Constant(20, 7)      // zero variance, correlates with nothing

	e := newTestEngine()
	res, err := e.Analyze(context.Background(), testkit.Dataset(map[string][]float64{
		"conversion": effect,
		"campaigns":  driver,
		"baseline":   noise,
	}))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	var found *analysis.CorrelationBasedCauses
	for i := range res.RootCauses {
		if res.RootCauses[i].Effect == "conversion" {
			found = &res.RootCauses[i]
		}
	}
	if found == nil {
		t.Fatal("expected candidate causes for the shifted field")
	}
	if len(found.Candidates) != 1 || found.Candidates[0].Field != "campaigns" {
		t.Fatalf("expected campaigns as the only candidate, got %+v", found.Candidates)
	}
	top := found.Candidates[0]
	if top.Contribution < 99 {
		t.Errorf("a perfectly tracking driver contributes ~100%%, got %v", top.Contribution)
	}
	if top.Confidence <= 0.9 {
		t.Errorf("expected high confidence, got %v", top.Confidence)
	}
	if len(found.CausalChain) != 1 || found.CausalChain[0] != "campaigns" {
		t.Errorf("unexpected chain %v", found.CausalChain)
	}
}

func TestRootCause_NoChangePointNoEntry(t *testing.T) {
	e := newTestEngine()
	res, err := e.Analyze(context.Background(), testkit.Dataset(map[string][]float64{
		"a": testkit.Constant(20, 5),
		"b": testkit.Constant(20, 9),
	}))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(res.RootCauses) != 0 {
		t.Errorf("flat fields have no change points and no cause entries, got %+v", res.RootCauses)
	}
}

func TestRankCandidates_TopFiveOnly(t *testing.T) {
	e := newTestEngine()
	base := testkit.LinearSeries(15, 1, 0, 0, 1)

	fields := []string{"effect", "c1", "c2", "c3", "c4", "c5", "c6"}
	vectors := map[string]series{"effect": {Values: base}}
	for i, name := range fields[1:] {
		vectors[name] = series{Values: testkit.LinearSeries(15, float64(i+1), 10, 0, 1)}
	}

	candidates := e.rankCandidates("effect", fields, vectors)
	if len(candidates) != 5 {
		t.Fatalf("expected the candidate list capped at 5, got %d", len(candidates))
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Contribution > candidates[i-1].Contribution {
			t.Error("candidates must be sorted by contribution")
		}
	}
}
