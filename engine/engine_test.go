package engine

import (
	"context"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"datalens/domain/analysis"
	"datalens/internal/testkit"
)

func TestAnalyze_EmptyDataset(t *testing.T) {
	e := newTestEngine()
	res, err := e.Analyze(context.Background(), analysis.Dataset{})
	if err != nil {
		t.Fatalf("empty input must not error: %v", err)
	}
	if res.RowCount != 0 {
		t.Errorf("expected row count 0, got %d", res.RowCount)
	}
	if res.Trends == nil || res.Correlations == nil || res.Insights == nil {
		t.Error("collections must be empty, not nil")
	}
	if len(res.Trends)+len(res.Correlations)+len(res.Forecasts)+len(res.Anomalies) != 0 {
		t.Error("empty input must produce no analysis output")
	}
	if len(res.Summary.KeyFindings) == 0 {
		t.Error("even an empty run gets an executive summary")
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	ds := testkit.Dataset(map[string][]float64{
		"visits":  testkit.LinearSeries(40, 2, 100, 5, 11),
		"signups": testkit.LinearSeries(40, 0.5, 20, 2, 12),
		"errors":  testkit.WithOutlier(testkit.Constant(40, 3), 25, 90),
	})
	e := newTestEngine()

	a, err := e.Analyze(context.Background(), ds)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	b, err := e.Analyze(context.Background(), ds)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Error("identical input under a fixed clock must produce identical output")
	}
}

func TestAnalyze_FieldOrderIsSorted(t *testing.T) {
	ds := testkit.Dataset(map[string][]float64{
		"zeta":  testkit.LinearSeries(10, 1, 0, 0, 1),
		"alpha": testkit.LinearSeries(10, 1, 0, 0, 2),
		"mid":   testkit.LinearSeries(10, 1, 0, 0, 3),
	})
	e := newTestEngine()
	res, err := e.Analyze(context.Background(), ds)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(res.NumericFields, want) {
		t.Errorf("expected sorted field names %v, got %v", want, res.NumericFields)
	}
	for i, tr := range res.Trends {
		if tr.Field != want[i] {
			t.Errorf("trend %d: expected %s, got %s", i, want[i], tr.Field)
		}
	}
}

func TestAnalyze_ConfidenceBoundsFuzz(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	e := newTestEngine()

	for trial := 0; trial < 20; trial++ {
		n := 5 + rng.Intn(60)
		values := make([]float64, n)
		for i := range values {
			values[i] = rng.NormFloat64()*50 + 100
		}
		res, err := e.Analyze(context.Background(), testkit.Dataset(map[string][]float64{"x": values}))
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}

		for _, tr := range res.Trends {
			if tr.PValue < 0 || tr.PValue > 1 {
				t.Errorf("trial %d: trend p-value out of range: %v", trial, tr.PValue)
			}
			if tr.FitScore < 0 || tr.FitScore > 100 {
				t.Errorf("trial %d: fit score out of range: %v", trial, tr.FitScore)
			}
		}
		for _, f := range res.Forecasts {
			if f.Accuracy < 0 || f.Accuracy > 100 {
				t.Errorf("trial %d: accuracy out of range: %v", trial, f.Accuracy)
			}
			for _, p := range f.Points {
				if p.Confidence < 0 || p.Confidence > 100 {
					t.Errorf("trial %d: point confidence out of range: %v", trial, p.Confidence)
				}
				if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
					t.Errorf("trial %d: non-finite projection %v", trial, p.Value)
				}
			}
		}
		for _, in := range res.Insights {
			if in.Confidence < 0 || in.Confidence > 100 {
				t.Errorf("trial %d: insight confidence out of range: %v", trial, in.Confidence)
			}
		}
		if res.Quality.Score < 0 || res.Quality.Score > 100 {
			t.Errorf("trial %d: quality score out of range: %v", trial, res.Quality.Score)
		}
	}
}

func TestAnalyze_ConfigDefaultsFilled(t *testing.T) {
	e := New(Config{})
	if e.cfg.ForecastHorizon != 12 || e.cfg.ForecastWorkers != 4 {
		t.Errorf("zero config must pick up defaults, got %+v", e.cfg)
	}
	if e.cfg.Clock == nil {
		t.Error("default clock must be set")
	}
	if e.dist.Mode() != ModeApproximate {
		t.Errorf("default stat mode is approximate, got %s", e.dist.Mode())
	}
}

func TestAnalyze_ExplicitZeroScoresHonored(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Clock = testClock
	cfg.AccuracyScore = 0
	cfg.TimelinessScore = 0
	cfg.SummaryConfidence = 0
	e := New(cfg)

	res, err := e.Analyze(context.Background(), testkit.Dataset(map[string][]float64{
		"x": testkit.LinearSeries(10, 1, 0, 0, 1),
	}))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if res.Quality.Accuracy != 0 || res.Quality.Timeliness != 0 {
		t.Errorf("explicit zero placeholder scores must stay zero, got %v/%v",
			res.Quality.Accuracy, res.Quality.Timeliness)
	}
	if res.Summary.ConfidenceScore != 0 {
		t.Errorf("explicit zero summary confidence must stay zero, got %v", res.Summary.ConfidenceScore)
	}
}

func TestAnalyzeSeries(t *testing.T) {
	e := newTestEngine()
	res, err := e.AnalyzeSeries(context.Background(), "latency", testkit.LinearSeries(15, 1, 10, 0, 1))
	if err != nil {
		t.Fatalf("AnalyzeSeries failed: %v", err)
	}
	if len(res.Trends) != 1 || res.Trends[0].Field != "latency" {
		t.Fatalf("expected a single trend for latency, got %+v", res.Trends)
	}
	if res.Trends[0].Direction != analysis.TrendIncreasing {
		t.Errorf("expected increasing, got %s", res.Trends[0].Direction)
	}
}
