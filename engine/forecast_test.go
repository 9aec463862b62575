package engine

import (
	"context"
	"math"
	"testing"

	"datalens/domain/analysis"
	"datalens/internal/testkit"
)

func TestForecast_ShortSeriesUsesLinear(t *testing.T) {
	res := analyzeValues(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	if len(res.Forecasts) != 1 {
		t.Fatalf("expected 1 forecast, got %d", len(res.Forecasts))
	}
	f := res.Forecasts[0]
	if f.Model != analysis.ModelLinear || f.Basis != analysis.BasisShortSeries {
		t.Errorf("expected linear/short_series, got %s/%s", f.Model, f.Basis)
	}
	if len(f.Points) != 12 {
		t.Fatalf("expected 12 points, got %d", len(f.Points))
	}

	// The ramp continues: next value is 11
	if math.Abs(f.Points[0].Value-11) > 1e-9 {
		t.Errorf("expected first projection 11, got %v", f.Points[0].Value)
	}

	// Confidence decays 2 points per step from the fit score (100 here)
	if math.Abs(f.Points[0].Confidence-98) > 1e-9 {
		t.Errorf("expected first confidence 98, got %v", f.Points[0].Confidence)
	}
	for i := 1; i < len(f.Points); i++ {
		if f.Points[i].Confidence > f.Points[i-1].Confidence {
			t.Errorf("confidence must not increase across the horizon")
		}
	}

	// Holdout of 2 points is below the backtest minimum
	if f.Accuracy != 75 {
		t.Errorf("expected fallback accuracy 75, got %v", f.Accuracy)
	}
	if f.Trend != analysis.TrendIncreasing {
		t.Errorf("expected increasing trend label, got %s", f.Trend)
	}
}

func TestForecast_BacktestPerfectRamp(t *testing.T) {
	res := analyzeValues(t, testkit.LinearSeries(30, 1, 5, 0, 1))

	f := res.Forecasts[0]
	// 6 held-out points on a noiseless ramp reproduce almost exactly
	if f.Accuracy < 99.9 {
		t.Errorf("expected near-perfect accuracy on a noiseless ramp, got %v", f.Accuracy)
	}
}

func TestForecast_SmoothingConfidenceDecay(t *testing.T) {
	e := newTestEngine()
	points := e.smoothingProjection(testkit.Constant(50, 10), testClock())

	if len(points) != 12 {
		t.Fatalf("expected 12 points, got %d", len(points))
	}
	if points[0].Confidence != 82 {
		t.Errorf("expected first smoothing confidence 82, got %v", points[0].Confidence)
	}
	last := points[len(points)-1]
	if last.Confidence < smoothConfFloor {
		t.Errorf("confidence fell below the floor: %v", last.Confidence)
	}
	if math.Abs(points[0].Value-10) > 1e-9 {
		t.Errorf("smoothed level of a constant series is the constant, got %v", points[0].Value)
	}
}

func TestForecast_SeasonalDispatch(t *testing.T) {
	values := testkit.SeasonalSeries(60, 12, 10, 100)
	trend := analysis.TrendResult{Volatility: 0.5, FitScore: 10}

	model, basis := selectModel(values, trend)
	if model != analysis.ModelSmoothing || basis != analysis.BasisSeasonal {
		t.Errorf("expected smoothing/seasonal, got %s/%s", model, basis)
	}
}

func TestForecast_StableTrendDispatch(t *testing.T) {
	values := testkit.LinearSeries(40, 2, 10, 0, 1)
	trend := analysis.TrendResult{Volatility: 0.01, FitScore: 99}

	model, basis := selectModel(values, trend)
	if model != analysis.ModelLinear || basis != analysis.BasisStableTrend {
		t.Errorf("expected linear/stable_trend, got %s/%s", model, basis)
	}
}

func TestForecast_SkipsSmallSamples(t *testing.T) {
	res := analyzeValues(t, []float64{1, 2, 3, 4})
	if len(res.Forecasts) != 0 {
		t.Errorf("fields with <5 values must be skipped, got %+v", res.Forecasts)
	}
}

func TestForecast_DeterministicDates(t *testing.T) {
	ds := testkit.Dataset(map[string][]float64{"x": testkit.LinearSeries(20, 1, 0, 0, 1)})
	e := newTestEngine()

	a, err := e.Analyze(context.Background(), ds)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	b, err := e.Analyze(context.Background(), ds)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !a.Forecasts[0].Points[0].Date.Equal(b.Forecasts[0].Points[0].Date) {
		t.Error("forecast dates must be stable under a fixed clock")
	}
}
