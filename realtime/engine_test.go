package realtime

import (
	"context"
	"sort"
	"testing"
	"time"

	"datalens/domain/analysis"
	"datalens/engine"
)

func newTestAnalyzer() *engine.Engine {
	return engine.New(engine.DefaultConfig())
}

func TestMetricBuffer_DropsOldest(t *testing.T) {
	b := NewMetricBuffer(3)
	for i := 1; i <= 5; i++ {
		b.Add(float64(i))
	}
	if b.Len() != 3 {
		t.Fatalf("expected length 3, got %d", b.Len())
	}
	got := b.Snapshot()
	want := []float64{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestMetricBuffer_EmptySnapshot(t *testing.T) {
	b := NewMetricBuffer(10)
	if s := b.Snapshot(); s != nil {
		t.Errorf("empty buffer must snapshot nil, got %v", s)
	}
}

func TestMetricBuffer_DefaultCapacity(t *testing.T) {
	b := NewMetricBuffer(0)
	for i := 0; i < 600; i++ {
		b.Add(float64(i))
	}
	if b.Len() != 500 {
		t.Errorf("zero capacity must default to 500, got %d", b.Len())
	}
}

func TestEngine_RecordAndMetrics(t *testing.T) {
	e := NewEngine(newTestAnalyzer(), time.Second, 100, nil)
	e.Record("latency", 120)
	e.Record("latency", 130)
	e.Record("throughput", 900)

	metrics := e.Metrics()
	sort.Strings(metrics)
	if len(metrics) != 2 || metrics[0] != "latency" || metrics[1] != "throughput" {
		t.Errorf("unexpected metric set %v", metrics)
	}

	if _, ok := e.Report("latency"); ok {
		t.Error("no report exists before the first recompute")
	}
}

func TestEngine_RecomputeProducesReport(t *testing.T) {
	e := NewEngine(newTestAnalyzer(), time.Second, 100, nil)
	for i := 0; i < 20; i++ {
		e.Record("latency", float64(100+i))
	}

	e.recomputeAll(context.Background())

	r, ok := e.Report("latency")
	if !ok {
		t.Fatal("expected a report after recompute")
	}
	if r.Metric != "latency" || r.Result == nil {
		t.Fatalf("malformed report %+v", r)
	}
	if len(r.Result.Trends) != 1 || r.Result.Trends[0].Direction != analysis.TrendIncreasing {
		t.Errorf("expected an increasing latency trend, got %+v", r.Result.Trends)
	}
}

func TestEngine_StopWithoutStart(t *testing.T) {
	e := NewEngine(newTestAnalyzer(), time.Second, 100, nil)

	done := make(chan struct{})
	go func() {
		e.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop must return immediately when the loop never started")
	}
}

func TestEngine_StartIsIdempotent(t *testing.T) {
	e := NewEngine(newTestAnalyzer(), 10*time.Millisecond, 100, nil)
	e.Start(context.Background())
	e.Start(context.Background()) // second call must not spawn a second loop
	e.Stop()
}

func TestEngine_StartAndStop(t *testing.T) {
	e := NewEngine(newTestAnalyzer(), 10*time.Millisecond, 100, nil)
	for i := 0; i < 15; i++ {
		e.Record("requests", float64(50+i))
	}

	e.Start(context.Background())
	deadline := time.After(2 * time.Second)
	for {
		if _, ok := e.Report("requests"); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("no report produced within the deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}
	e.Stop()

	// Stop is idempotent and the loop must be down
	e.Stop()
}
