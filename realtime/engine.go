// Package realtime maintains bounded per-metric windows of streaming
// values and periodically re-runs the analysis engine over them.
package realtime

import (
	"context"
	"sync"
	"time"

	"datalens/domain/analysis"
	"datalens/engine"
	"datalens/internal"
)

// Report is the latest analysis snapshot of one streamed metric.
type Report struct {
	Metric    string           `json:"metric"`
	Result    *analysis.Result `json:"result"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Engine ingests metric values into ring buffers and recomputes analysis
// reports on a fixed interval. Recompute failures are logged and the timer
// keeps running; a bad window must never kill the loop.
type Engine struct {
	analyzer *engine.Engine
	log      *internal.Logger
	interval time.Duration
	capacity int

	mu      sync.RWMutex
	buffers map[string]*MetricBuffer
	reports map[string]Report

	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewEngine creates a realtime engine recomputing at the given interval.
func NewEngine(analyzer *engine.Engine, interval time.Duration, capacity int, log *internal.Logger) *Engine {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if log == nil {
		log = internal.DefaultLogger
	}
	log = log.WithComponent("realtime")
	return &Engine{
		analyzer: analyzer,
		log:      log,
		interval: interval,
		capacity: capacity,
		buffers:  make(map[string]*MetricBuffer),
		reports:  make(map[string]Report),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Record appends a value to the metric's window, creating it on first use.
func (e *Engine) Record(metric string, value float64) {
	e.mu.Lock()
	buf, ok := e.buffers[metric]
	if !ok {
		buf = NewMetricBuffer(e.capacity)
		e.buffers[metric] = buf
	}
	e.mu.Unlock()
	buf.Add(value)
}

// Report returns the latest snapshot for a metric, if one exists yet.
func (e *Engine) Report(metric string) (Report, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.reports[metric]
	return r, ok
}

// Metrics lists the metrics currently buffered.
func (e *Engine) Metrics() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.buffers))
	for name := range e.buffers {
		names = append(names, name)
	}
	return names
}

// Start launches the recompute loop. It returns immediately; the loop runs
// until Stop is called or ctx is cancelled. Repeated calls are no-ops.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	go func() {
		defer close(e.done)
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-e.stop:
				return
			case <-ticker.C:
				e.recomputeAll(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for the in-flight recompute to finish.
// Stop without a prior Start returns immediately.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
	e.mu.RLock()
	started := e.started
	e.mu.RUnlock()
	if !started {
		return
	}
	<-e.done
}

func (e *Engine) recomputeAll(ctx context.Context) {
	e.mu.RLock()
	snapshots := make(map[string][]float64, len(e.buffers))
	for name, buf := range e.buffers {
		snapshots[name] = buf.Snapshot()
	}
	e.mu.RUnlock()

	now := time.Now()
	for name, values := range snapshots {
		if len(values) == 0 {
			continue
		}
		e.recomputeMetric(ctx, name, values, now)
	}
}

func (e *Engine) recomputeMetric(ctx context.Context, name string, values []float64, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("recompute for %s panicked: %v", name, r)
		}
	}()

	result, err := e.analyzer.AnalyzeSeries(ctx, name, values)
	if err != nil {
		e.log.Warn("recompute for %s failed: %v", name, err)
		return
	}

	e.mu.Lock()
	e.reports[name] = Report{Metric: name, Result: result, UpdatedAt: now}
	e.mu.Unlock()
}
