package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/domain/analysis"
	"datalens/domain/core"
	"datalens/engine"
	"datalens/internal/testkit"
)

func sampleResult(t *testing.T) *analysis.Result {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.Clock = core.FixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	e := engine.New(cfg)

	ds := testkit.Dataset(map[string][]float64{
		"visits":  testkit.LinearSeries(30, 2, 100, 0, 1),
		"signups": testkit.LinearSeries(30, 1, 20, 0, 1),
		"errors":  testkit.WithOutlier(testkit.Constant(30, 5), 12, 500),
	})
	res, err := e.Analyze(context.Background(), ds)
	require.NoError(t, err)
	return res
}

func TestModelLabel(t *testing.T) {
	cases := []struct {
		basis analysis.ForecastBasis
		want  string
	}{
		{analysis.BasisShortSeries, "linear"},
		{analysis.BasisStableTrend, "linear"},
		{analysis.BasisLongVolatile, "lstm"},
		{analysis.BasisSeasonal, "arima"},
		{analysis.BasisDefault, "hybrid"},
	}
	for _, c := range cases {
		got := modelLabel(analysis.ForecastResult{Basis: c.basis})
		assert.Equal(t, c.want, got, string(c.basis))
	}
}

func TestBuildMarkdown_Sections(t *testing.T) {
	md := BuildMarkdown(sampleResult(t))

	for _, heading := range []string{
		"# Analysis Report",
		"## Executive Summary",
		"## Trends",
		"## Correlations",
		"## Forecasts",
		"## Anomalies",
		"## Data Quality",
	} {
		assert.Contains(t, md, heading)
	}
	assert.Contains(t, md, "2024-06-01")
	assert.Contains(t, md, "| visits | increasing |")
	assert.Contains(t, md, "Composite score")
}

func TestBuildMarkdown_EmptyResult(t *testing.T) {
	res := analysis.NewResult()
	md := BuildMarkdown(res)

	assert.Contains(t, md, "# Analysis Report")
	assert.Contains(t, md, "## Data Quality")
	assert.NotContains(t, md, "## Trends", "empty results omit empty sections")
}

func TestRenderHTML(t *testing.T) {
	out := string(RenderHTML(sampleResult(t)))

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "Analysis Report")
	assert.Contains(t, out, "<table>", "markdown tables must render as HTML tables")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult(t)))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	assert.Equal(t, []string{"section", "field", "metric", "value"}, rows[0])

	var sections []string
	for _, row := range rows[1:] {
		require.Len(t, row, 4)
		sections = append(sections, row[0])
	}
	for _, want := range []string{"trend", "correlation", "forecast", "anomaly", "quality", "summary"} {
		assert.Contains(t, sections, want)
	}
}
