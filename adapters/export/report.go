// Package export serializes analysis results for consumers outside the
// engine: a markdown/HTML report for dashboards and a flattened CSV for
// spreadsheet export.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"datalens/domain/analysis"
)

// modelLabel maps the engine's neutral model names to the labels the
// dashboard has historically displayed. The labels are marketing names for
// the dispatch branch, nothing more; the mapping lives here so the engine
// itself never claims to run models it does not have.
func modelLabel(f analysis.ForecastResult) string {
	switch f.Basis {
	case analysis.BasisLongVolatile:
		return "lstm"
	case analysis.BasisSeasonal:
		return "arima"
	case analysis.BasisDefault:
		return "hybrid"
	default:
		return "linear"
	}
}

// BuildMarkdown renders the full result as a markdown report.
func BuildMarkdown(res *analysis.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Analysis Report\n\n")
	fmt.Fprintf(&b, "Generated %s · %d rows · %d numeric fields\n\n",
		res.GeneratedAt.Format("2006-01-02 15:04"), res.RowCount, len(res.NumericFields))

	b.WriteString("## Executive Summary\n\n")
	for _, finding := range res.Summary.KeyFindings {
		fmt.Fprintf(&b, "- %s\n", finding)
	}
	fmt.Fprintf(&b, "\nOverall confidence: %.0f%%\n\n", res.Summary.ConfidenceScore*100)

	if len(res.Insights) > 0 {
		b.WriteString("## Insights\n\n")
		for _, ins := range res.Insights {
			fmt.Fprintf(&b, "- **[%s] %s** — %s (confidence %.0f%%)\n",
				ins.Priority, ins.Title, ins.Description, ins.Confidence)
		}
		b.WriteString("\n")
	}

	if len(res.Trends) > 0 {
		b.WriteString("## Trends\n\n")
		b.WriteString("| Field | Direction | Slope | Fit | p-value |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, t := range res.Trends {
			fmt.Fprintf(&b, "| %s | %s | %.4g | %.0f%% | %.4f |\n",
				t.Field, t.Direction, t.Slope, t.FitScore, t.PValue)
		}
		b.WriteString("\n")
	}

	if len(res.Correlations) > 0 {
		b.WriteString("## Correlations\n\n")
		b.WriteString("| Fields | r | Strength | p-value |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, c := range res.Correlations {
			fmt.Fprintf(&b, "| %s ↔ %s | %.3f | %s %s | %.4f |\n",
				c.FieldA, c.FieldB, c.R, c.Relationship, c.Sign, c.PValue)
		}
		b.WriteString("\n")
	}

	if len(res.Forecasts) > 0 {
		b.WriteString("## Forecasts\n\n")
		b.WriteString("| Field | Model | Accuracy | Trend |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, f := range res.Forecasts {
			fmt.Fprintf(&b, "| %s | %s | %.0f%% | %s |\n",
				f.Field, modelLabel(f), f.Accuracy, f.Trend)
		}
		b.WriteString("\n")
	}

	if len(res.Anomalies) > 0 {
		b.WriteString("## Anomalies\n\n")
		for _, a := range res.Anomalies {
			fmt.Fprintf(&b, "- **%s**: %d outliers\n", a.Field, len(a.Anomalies))
			for _, anomaly := range a.Anomalies {
				fmt.Fprintf(&b, "  - %.4g at row %d (%s severity)\n",
					anomaly.Value, anomaly.Index, anomaly.Severity)
			}
		}
		b.WriteString("\n")
	}

	if len(res.RootCauses) > 0 {
		b.WriteString("## Candidate Drivers\n\n")
		b.WriteString("Ranked by correlation strength; association, not verified causality.\n\n")
		for _, rc := range res.RootCauses {
			fmt.Fprintf(&b, "- **%s** ← %s\n", rc.Effect, strings.Join(rc.CausalChain, " → "))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Data Quality\n\n")
	q := res.Quality
	fmt.Fprintf(&b, "Composite score **%.0f/100** (completeness %.0f, consistency %.0f, accuracy %.0f, validity %.0f, uniqueness %.0f, timeliness %.0f)\n\n",
		q.Score, q.Completeness, q.Consistency, q.Accuracy, q.Validity, q.Uniqueness, q.Timeliness)
	for _, issue := range q.Issues {
		fmt.Fprintf(&b, "- [%s] %s\n", issue.Severity, issue.Description)
	}

	return b.String()
}

// RenderHTML converts the markdown report to HTML for embedding.
func RenderHTML(res *analysis.Result) []byte {
	md := []byte(BuildMarkdown(res))
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML(md, p, renderer)
}

// WriteCSV flattens the result into (section, field, metric, value) rows.
func WriteCSV(w io.Writer, res *analysis.Result) error {
	cw := csv.NewWriter(w)
	write := func(section, field, metric, value string) {
		cw.Write([]string{section, field, metric, value})
	}
	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }

	write("section", "field", "metric", "value")
	for _, t := range res.Trends {
		write("trend", t.Field, "direction", string(t.Direction))
		write("trend", t.Field, "slope", ff(t.Slope))
		write("trend", t.Field, "fit_score", ff(t.FitScore))
		write("trend", t.Field, "p_value", ff(t.PValue))
	}
	for _, c := range res.Correlations {
		pair := c.FieldA + "~" + c.FieldB
		write("correlation", pair, "r", ff(c.R))
		write("correlation", pair, "relationship", string(c.Relationship))
		write("correlation", pair, "p_value", ff(c.PValue))
	}
	for _, f := range res.Forecasts {
		write("forecast", f.Field, "model", modelLabel(f))
		write("forecast", f.Field, "accuracy", ff(f.Accuracy))
		for _, p := range f.Points {
			write("forecast", f.Field, fmt.Sprintf("point_%d", p.Offset), ff(p.Value))
		}
	}
	for _, a := range res.Anomalies {
		for _, anomaly := range a.Anomalies {
			write("anomaly", a.Field, fmt.Sprintf("row_%d_%s", anomaly.Index, anomaly.Severity), ff(anomaly.Value))
		}
	}
	write("quality", "", "score", ff(res.Quality.Score))
	write("summary", "", "confidence", ff(res.Summary.ConfidenceScore))

	cw.Flush()
	return cw.Error()
}
