package engine

import (
	"fmt"
	"sort"
	"time"

	"datalens/domain/analysis"
)

const (
	trendInsightFloor    = 70 // minimum fit score for a trend insight
	forecastInsightFloor = 75 // minimum back-tested accuracy
	anomalyInsightScore  = 90 // fixed confidence for high-severity anomaly insights
)

// synthesize converts the raw pass outputs into ranked insights and the
// executive summary. Thresholds are fixed; ordering is priority first,
// confidence second, title third so repeated runs rank identically.
func (e *Engine) synthesize(res *analysis.Result, now time.Time) {
	insights := make([]analysis.Insight, 0)

	for _, t := range res.Trends {
		if t.FitScore <= trendInsightFloor {
			continue
		}
		priority := analysis.PriorityMedium
		actionable := false
		if t.Direction == analysis.TrendDecreasing {
			priority = analysis.PriorityHigh
			actionable = true
		}
		insights = append(insights, analysis.Insight{
			Type:        analysis.InsightTrend,
			Title:       fmt.Sprintf("%s is %s", t.Field, t.Direction),
			Description: fmt.Sprintf("%q shows a %s trend (slope %.4g, fit %.0f%%)", t.Field, t.Direction, t.Slope, t.FitScore),
			Confidence:  t.FitScore,
			Actionable:  actionable,
			Priority:    priority,
		})
	}

	for _, c := range res.Correlations {
		if c.Relationship != analysis.RelationshipStrong {
			continue
		}
		insights = append(insights, analysis.Insight{
			Type:        analysis.InsightCorrelation,
			Title:       fmt.Sprintf("%s and %s move together", c.FieldA, c.FieldB),
			Description: fmt.Sprintf("Strong %s correlation between %q and %q (r=%.2f)", c.Sign, c.FieldA, c.FieldB, c.R),
			Confidence:  clamp(absFloat(c.R)*100, 0, 100),
			Actionable:  true,
			Priority:    analysis.PriorityMedium,
		})
	}

	for _, a := range res.Anomalies {
		high := 0
		for _, anomaly := range a.Anomalies {
			if anomaly.Severity == analysis.SeverityHigh {
				high++
			}
		}
		if high == 0 {
			continue
		}
		insights = append(insights, analysis.Insight{
			Type:        analysis.InsightAnomaly,
			Title:       fmt.Sprintf("Severe outliers in %s", a.Field),
			Description: fmt.Sprintf("%d high-severity outliers detected in %q; investigate before trusting aggregates", high, a.Field),
			Confidence:  anomalyInsightScore,
			Actionable:  true,
			Priority:    analysis.PriorityHigh,
		})
	}

	for _, f := range res.Forecasts {
		if f.Accuracy <= forecastInsightFloor {
			continue
		}
		insights = append(insights, analysis.Insight{
			Type:        analysis.InsightForecast,
			Title:       fmt.Sprintf("%s projection looks reliable", f.Field),
			Description: fmt.Sprintf("Back-tested forecast for %q reached %.0f%% accuracy over %d projected periods", f.Field, f.Accuracy, len(f.Points)),
			Confidence:  f.Accuracy,
			Actionable:  false,
			Priority:    analysis.PriorityLow,
		})
	}

	for _, rc := range res.RootCauses {
		if len(rc.Candidates) == 0 {
			continue
		}
		top := rc.Candidates[0]
		insights = append(insights, analysis.Insight{
			Type:        analysis.InsightCausal,
			Title:       fmt.Sprintf("%s shifts track %s", rc.Effect, top.Field),
			Description: fmt.Sprintf("Changes in %q are most strongly associated with %q (%.0f%% contribution); association only, not verified causality", rc.Effect, top.Field, top.Contribution),
			Confidence:  clamp(top.Confidence*100, 0, 100),
			Actionable:  true,
			Priority:    analysis.PriorityMedium,
		})
	}

	sortInsights(insights)
	res.Insights = insights
	res.Summary = e.buildSummary(res, now)
}

func sortInsights(insights []analysis.Insight) {
	rank := map[analysis.Priority]int{
		analysis.PriorityHigh:   0,
		analysis.PriorityMedium: 1,
		analysis.PriorityLow:    2,
	}
	sort.Slice(insights, func(i, j int) bool {
		if rank[insights[i].Priority] != rank[insights[j].Priority] {
			return rank[insights[i].Priority] < rank[insights[j].Priority]
		}
		if insights[i].Confidence != insights[j].Confidence {
			return insights[i].Confidence > insights[j].Confidence
		}
		return insights[i].Title < insights[j].Title
	})
}

// buildSummary produces the count-based key findings and recommendation
// block. The overall confidence score is the configured default, not an
// aggregate of the underlying results.
func (e *Engine) buildSummary(res *analysis.Result, now time.Time) analysis.Summary {
	findings := make([]string, 0, 5)

	if len(res.NumericFields) == 0 {
		findings = append(findings, "No numeric fields found; nothing to analyze")
	} else {
		significant := 0
		for _, t := range res.Trends {
			if t.Significant {
				significant++
			}
		}
		findings = append(findings, fmt.Sprintf("%d of %d numeric fields show statistically significant trends", significant, len(res.NumericFields)))

		strong := 0
		for _, c := range res.Correlations {
			if c.Relationship == analysis.RelationshipStrong {
				strong++
			}
		}
		if strong > 0 {
			findings = append(findings, fmt.Sprintf("%d strong field correlations detected", strong))
		}
		if len(res.Anomalies) > 0 {
			findings = append(findings, fmt.Sprintf("%d fields contain outliers worth reviewing", len(res.Anomalies)))
		}
		if len(res.RootCauses) > 0 {
			findings = append(findings, fmt.Sprintf("%d fields with change points have correlated candidate drivers", len(res.RootCauses)))
		}
		findings = append(findings, fmt.Sprintf("Overall data quality score: %.0f/100", res.Quality.Score))
	}

	recommendations := []string{
		"Review high-priority insights before drawing conclusions from the charts",
		"Collect more data for fields that were skipped due to small sample sizes",
	}
	recommendations = append(recommendations, res.Quality.Recommendations...)

	return analysis.Summary{
		KeyFindings:     findings,
		Recommendations: recommendations,
		ConfidenceScore: e.cfg.SummaryConfidence,
		GeneratedAt:     now,
	}
}
