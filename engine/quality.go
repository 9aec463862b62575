package engine

import (
	"fmt"
	"sort"
	"strings"

	"datalens/domain/analysis"
	"datalens/domain/core"
)

// Composite score weights. They sum to 1; the composite lands in [0,100].
const (
	weightCompleteness = 0.25
	weightConsistency  = 0.20
	weightAccuracy     = 0.20
	weightValidity     = 0.15
	weightUniqueness   = 0.10
	weightTimeliness   = 0.10
)

const (
	missingHighThreshold   = 0.20
	missingMediumThreshold = 0.05
	outlierIssueThreshold  = 0.05
	consistencyPenalty     = 2 // score points lost per outlier percentage point
)

// assessQuality scores the dataset on six dimensions and emits issues and
// remediation suggestions per problem found. Accuracy and timeliness are
// the configured placeholder scores.
func (e *Engine) assessQuality(ds analysis.Dataset, fields []string) analysis.DataQualityResult {
	result := analysis.DataQualityResult{
		Accuracy:   e.cfg.AccuracyScore,
		Timeliness: e.cfg.TimelinessScore,
		RowCount:   len(ds),
	}
	if len(ds) == 0 {
		result.Completeness = 100
		result.Consistency = 100
		result.Validity = 100
		result.Uniqueness = 100
		result.Score = e.compositeScore(result)
		return result
	}

	allFields := fieldNames(ds[0])

	missingRate, missingByField := missingCells(ds, allFields)
	result.Completeness = clamp((1-missingRate)*100, 0, 100)

	duplicates := duplicateRows(ds)
	result.DuplicateRows = duplicates
	result.Uniqueness = clamp((1-float64(duplicates)/float64(len(ds)))*100, 0, 100)

	invalidRate, invalidByField := invalidNumericCells(ds, fields)
	result.Validity = clamp((1-invalidRate)*100, 0, 100)

	outlierRate, outlierByField := outlierRates(ds, fields)
	result.Consistency = clamp(100-consistencyPenalty*outlierRate*100, 0, 100)

	result.Issues = e.collectIssues(len(ds), missingByField, duplicates, invalidByField, outlierByField)
	result.Recommendations = recommendFixes(result.Issues)
	result.Score = e.compositeScore(result)
	return result
}

func (e *Engine) compositeScore(r analysis.DataQualityResult) float64 {
	score := weightCompleteness*r.Completeness +
		weightConsistency*r.Consistency +
		weightAccuracy*r.Accuracy +
		weightValidity*r.Validity +
		weightUniqueness*r.Uniqueness +
		weightTimeliness*r.Timeliness
	return clamp(score, 0, 100)
}

func fieldNames(record analysis.DataPoint) []string {
	names := make([]string, 0, len(record))
	for name := range record {
		names = append(names, name)
	}
	return names
}

// missingCells counts absent, nil, and blank-string cells over the field
// set of the first record.
func missingCells(ds analysis.Dataset, fields []string) (rate float64, byField map[string]float64) {
	byField = make(map[string]float64, len(fields))
	total := len(ds) * len(fields)
	if total == 0 {
		return 0, byField
	}
	missing := 0
	for _, field := range fields {
		fieldMissing := 0
		for _, record := range ds {
			if isMissing(record[field]) {
				fieldMissing++
			}
		}
		if fieldMissing > 0 {
			byField[field] = float64(fieldMissing) / float64(len(ds))
		}
		missing += fieldMissing
	}
	return float64(missing) / float64(total), byField
}

func isMissing(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// duplicateRows counts rows whose full-record fingerprint was seen before.
func duplicateRows(ds analysis.Dataset) int {
	seen := make(map[core.RowHash]bool, len(ds))
	duplicates := 0
	for _, record := range ds {
		h := core.ComputeRowHash(record)
		if seen[h] {
			duplicates++
			continue
		}
		seen[h] = true
	}
	return duplicates
}

// invalidNumericCells measures, per numeric field, the fraction of
// non-empty values that fail to parse, averaged across fields.
func invalidNumericCells(ds analysis.Dataset, fields []string) (rate float64, byField map[string]float64) {
	byField = make(map[string]float64, len(fields))
	if len(fields) == 0 {
		return 0, byField
	}
	var sum float64
	for _, field := range fields {
		nonEmpty, invalid := 0, 0
		for _, record := range ds {
			raw, ok := record[field]
			if !ok || isMissing(raw) {
				continue
			}
			nonEmpty++
			if _, ok := toFloat(raw); !ok {
				invalid++
			}
		}
		var fieldRate float64
		if nonEmpty > 0 {
			fieldRate = float64(invalid) / float64(nonEmpty)
		}
		if fieldRate > 0 {
			byField[field] = fieldRate
		}
		sum += fieldRate
	}
	return sum / float64(len(fields)), byField
}

// outlierRates measures the IQR-outlier fraction per numeric field and the
// average across fields.
func outlierRates(ds analysis.Dataset, fields []string) (rate float64, byField map[string]float64) {
	byField = make(map[string]float64, len(fields))
	if len(fields) == 0 {
		return 0, byField
	}
	var sum float64
	counted := 0
	for _, field := range fields {
		values := numericValues(ds, field)
		if len(values) < minAnomalySamples {
			continue
		}
		q1, q3 := quartiles(values)
		iqr := q3 - q1
		lower, upper := q1-iqrFenceFactor*iqr, q3+iqrFenceFactor*iqr
		outliers := 0
		for _, v := range values {
			if v < lower || v > upper {
				outliers++
			}
		}
		fieldRate := float64(outliers) / float64(len(values))
		if fieldRate > 0 {
			byField[field] = fieldRate
		}
		sum += fieldRate
		counted++
	}
	if counted == 0 {
		return 0, byField
	}
	return sum / float64(counted), byField
}

func (e *Engine) collectIssues(rows int, missingByField map[string]float64, duplicates int, invalidByField, outlierByField map[string]float64) []analysis.QualityIssue {
	var issues []analysis.QualityIssue

	for field, rate := range missingByField {
		severity := analysis.SeverityLow
		if rate > missingHighThreshold {
			severity = analysis.SeverityHigh
		} else if rate > missingMediumThreshold {
			severity = analysis.SeverityMedium
		}
		issues = append(issues, analysis.QualityIssue{
			Kind:        "missing_values",
			Field:       field,
			Severity:    severity,
			Ratio:       rate,
			Description: fmt.Sprintf("%.1f%% of values in %q are missing", rate*100, field),
		})
	}

	if duplicates > 0 {
		rate := float64(duplicates) / float64(rows)
		severity := analysis.SeverityLow
		if rate > missingMediumThreshold {
			severity = analysis.SeverityMedium
		}
		issues = append(issues, analysis.QualityIssue{
			Kind:        "duplicates",
			Severity:    severity,
			Ratio:       rate,
			Description: fmt.Sprintf("%d duplicate rows (%.1f%% of the dataset)", duplicates, rate*100),
		})
	}

	for field, rate := range invalidByField {
		issues = append(issues, analysis.QualityIssue{
			Kind:        "invalid_values",
			Field:       field,
			Severity:    analysis.SeverityMedium,
			Ratio:       rate,
			Description: fmt.Sprintf("%.1f%% of non-empty values in %q are not numeric", rate*100, field),
		})
	}

	for field, rate := range outlierByField {
		if rate <= outlierIssueThreshold {
			continue
		}
		issues = append(issues, analysis.QualityIssue{
			Kind:        "outliers",
			Field:       field,
			Severity:    analysis.SeverityMedium,
			Ratio:       rate,
			Description: fmt.Sprintf("%.1f%% of values in %q fall outside the IQR fences", rate*100, field),
		})
	}

	sortIssues(issues)
	return issues
}

// sortIssues orders issues by severity then kind and field for stable output.
func sortIssues(issues []analysis.QualityIssue) {
	rank := map[analysis.Severity]int{
		analysis.SeverityHigh:   0,
		analysis.SeverityMedium: 1,
		analysis.SeverityLow:    2,
	}
	sort.Slice(issues, func(i, j int) bool {
		if rank[issues[i].Severity] != rank[issues[j].Severity] {
			return rank[issues[i].Severity] < rank[issues[j].Severity]
		}
		if issues[i].Kind != issues[j].Kind {
			return issues[i].Kind < issues[j].Kind
		}
		return issues[i].Field < issues[j].Field
	})
}

func recommendFixes(issues []analysis.QualityIssue) []string {
	var recs []string
	seen := make(map[string]bool)
	for _, issue := range issues {
		var rec string
		switch issue.Kind {
		case "missing_values":
			rec = "Fill or drop missing values before relying on trend and correlation output"
		case "duplicates":
			rec = "Deduplicate rows to avoid double-counting in correlations and quality scores"
		case "invalid_values":
			rec = "Clean non-numeric entries in numeric columns; they are excluded from every statistic"
		case "outliers":
			rec = "Review flagged outliers; consider whether they are data errors or real events"
		}
		if rec != "" && !seen[rec] {
			seen[rec] = true
			recs = append(recs, rec)
		}
	}
	return recs
}
