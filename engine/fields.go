package engine

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"datalens/domain/analysis"
)

// dateLayouts are tried in order when sniffing date-like strings.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
}

// ClassifyFields inspects only the first record of the dataset and decides
// which fields are numeric and which (if any) carries the date axis.
//
// Precondition: the caller guarantees a homogeneous schema across rows. A
// field whose first value is blank or atypical will be misclassified for
// the whole run; upstream ingestion is responsible for pre-validating.
// Field names are returned in sorted order so repeated runs over the same
// dataset classify identically.
func ClassifyFields(ds analysis.Dataset) (numeric []string, dateField string) {
	if len(ds) == 0 {
		return nil, ""
	}

	first := ds[0]
	names := make([]string, 0, len(first))
	for name := range first {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := first[name]
		if _, ok := toFloat(value); ok {
			numeric = append(numeric, name)
			continue
		}
		if dateField == "" && isDateValue(value) {
			dateField = name
		}
	}
	return numeric, dateField
}

// toFloat coerces a raw record value to a float64. Strings are parsed;
// NaN and infinities are rejected so they never reach the statistics.
func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return toFloat(float64(v))
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// isDateValue reports whether a raw value is a date or parses as one.
func isDateValue(value interface{}) bool {
	switch v := value.(type) {
	case time.Time:
		return true
	case string:
		_, ok := parseDate(v)
		return ok
	default:
		return false
	}
}

func parseDate(s string) (time.Time, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// numericValues extracts the parseable values of one field, preserving row
// order. Unparseable or missing cells are dropped, not zeroed.
func numericValues(ds analysis.Dataset, field string) []float64 {
	values := make([]float64, 0, len(ds))
	for _, record := range ds {
		raw, ok := record[field]
		if !ok {
			continue
		}
		if v, ok := toFloat(raw); ok {
			values = append(values, v)
		}
	}
	return values
}
