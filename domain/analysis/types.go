package analysis

import (
	"time"
)

// DataPoint is one record of a tabular dataset: field name to raw value.
// Values may be numeric, textual, or dates depending on the upstream parser.
type DataPoint map[string]interface{}

// Dataset is an ordered sequence of records. Row order is the implicit
// time/sequence axis when no explicit date field exists.
type Dataset []DataPoint

// TrendDirection classifies the overall movement of a numeric field.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
	TrendVolatile   TrendDirection = "volatile"
)

// Severity tiers shared by anomalies and data quality issues.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Interval is a two-sided confidence interval at the given level.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// ChangePoint marks an index where a sliding-window mean shift exceeded
// the relative-magnitude threshold.
type ChangePoint struct {
	Index     int       `json:"index"`
	Date      time.Time `json:"date"`
	Magnitude float64   `json:"magnitude"`
	Direction string    `json:"direction"` // "up" or "down"
}

// TrendResult describes the linear trend of one numeric field.
//
// FitScore is R-squared expressed as a percentage (0-100). PValue comes
// from the significance test on the slope; these are deliberately separate
// fields rather than one overloaded "confidence" value.
type TrendResult struct {
	Field        string         `json:"field"`
	Direction    TrendDirection `json:"direction"`
	Slope        float64        `json:"slope"`
	Intercept    float64        `json:"intercept"`
	Strength     float64        `json:"strength"`   // abs(slope)
	FitScore     float64        `json:"fit_score"`  // R² × 100, clamped to [0,100]
	Volatility   float64        `json:"volatility"` // residual coefficient of variation
	TStatistic   float64        `json:"t_statistic"`
	PValue       float64        `json:"p_value"`
	Significant  bool           `json:"significant"`
	SlopeCI      Interval       `json:"slope_ci"`
	ChangePoints []ChangePoint  `json:"change_points,omitempty"`
	SampleSize   int            `json:"sample_size"`
}

// RelationshipStrength buckets the absolute Pearson correlation.
type RelationshipStrength string

const (
	RelationshipWeak     RelationshipStrength = "weak"
	RelationshipModerate RelationshipStrength = "moderate"
	RelationshipStrong   RelationshipStrength = "strong"
)

// CorrelationResult is a retained pairwise Pearson correlation.
type CorrelationResult struct {
	FieldA       string               `json:"field_a"`
	FieldB       string               `json:"field_b"`
	R            float64              `json:"r"`
	Relationship RelationshipStrength `json:"relationship"`
	Sign         string               `json:"sign"` // "positive" or "negative"
	TStatistic   float64              `json:"t_statistic"`
	PValue       float64              `json:"p_value"`
	DF           int                  `json:"df"` // n - 2
	FisherCI     Interval             `json:"fisher_ci"`
	SampleSize   int                  `json:"sample_size"`
}

// ForecastModel names the extrapolator actually applied. These are the
// neutral internal names; display labels live at the presentation boundary.
type ForecastModel string

const (
	ModelLinear    ForecastModel = "linear"
	ModelSmoothing ForecastModel = "smoothing"
)

// ForecastBasis records which dispatch rule selected the model.
type ForecastBasis string

const (
	BasisShortSeries  ForecastBasis = "short_series"
	BasisStableTrend  ForecastBasis = "stable_trend"
	BasisLongVolatile ForecastBasis = "long_volatile"
	BasisSeasonal     ForecastBasis = "seasonal"
	BasisDefault      ForecastBasis = "default"
)

// ForecastPoint is one projected value. Confidence is the decaying
// projection score for the step, not a statistical probability.
type ForecastPoint struct {
	Offset     int       `json:"offset"` // steps ahead, starting at 1
	Date       time.Time `json:"date"`
	Value      float64   `json:"value"`
	Confidence float64   `json:"confidence"`
}

// ForecastResult is the projection for one numeric field.
type ForecastResult struct {
	Field    string          `json:"field"`
	Model    ForecastModel   `json:"model"`
	Basis    ForecastBasis   `json:"basis"`
	Points   []ForecastPoint `json:"points"`
	Accuracy float64         `json:"accuracy"` // back-tested, 0-100
	Trend    TrendDirection  `json:"trend"`
}

// Anomaly is a single value outside the IQR fences.
type Anomaly struct {
	Index     int       `json:"index"`
	Date      time.Time `json:"date"`
	Value     float64   `json:"value"`
	Severity  Severity  `json:"severity"`
	Deviation float64   `json:"deviation"` // distance beyond the nearest fence
}

// AnomalyResult lists the outliers of one field. Fields with no anomalies
// are omitted from the aggregate result entirely.
type AnomalyResult struct {
	Field     string    `json:"field"`
	Anomalies []Anomaly `json:"anomalies"`
}

// CauseCandidate is one correlation-ranked candidate explanation.
type CauseCandidate struct {
	Field        string  `json:"field"`
	R            float64 `json:"r"`
	Contribution float64 `json:"contribution"` // |r| × 100
	Confidence   float64 `json:"confidence"`   // 1 - p
}

// CorrelationBasedCauses ranks candidate causes for a field whose trend
// contains change points. The ranking is association strength, not verified
// causality; CausalChain is the top-3 association chain, nothing more.
type CorrelationBasedCauses struct {
	Effect      string           `json:"effect"`
	Candidates  []CauseCandidate `json:"candidates"`
	CausalChain []string         `json:"causal_chain"`
}

// QualityIssue describes one concrete data problem found by the assessor.
type QualityIssue struct {
	Kind        string   `json:"kind"` // "missing_values", "duplicates", "invalid_values", "outliers"
	Field       string   `json:"field,omitempty"`
	Severity    Severity `json:"severity"`
	Ratio       float64  `json:"ratio"` // affected fraction, 0-1
	Description string   `json:"description"`
}

// DataQualityResult is the weighted composite quality assessment.
// All dimension scores are 0-100. Accuracy and Timeliness are fixed
// placeholder defaults (no ground truth available), surfaced as explicit
// configuration rather than buried constants.
type DataQualityResult struct {
	Completeness    float64        `json:"completeness"`
	Consistency     float64        `json:"consistency"`
	Accuracy        float64        `json:"accuracy"`
	Validity        float64        `json:"validity"`
	Uniqueness      float64        `json:"uniqueness"`
	Timeliness      float64        `json:"timeliness"`
	Score           float64        `json:"score"`
	RowCount        int            `json:"row_count"`
	DuplicateRows   int            `json:"duplicate_rows"`
	Issues          []QualityIssue `json:"issues,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
}

// HypothesisTestResult reports one statistical test on a single field.
type HypothesisTestResult struct {
	Field       string  `json:"field"`
	Test        string  `json:"test"` // "one_sample_t" or "jarque_bera"
	Statistic   float64 `json:"statistic"`
	PValue      float64 `json:"p_value"`
	Critical    float64 `json:"critical"`
	Significant bool    `json:"significant"`
	Conclusion  string  `json:"conclusion"`
	SampleSize  int     `json:"sample_size"`
}

// MeanInterval is the 95% confidence interval on a field's mean.
type MeanInterval struct {
	Field      string   `json:"field"`
	Mean       float64  `json:"mean"`
	CI         Interval `json:"ci"`
	SampleSize int      `json:"sample_size"`
}

// InsightType categorizes synthesized insights.
type InsightType string

const (
	InsightTrend       InsightType = "trend"
	InsightCorrelation InsightType = "correlation"
	InsightAnomaly     InsightType = "anomaly"
	InsightForecast    InsightType = "forecast"
	InsightCausal      InsightType = "causal"
)

// Priority orders insights for presentation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Insight is one ranked, human-readable finding.
type Insight struct {
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Confidence  float64     `json:"confidence"` // 0-100
	Actionable  bool        `json:"actionable"`
	Priority    Priority    `json:"priority"`
}

// Summary is the executive summary block.
type Summary struct {
	KeyFindings     []string  `json:"key_findings"`
	Recommendations []string  `json:"recommendations"`
	ConfidenceScore float64   `json:"confidence_score"` // 0-1, fixed default
	GeneratedAt     time.Time `json:"generated_at"`
}

// Result aggregates every analysis pass over one dataset. It is produced
// fresh per call and never mutated afterwards.
type Result struct {
	NumericFields []string `json:"numeric_fields"`
	DateField     string   `json:"date_field,omitempty"`
	RowCount      int      `json:"row_count"`

	Trends         []TrendResult            `json:"trends"`
	Correlations   []CorrelationResult      `json:"correlations"`
	Forecasts      []ForecastResult         `json:"forecasts"`
	Anomalies      []AnomalyResult          `json:"anomalies"`
	RootCauses     []CorrelationBasedCauses `json:"root_causes"`
	Quality        DataQualityResult        `json:"quality"`
	MeanTests      []HypothesisTestResult   `json:"mean_tests"`
	NormalityTests []HypothesisTestResult   `json:"normality_tests"`
	MeanIntervals  []MeanInterval           `json:"mean_intervals"`

	Insights []Insight `json:"insights"`
	Summary  Summary   `json:"summary"`

	GeneratedAt time.Time `json:"generated_at"`
}

// NewResult returns a Result with all collections allocated empty so that
// callers and serializers never see nil slices.
func NewResult() *Result {
	return &Result{
		NumericFields:  []string{},
		Trends:         []TrendResult{},
		Correlations:   []CorrelationResult{},
		Forecasts:      []ForecastResult{},
		Anomalies:      []AnomalyResult{},
		RootCauses:     []CorrelationBasedCauses{},
		MeanTests:      []HypothesisTestResult{},
		NormalityTests: []HypothesisTestResult{},
		MeanIntervals:  []MeanInterval{},
		Insights:       []Insight{},
	}
}
