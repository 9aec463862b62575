package analysis

import (
	"time"

	"datalens/domain/core"
)

// Run is one persisted analysis execution: which dataset was analyzed,
// when, and the full result it produced.
type Run struct {
	ID          core.RunID `json:"id"`
	DatasetName string     `json:"dataset_name"`
	RowCount    int        `json:"row_count"`
	FieldCount  int        `json:"field_count"`
	Result      *Result    `json:"result"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewRun stamps a result as a persistable run.
func NewRun(datasetName string, result *Result, now time.Time) *Run {
	return &Run{
		ID:          core.RunID(core.NewID()),
		DatasetName: datasetName,
		RowCount:    result.RowCount,
		FieldCount:  len(result.NumericFields),
		Result:      result,
		CreatedAt:   now,
	}
}
