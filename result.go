package bodsmap

import (
	"fmt"
	"time"

	"github.com/agentstation/utc"
)

// Result represents the outcome of a conversion run.
type Result struct {
	RunID  string `json:"run_id"`
	Policy string `json:"policy"`

	// RowsRead counts non-blank input lines
	RowsRead int `json:"rows_read"`

	// Malformed counts lines skipped because they were not valid JSON
	Malformed int `json:"malformed"`

	// StatementsMapped counts statements that produced a record
	StatementsMapped int `json:"statements_mapped"`

	// StatementsDropped counts statements of unknown type or without an identity key
	StatementsDropped int `json:"statements_dropped"`

	// CacheRecords is the number of distinct identity keys after reading
	CacheRecords int `json:"cache_records"`

	// RecordsWritten counts records written to the sink
	RecordsWritten int `json:"records_written"`

	// Orphans counts relationship fragments whose subject never appeared
	Orphans int `json:"orphans"`

	// Interrupted is set when the context was cancelled before input ended
	Interrupted bool `json:"interrupted"`

	StartTime utc.Time      `json:"start_time"`
	EndTime   utc.Time      `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

func newResult(runID, policy string) *Result {
	return &Result{
		RunID:     runID,
		Policy:    policy,
		StartTime: utc.Now(),
	}
}

func (r *Result) finalize() {
	r.EndTime = utc.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	status := "completed in"
	if r.Interrupted {
		status = "aborted after"
	}
	return fmt.Sprintf("%d rows processed, %d rows written, %s %s",
		r.RowsRead, r.RecordsWritten, status, r.Duration.Round(time.Millisecond))
}
