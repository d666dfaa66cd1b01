package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// ErrInvalidInput is returned when an audit run is started with no pages.
// It is the only fatal error the pipeline surfaces; everything downstream
// degrades to segment-level failures and validation issues.
var ErrInvalidInput = eris.New("invalid input")

// RunStatus tracks a persisted audit run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusComplete  RunStatus = "complete"
	RunStatusFailed    RunStatus = "failed"
)

// Run is a persisted audit run record.
type Run struct {
	ID        string       `json:"id"`
	FileName  string       `json:"file_name"`
	CaseType  string       `json:"case_type,omitempty"`
	Status    RunStatus    `json:"status"`
	Report    *AuditReport `json:"report,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// AuditReport is the terminal output of a pipeline run: a plain structured
// value with no behavior, serializable field by field.
type AuditReport struct {
	RunID           string            `json:"run_id"`
	CaseType        string            `json:"case_type,omitempty"`
	PageCount       int               `json:"page_count"`
	Segments        []DocumentSegment `json:"segments"`
	Persons         []Person          `json:"persons"`
	Issues          []ValidationIssue `json:"issues"`
	Timeline        []TimelineEvent   `json:"timeline"`
	QualityScore    float64           `json:"quality_score"`
	Recommendations []string          `json:"recommendations"`
	Partial         bool              `json:"partial,omitempty"`
}

// IssueCount returns the number of issues at the given severity across the
// whole report.
func (r *AuditReport) IssueCount(sev Severity) int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == sev {
			n++
		}
	}
	return n
}

// SegmentByID looks up a segment in the report.
func (r *AuditReport) SegmentByID(id string) *DocumentSegment {
	for i := range r.Segments {
		if r.Segments[i].ID == id {
			return &r.Segments[i]
		}
	}
	return nil
}
