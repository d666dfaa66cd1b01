package model

// Severity ranks how much a validation issue should worry the auditor.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// IssueScope says what a validation issue is about: a single field, a
// relationship between fields of one segment, or a relationship between
// segments of one person.
type IssueScope string

const (
	ScopeField         IssueScope = "field"
	ScopeCrossField    IssueScope = "cross_field"
	ScopeCrossDocument IssueScope = "cross_document"
)

// ValidationIssue is an immutable finding from validation, resolution, or
// timeline analysis. Issues are values, never errors: they accumulate on
// segments and in the report instead of aborting the run.
//
// A cross_document issue always references at least two segment IDs
// belonging to the same person.
type ValidationIssue struct {
	Severity   Severity   `json:"severity"`
	Scope      IssueScope `json:"scope"`
	SegmentIDs []string   `json:"segment_ids"`
	Field      string     `json:"field,omitempty"`
	Message    string     `json:"message"`
}

// NewFieldIssue builds a field-scope issue for one segment.
func NewFieldIssue(severity Severity, segmentID, field, message string) ValidationIssue {
	return ValidationIssue{
		Severity:   severity,
		Scope:      ScopeField,
		SegmentIDs: []string{segmentID},
		Field:      field,
		Message:    message,
	}
}

// NewCrossFieldIssue builds a cross_field issue within one segment.
func NewCrossFieldIssue(severity Severity, segmentID, message string) ValidationIssue {
	return ValidationIssue{
		Severity:   severity,
		Scope:      ScopeCrossField,
		SegmentIDs: []string{segmentID},
		Message:    message,
	}
}

// NewCrossDocumentIssue builds a cross_document issue spanning segments of
// one person.
func NewCrossDocumentIssue(severity Severity, segmentIDs []string, message string) ValidationIssue {
	ids := make([]string, len(segmentIDs))
	copy(ids, segmentIDs)
	return ValidationIssue{
		Severity:   severity,
		Scope:      ScopeCrossDocument,
		SegmentIDs: ids,
		Message:    message,
	}
}
