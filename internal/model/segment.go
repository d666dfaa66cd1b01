package model

// SegmentStatus tracks a segment through the extraction stage.
type SegmentStatus string

const (
	SegmentPending          SegmentStatus = "pending"
	SegmentExtracted        SegmentStatus = "extracted"
	SegmentFailedExtraction SegmentStatus = "failed_extraction"
)

// FieldValue is one extracted field: the value, the confidence the
// extraction method reported for it, and which method produced it.
type FieldValue struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method,omitempty"`
}

// DocumentSegment is a contiguous page range classified as one logical
// document instance. Segments are created by the segmenter, filled in by the
// extractor and validator, and never deleted — a segment that cannot be
// extracted is marked failed_extraction and carried through to the report.
type DocumentSegment struct {
	ID             string                `json:"id"`
	Type           DocumentType          `json:"type"`
	PageStart      int                   `json:"page_start"`
	PageEnd        int                   `json:"page_end"` // inclusive
	TypeConfidence float64               `json:"type_confidence"`
	LowConfidence  bool                  `json:"low_confidence,omitempty"`
	Status         SegmentStatus         `json:"status"`
	Fields         map[string]FieldValue `json:"fields,omitempty"`
	Issues         []ValidationIssue     `json:"issues,omitempty"`
}

// PageCount returns the number of pages in the segment.
func (s *DocumentSegment) PageCount() int {
	return s.PageEnd - s.PageStart + 1
}

// ContainsPage reports whether page index i falls inside the segment's range.
func (s *DocumentSegment) ContainsPage(i int) bool {
	return i >= s.PageStart && i <= s.PageEnd
}

// Field returns the value of a named field and whether it is present with a
// non-empty value.
func (s *DocumentSegment) Field(name string) (FieldValue, bool) {
	fv, ok := s.Fields[name]
	if !ok || fv.Value == "" {
		return FieldValue{}, false
	}
	return fv, true
}

// FirstField returns the first present field among names, in the order given.
// Extraction output uses different field names per document type (beneficiary
// vs full_name vs holder_name), so callers probe a preference list.
func (s *DocumentSegment) FirstField(names ...string) (string, bool) {
	for _, n := range names {
		if fv, ok := s.Field(n); ok {
			return fv.Value, true
		}
	}
	return "", false
}
