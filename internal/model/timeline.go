package model

import "time"

// TimelineEvent is one dated event in a person's document history. Events
// are ordered by date ascending, ties broken by originating page index.
type TimelineEvent struct {
	PersonID        string       `json:"person_id"`
	Date            time.Time    `json:"date"`
	SourceSegmentID string       `json:"source_segment_id"`
	SourceType      DocumentType `json:"source_type"`
	PageIndex       int          `json:"page_index"`
	Description     string       `json:"description"`
}
