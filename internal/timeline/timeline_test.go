package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-legal/docaudit/internal/config"
	"github.com/meridian-legal/docaudit/internal/model"
)

func seg(id string, typ model.DocumentType, pageStart int, fields map[string]model.FieldValue) model.DocumentSegment {
	return model.DocumentSegment{
		ID:        id,
		Type:      typ,
		PageStart: pageStart,
		PageEnd:   pageStart,
		Status:    model.SegmentExtracted,
		Fields:    fields,
	}
}

func fv(v string) model.FieldValue {
	return model.FieldValue{Value: v, Confidence: 0.9}
}

func person(id string, segIDs ...string) model.Person {
	return model.Person{ID: id, LinkedSegmentIDs: segIDs}
}

func TestBuild_OrdersEventsByDate(t *testing.T) {
	b := New(config.TimelineConfig{GapThresholdDays: 365})

	segments := []model.DocumentSegment{
		seg("seg-001", model.DocTypeI797, 0, map[string]model.FieldValue{
			"notice_date": fv("2024-05-01"),
		}),
		seg("seg-002", model.DocTypeI94, 1, map[string]model.FieldValue{
			"arrival_date": fv("2023-11-20"),
		}),
		seg("seg-003", model.DocTypeVisaStamp, 2, map[string]model.FieldValue{
			"issue_date": fv("2023-10-02"),
		}),
	}
	persons := []model.Person{person("person-01", "seg-001", "seg-002", "seg-003")}

	events, issues := b.Build(persons, segments)
	require.Len(t, events, 3)
	assert.Equal(t, "seg-003", events[0].SourceSegmentID)
	assert.Equal(t, "seg-002", events[1].SourceSegmentID)
	assert.Equal(t, "seg-001", events[2].SourceSegmentID)
	assert.Equal(t, "VISA_STAMP issue_date", events[0].Description)
	assert.Empty(t, issues)
}

func TestBuild_SameDateTiesBreakByPage(t *testing.T) {
	b := New(config.TimelineConfig{GapThresholdDays: 365})

	segments := []model.DocumentSegment{
		seg("seg-002", model.DocTypeI94, 5, map[string]model.FieldValue{
			"arrival_date": fv("2024-01-01"),
		}),
		seg("seg-001", model.DocTypeI797, 2, map[string]model.FieldValue{
			"notice_date": fv("2024-01-01"),
		}),
	}
	persons := []model.Person{person("person-01", "seg-002", "seg-001")}

	events, _ := b.Build(persons, segments)
	require.Len(t, events, 2)
	assert.Equal(t, "seg-001", events[0].SourceSegmentID)
	assert.Equal(t, "seg-002", events[1].SourceSegmentID)
}

func TestBuild_CoverageGap(t *testing.T) {
	b := New(config.TimelineConfig{GapThresholdDays: 365})

	segments := []model.DocumentSegment{
		seg("seg-001", model.DocTypeI797C, 0, map[string]model.FieldValue{
			"received_date": fv("2020-01-01"),
		}),
		seg("seg-002", model.DocTypeI797, 1, map[string]model.FieldValue{
			"notice_date": fv("2023-06-01"),
		}),
	}
	persons := []model.Person{person("person-01", "seg-001", "seg-002")}

	_, issues := b.Build(persons, segments)
	require.Len(t, issues, 1)
	assert.Equal(t, model.SeverityInfo, issues[0].Severity)
	assert.Equal(t, model.ScopeCrossDocument, issues[0].Scope)
	assert.Contains(t, issues[0].Message, "coverage gap")
	assert.Equal(t, []string{"seg-001", "seg-002"}, issues[0].SegmentIDs)
}

func TestBuild_ApprovalBeforeReceiptIsError(t *testing.T) {
	b := New(config.TimelineConfig{GapThresholdDays: 0}) // gaps off

	segments := []model.DocumentSegment{
		seg("seg-001", model.DocTypeI797, 0, map[string]model.FieldValue{
			"notice_date": fv("2023-01-15"),
		}),
		seg("seg-002", model.DocTypeI797C, 1, map[string]model.FieldValue{
			"received_date": fv("2023-09-01"),
		}),
	}
	persons := []model.Person{person("person-01", "seg-001", "seg-002")}

	_, issues := b.Build(persons, segments)
	require.Len(t, issues, 1)
	assert.Equal(t, model.SeverityError, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "approval notice predates")
}

func TestBuild_PermBeforePWDIsError(t *testing.T) {
	b := New(config.TimelineConfig{GapThresholdDays: 0})

	segments := []model.DocumentSegment{
		seg("seg-001", model.DocTypePERM, 0, map[string]model.FieldValue{
			"determination_date": fv("2022-03-01"),
		}),
		seg("seg-002", model.DocTypePWD, 1, map[string]model.FieldValue{
			"determination_date": fv("2022-08-01"),
		}),
	}
	persons := []model.Person{person("person-01", "seg-001", "seg-002")}

	_, issues := b.Build(persons, segments)
	require.Len(t, issues, 1)
	assert.Equal(t, model.SeverityError, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "prevailing wage")
}

func TestBuild_UndatedSegmentsSkipped(t *testing.T) {
	b := New(config.TimelineConfig{GapThresholdDays: 365})

	segments := []model.DocumentSegment{
		seg("seg-001", model.DocTypeUnknown, 0, map[string]model.FieldValue{
			"full_name": fv("Somebody"),
		}),
	}
	persons := []model.Person{person("person-01", "seg-001")}

	events, issues := b.Build(persons, segments)
	assert.Empty(t, events)
	assert.Empty(t, issues)
}
