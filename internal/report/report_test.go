package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-legal/docaudit/internal/config"
	"github.com/meridian-legal/docaudit/internal/model"
)

func testGenerator() *Generator {
	return New(
		config.ReportConfig{ConfidenceWeight: 0.6, IssueWeight: 0.4},
		config.CasesConfig{Requirements: config.DefaultCaseRequirements()},
	)
}

func extracted(id string, typ model.DocumentType, conf float64) model.DocumentSegment {
	return model.DocumentSegment{
		ID:     id,
		Type:   typ,
		Status: model.SegmentExtracted,
		Fields: map[string]model.FieldValue{
			"field_a": {Value: "x", Confidence: conf},
		},
	}
}

func TestFinalize_CleanRunScoresHigh(t *testing.T) {
	g := testGenerator()
	rep := &model.AuditReport{
		RunID:    "run-1",
		CaseType: "perm",
		Segments: []model.DocumentSegment{
			extracted("seg-001", model.DocTypePWD, 1.0),
			extracted("seg-002", model.DocTypePERM, 1.0),
			extracted("seg-003", model.DocTypeI797, 1.0),
			extracted("seg-004", model.DocTypeForeignPassport, 1.0),
		},
	}

	g.Finalize(rep)
	assert.InDelta(t, 1.0, rep.QualityScore, 1e-9)
	assert.Empty(t, rep.Recommendations)
}

func TestFinalize_IssuesLowerTheScore(t *testing.T) {
	g := testGenerator()

	base := &model.AuditReport{
		Segments: []model.DocumentSegment{extracted("seg-001", model.DocTypeI797, 0.8)},
	}
	g.Finalize(base)

	withIssues := &model.AuditReport{
		Segments: []model.DocumentSegment{extracted("seg-001", model.DocTypeI797, 0.8)},
		Issues: []model.ValidationIssue{
			model.NewFieldIssue(model.SeverityError, "seg-001", "x", "bad"),
			model.NewFieldIssue(model.SeverityWarning, "seg-001", "y", "odd"),
		},
	}
	g.Finalize(withIssues)

	assert.Less(t, withIssues.QualityScore, base.QualityScore)
	// error 0.15 + warning 0.05 of the 0.4 issue component
	assert.InDelta(t, base.QualityScore-0.4*0.20, withIssues.QualityScore, 1e-9)
}

func TestFinalize_AllFailedStillScored(t *testing.T) {
	g := testGenerator()
	rep := &model.AuditReport{
		Segments: []model.DocumentSegment{
			{ID: "seg-001", Type: model.DocTypeI797, Status: model.SegmentFailedExtraction},
		},
	}

	g.Finalize(rep)
	// No extraction confidence contributes; the issue component remains.
	assert.InDelta(t, 0.4, rep.QualityScore, 1e-9)
}

func TestFinalize_PenaltyCapped(t *testing.T) {
	g := testGenerator()
	rep := &model.AuditReport{
		Segments: []model.DocumentSegment{extracted("seg-001", model.DocTypeI797, 0.5)},
	}
	for i := 0; i < 20; i++ {
		rep.Issues = append(rep.Issues, model.NewFieldIssue(model.SeverityError, "seg-001", "f", "bad"))
	}

	g.Finalize(rep)
	// 20 errors exceed the cap: issue component bottoms out at zero.
	assert.InDelta(t, 0.6*0.5, rep.QualityScore, 1e-9)
}

func TestRecommendations_MissingTypesForCase(t *testing.T) {
	g := testGenerator()
	rep := &model.AuditReport{
		CaseType: "perm",
		Segments: []model.DocumentSegment{
			extracted("seg-001", model.DocTypePWD, 0.9),
			extracted("seg-002", model.DocTypeI797, 0.9),
		},
		Persons: []model.Person{
			{ID: "person-01", LinkedSegmentIDs: []string{"seg-001", "seg-002"}},
		},
	}

	g.Finalize(rep)
	assert.Equal(t, []string{"missing: PERM", "missing: FOREIGN_PASSPORT"}, rep.Recommendations)
}

func TestRecommendations_PrimaryPersonWins(t *testing.T) {
	g := testGenerator()
	rep := &model.AuditReport{
		CaseType: "default",
		Segments: []model.DocumentSegment{
			extracted("seg-001", model.DocTypeI797, 0.9),
			extracted("seg-002", model.DocTypeI94, 0.9),
			extracted("seg-003", model.DocTypeForeignPassport, 0.9),
		},
		Persons: []model.Person{
			{ID: "person-01", LinkedSegmentIDs: []string{"seg-001", "seg-002"}},
			{ID: "person-02", LinkedSegmentIDs: []string{"seg-003"}},
		},
	}

	g.Finalize(rep)
	// The primary person's file lacks a passport even though the case file
	// as a whole contains one.
	assert.Equal(t, []string{"missing: FOREIGN_PASSPORT"}, rep.Recommendations)
}

func TestRecommendations_NoPersonsFallsBackToWholeFile(t *testing.T) {
	g := testGenerator()
	rep := &model.AuditReport{
		CaseType: "default",
		Segments: []model.DocumentSegment{
			extracted("seg-001", model.DocTypeI797, 0.9),
			extracted("seg-002", model.DocTypeForeignPassport, 0.9),
			extracted("seg-003", model.DocTypeI94, 0.9),
		},
	}

	g.Finalize(rep)
	assert.Empty(t, rep.Recommendations)
}

func TestSortIssues(t *testing.T) {
	issues := []model.ValidationIssue{
		model.NewFieldIssue(model.SeverityInfo, "seg-002", "a", "i"),
		model.NewFieldIssue(model.SeverityError, "seg-003", "b", "e"),
		model.NewFieldIssue(model.SeverityWarning, "seg-001", "c", "w"),
		model.NewFieldIssue(model.SeverityError, "seg-001", "d", "e2"),
	}
	SortIssues(issues)

	assert.Equal(t, model.SeverityError, issues[0].Severity)
	assert.Equal(t, "seg-001", issues[0].SegmentIDs[0])
	assert.Equal(t, model.SeverityError, issues[1].Severity)
	assert.Equal(t, model.SeverityWarning, issues[2].Severity)
	assert.Equal(t, model.SeverityInfo, issues[3].Severity)
}

func TestMarkdown_ContainsSections(t *testing.T) {
	g := testGenerator()
	rep := &model.AuditReport{
		RunID:    "run-9",
		CaseType: "h1b",
		Segments: []model.DocumentSegment{extracted("seg-001", model.DocTypeI797, 0.9)},
		Persons:  []model.Person{{ID: "person-01", NameVariants: []string{"A B"}, LinkedSegmentIDs: []string{"seg-001"}}},
		Issues:   []model.ValidationIssue{model.NewFieldIssue(model.SeverityError, "seg-001", "f", "broken")},
	}
	g.Finalize(rep)

	md := Markdown(rep)
	require.NotEmpty(t, md)
	for _, want := range []string{"# Audit Report run-9", "## Documents", "## Persons", "## Issues", "## Recommendations", "broken"} {
		assert.True(t, strings.Contains(md, want), "markdown missing %q", want)
	}
}
