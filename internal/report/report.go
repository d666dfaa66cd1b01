// Package report assembles the final audit report: quality score, missing
// document recommendations, and the rendered output formats.
package report

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/meridian-legal/docaudit/internal/config"
	"github.com/meridian-legal/docaudit/internal/model"
)

// severityPenalty is the per-issue deduction applied to the issue component
// of the quality score. The total penalty caps at 1 so a pathological run
// bottoms out at zero instead of going negative.
var severityPenalty = map[model.Severity]float64{
	model.SeverityError:   0.15,
	model.SeverityWarning: 0.05,
	model.SeverityInfo:    0.01,
}

// Generator computes scores and recommendations for an assembled report.
type Generator struct {
	cfg   config.ReportConfig
	cases config.CasesConfig
}

// New creates a Generator.
func New(cfg config.ReportConfig, cases config.CasesConfig) *Generator {
	return &Generator{cfg: cfg, cases: cases}
}

// Finalize fills in the derived parts of the report: the quality score and
// the missing-document recommendations. All structural fields (segments,
// persons, issues, timeline) must already be set.
func (g *Generator) Finalize(rep *model.AuditReport) {
	rep.QualityScore = g.qualityScore(rep)
	rep.Recommendations = g.recommendations(rep)

	zap.L().Info("report: finalized",
		zap.String("run_id", rep.RunID),
		zap.Float64("quality_score", rep.QualityScore),
		zap.Int("segments", len(rep.Segments)),
		zap.Int("issues", len(rep.Issues)),
		zap.Int("recommendations", len(rep.Recommendations)),
	)
}

// qualityScore blends mean extraction confidence with an issue penalty. A
// run where every extraction failed scores on issues alone; a clean run with
// confident extractions approaches 1.
func (g *Generator) qualityScore(rep *model.AuditReport) float64 {
	score := g.cfg.ConfidenceWeight*meanConfidence(rep.Segments) +
		g.cfg.IssueWeight*(1-issuePenalty(rep.Issues))
	return clamp01(score)
}

// meanConfidence averages field confidences across successfully extracted
// segments. Failed segments contribute nothing rather than dragging the mean
// down twice: their absence already shows up as issues and recommendations.
func meanConfidence(segments []model.DocumentSegment) float64 {
	var sum float64
	var n int
	for i := range segments {
		seg := &segments[i]
		if seg.Status != model.SegmentExtracted {
			continue
		}
		for _, fv := range seg.Fields {
			if fv.Value == "" {
				continue
			}
			sum += fv.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func issuePenalty(issues []model.ValidationIssue) float64 {
	var penalty float64
	for _, is := range issues {
		penalty += severityPenalty[is.Severity]
	}
	if penalty > 1 {
		penalty = 1
	}
	return penalty
}

// recommendations lists the required document types for the case type that
// no segment of the primary person provides, in the order the requirement
// table declares them.
func (g *Generator) recommendations(rep *model.AuditReport) []string {
	required := g.cases.RequiredTypes(rep.CaseType)
	if len(required) == 0 {
		return nil
	}

	present := make(map[model.DocumentType]bool)
	primary := primaryPerson(rep.Persons)
	if primary != nil {
		linked := make(map[string]bool, len(primary.LinkedSegmentIDs))
		for _, id := range primary.LinkedSegmentIDs {
			linked[id] = true
		}
		for i := range rep.Segments {
			if linked[rep.Segments[i].ID] {
				present[rep.Segments[i].Type] = true
			}
		}
	} else {
		// No resolvable person: judge completeness against the whole file.
		for i := range rep.Segments {
			present[rep.Segments[i].Type] = true
		}
	}

	var recs []string
	for _, req := range required {
		if !present[model.DocumentType(req)] {
			recs = append(recs, fmt.Sprintf("missing: %s", req))
		}
	}
	return recs
}

// primaryPerson is the person with the most linked segments; ties go to the
// smaller person ID so the choice is deterministic.
func primaryPerson(persons []model.Person) *model.Person {
	var best *model.Person
	for i := range persons {
		p := &persons[i]
		if best == nil ||
			len(p.LinkedSegmentIDs) > len(best.LinkedSegmentIDs) ||
			(len(p.LinkedSegmentIDs) == len(best.LinkedSegmentIDs) && p.ID < best.ID) {
			best = p
		}
	}
	return best
}

// SortIssues orders issues for stable output: errors first, then warnings,
// then info, each group by first referenced segment.
func SortIssues(issues []model.ValidationIssue) {
	rank := map[model.Severity]int{
		model.SeverityError:   0,
		model.SeverityWarning: 1,
		model.SeverityInfo:    2,
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if rank[issues[i].Severity] != rank[issues[j].Severity] {
			return rank[issues[i].Severity] < rank[issues[j].Severity]
		}
		return firstSegment(issues[i]) < firstSegment(issues[j])
	})
}

func firstSegment(is model.ValidationIssue) string {
	if len(is.SegmentIDs) == 0 {
		return ""
	}
	return is.SegmentIDs[0]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
