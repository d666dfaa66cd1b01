// Package timeline orders each person's dated document events and flags
// coverage gaps and impossible orderings between process steps.
package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/meridian-legal/docaudit/internal/config"
	"github.com/meridian-legal/docaudit/internal/doctype"
	"github.com/meridian-legal/docaudit/internal/model"
)

// orderRules encode which document events must precede which: a receipt
// notice comes before the approval it led to, a wage determination before
// the labor certification that relied on it.
var orderRules = []struct {
	earlier model.DocumentType
	later   model.DocumentType
	message string
}{
	{model.DocTypeI797C, model.DocTypeI797, "approval notice predates its receipt notice"},
	{model.DocTypePWD, model.DocTypePERM, "labor certification predates its prevailing wage determination"},
}

// Builder constructs per-person timelines.
type Builder struct {
	cfg config.TimelineConfig
}

// New creates a Builder.
func New(cfg config.TimelineConfig) *Builder {
	return &Builder{cfg: cfg}
}

// Build produces the ordered event list for all persons plus any gap and
// ordering issues. Events sort by date ascending with ties broken by the
// originating page index, so identical inputs always produce an identical
// timeline.
func (b *Builder) Build(persons []model.Person, segments []model.DocumentSegment) ([]model.TimelineEvent, []model.ValidationIssue) {
	byID := make(map[string]*model.DocumentSegment, len(segments))
	for i := range segments {
		byID[segments[i].ID] = &segments[i]
	}

	var events []model.TimelineEvent
	var issues []model.ValidationIssue

	for _, person := range persons {
		personEvents := b.personEvents(person, byID)
		issues = append(issues, b.gapIssues(personEvents)...)
		issues = append(issues, b.orderingIssues(personEvents)...)
		events = append(events, personEvents...)
	}

	return events, issues
}

func (b *Builder) personEvents(person model.Person, byID map[string]*model.DocumentSegment) []model.TimelineEvent {
	var events []model.TimelineEvent
	for _, segID := range person.LinkedSegmentIDs {
		seg, ok := byID[segID]
		if !ok {
			continue
		}
		field, raw, ok := doctype.EventDate(seg)
		if !ok {
			continue
		}
		t, parsed := model.ParseDate(raw)
		if !parsed {
			continue
		}
		events = append(events, model.TimelineEvent{
			PersonID:        person.ID,
			Date:            t,
			SourceSegmentID: seg.ID,
			SourceType:      seg.Type,
			PageIndex:       seg.PageStart,
			Description:     fmt.Sprintf("%s %s", seg.Type, field),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].PageIndex < events[j].PageIndex
	})
	return events
}

// gapIssues flags stretches between consecutive events longer than the
// configured threshold: a year with no paperwork in an active case usually
// means documents are missing from the file.
func (b *Builder) gapIssues(events []model.TimelineEvent) []model.ValidationIssue {
	if b.cfg.GapThresholdDays <= 0 {
		return nil
	}
	threshold := time.Duration(b.cfg.GapThresholdDays) * 24 * time.Hour

	var issues []model.ValidationIssue
	for i := 1; i < len(events); i++ {
		gap := events[i].Date.Sub(events[i-1].Date)
		if gap > threshold {
			issues = append(issues, model.NewCrossDocumentIssue(model.SeverityInfo,
				[]string{events[i-1].SourceSegmentID, events[i].SourceSegmentID},
				fmt.Sprintf("coverage gap: %d days between %s (%s) and %s (%s)",
					int(gap.Hours()/24),
					events[i-1].Description, events[i-1].Date.Format("2006-01-02"),
					events[i].Description, events[i].Date.Format("2006-01-02"))))
		}
	}
	return issues
}

// orderingIssues checks each order rule against the person's earliest event
// of each document type.
func (b *Builder) orderingIssues(events []model.TimelineEvent) []model.ValidationIssue {
	earliest := make(map[model.DocumentType]model.TimelineEvent)
	for _, ev := range events {
		if _, seen := earliest[ev.SourceType]; !seen {
			earliest[ev.SourceType] = ev // events are already date-ordered
		}
	}

	var issues []model.ValidationIssue
	for _, rule := range orderRules {
		before, okBefore := earliest[rule.earlier]
		after, okAfter := earliest[rule.later]
		if okBefore && okAfter && after.Date.Before(before.Date) {
			issues = append(issues, model.NewCrossDocumentIssue(model.SeverityError,
				[]string{before.SourceSegmentID, after.SourceSegmentID},
				fmt.Sprintf("%s: %s %s vs %s %s",
					rule.message,
					rule.later, after.Date.Format("2006-01-02"),
					rule.earlier, before.Date.Format("2006-01-02"))))
		}
	}
	return issues
}
