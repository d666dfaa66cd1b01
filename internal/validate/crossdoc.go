package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/meridian-legal/docaudit/internal/doctype"
	"github.com/meridian-legal/docaudit/internal/model"
	"github.com/meridian-legal/docaudit/internal/resolve"
)

// CrossDocument re-checks consistency across each person's segments once
// resolution has grouped them. It runs only after every extraction has
// reached a terminal state — never against in-flight segments.
func (v *Validator) CrossDocument(persons []model.Person, segments []model.DocumentSegment) []model.ValidationIssue {
	byID := make(map[string]*model.DocumentSegment, len(segments))
	for i := range segments {
		byID[segments[i].ID] = &segments[i]
	}

	var issues []model.ValidationIssue
	for _, person := range persons {
		if len(person.LinkedSegmentIDs) < 2 {
			continue
		}
		var segs []*model.DocumentSegment
		for _, id := range person.LinkedSegmentIDs {
			if seg, ok := byID[id]; ok {
				segs = append(segs, seg)
			}
		}
		if len(segs) < 2 {
			continue
		}
		issues = append(issues, v.nameConsistency(segs)...)
		issues = append(issues, v.dobConsistency(segs)...)
		issues = append(issues, v.citizenshipConsistency(segs)...)
	}
	return issues
}

// nameConsistency warns when a person's documents spell the name
// differently even after normalization would have matched them for
// clustering — e.g. "J. Smith" linked via a shared receipt number to
// "John Smith".
func (v *Validator) nameConsistency(segs []*model.DocumentSegment) []model.ValidationIssue {
	variants := make(map[string][]string) // normalized -> segment IDs
	originals := make(map[string]string)
	for _, seg := range segs {
		name, ok := doctype.PersonName(seg)
		if !ok {
			continue
		}
		norm := resolve.NormalizeName(name)
		variants[norm] = append(variants[norm], seg.ID)
		if _, seen := originals[norm]; !seen {
			originals[norm] = name
		}
	}
	if len(variants) < 2 {
		return nil
	}

	norms := make([]string, 0, len(variants))
	for n := range variants {
		norms = append(norms, n)
	}
	sort.Strings(norms)

	var allIDs, names []string
	for _, n := range norms {
		allIDs = append(allIDs, variants[n]...)
		names = append(names, originals[n])
	}
	sort.Strings(allIDs)
	return []model.ValidationIssue{model.NewCrossDocumentIssue(model.SeverityWarning, allIDs,
		fmt.Sprintf("name variants across documents: %s", strings.Join(names, ", ")))}
}

// dobConsistency errors when one person's documents disagree on date of
// birth. Disagreement here means the segments were linked by a shared
// government ID despite the DOB mismatch.
func (v *Validator) dobConsistency(segs []*model.DocumentSegment) []model.ValidationIssue {
	values := make(map[string][]string)
	for _, seg := range segs {
		raw, ok := doctype.DateOfBirth(seg)
		if !ok {
			continue
		}
		canonical := raw
		if t, ok := model.ParseDate(raw); ok {
			canonical = t.Format("2006-01-02")
		}
		values[canonical] = append(values[canonical], seg.ID)
	}
	if len(values) < 2 {
		return nil
	}

	dobs := make([]string, 0, len(values))
	var allIDs []string
	for d := range values {
		dobs = append(dobs, d)
	}
	sort.Strings(dobs)
	for _, d := range dobs {
		allIDs = append(allIDs, values[d]...)
	}
	sort.Strings(allIDs)
	return []model.ValidationIssue{model.NewCrossDocumentIssue(model.SeverityError, allIDs,
		fmt.Sprintf("date of birth differs across documents: %s", strings.Join(dobs, " vs ")))}
}

func (v *Validator) citizenshipConsistency(segs []*model.DocumentSegment) []model.ValidationIssue {
	values := make(map[string][]string)
	originals := make(map[string]string)
	for _, seg := range segs {
		c, ok := doctype.Citizenship(seg)
		if !ok {
			continue
		}
		norm := strings.ToLower(strings.TrimSpace(c))
		values[norm] = append(values[norm], seg.ID)
		if _, seen := originals[norm]; !seen {
			originals[norm] = c
		}
	}
	if len(values) < 2 {
		return nil
	}

	norms := make([]string, 0, len(values))
	for n := range values {
		norms = append(norms, n)
	}
	sort.Strings(norms)

	var allIDs, countries []string
	for _, n := range norms {
		allIDs = append(allIDs, values[n]...)
		countries = append(countries, originals[n])
	}
	sort.Strings(allIDs)
	return []model.ValidationIssue{model.NewCrossDocumentIssue(model.SeverityWarning, allIDs,
		fmt.Sprintf("citizenship differs across documents: %s", strings.Join(countries, ", ")))}
}
