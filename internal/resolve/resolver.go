// Package resolve clusters document segments into Person entities using
// identity fields: normalized names, dates of birth, and government IDs.
// Segments that cannot be resolved stay unlinked — nothing is ever
// force-assigned to a person.
package resolve

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/meridian-legal/docaudit/internal/doctype"
	"github.com/meridian-legal/docaudit/internal/model"
)

// identity is the per-segment view the clustering works on.
type identity struct {
	segIndex int
	segID    string
	name     string // original spelling
	normName string
	dob      string // canonical ISO form, "" when absent
	dobConf  float64
	nameConf float64
	ids      []string // normalized government IDs
	citizen  string
}

// Result is the resolver output: persons plus any ambiguity warnings.
type Result struct {
	Persons []model.Person
	Issues  []model.ValidationIssue
}

// Resolve clusters the extracted segments into persons. Two segments link
// when their normalized names match and their dates of birth agree (or are
// absent on either side), or when they share an exact government ID. Links
// are transitive. Same name with contradictory DOBs and no shared ID is NOT
// merged: both persons survive and a cross-document warning flags the
// possible duplicate for manual reconciliation.
func Resolve(segments []model.DocumentSegment) Result {
	idents := collectIdentities(segments)
	if len(idents) == 0 {
		return Result{}
	}

	// Union-find over the candidate segments.
	parent := make([]int, len(idents))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(i, j int) {
		ri, rj := find(i), find(j)
		if ri != rj {
			if rj < ri {
				ri, rj = rj, ri
			}
			parent[rj] = ri
		}
	}

	for i := 0; i < len(idents); i++ {
		for j := i + 1; j < len(idents); j++ {
			if linked(idents[i], idents[j]) {
				union(i, j)
			}
		}
	}

	// Group by root, ordered by first segment appearance.
	groups := make(map[int][]int)
	var roots []int
	for i := range idents {
		r := find(i)
		if _, seen := groups[r]; !seen {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], i)
	}
	sort.Ints(roots)

	result := Result{}
	clusterOf := make(map[int]int) // ident index -> person ordinal
	for ordinal, r := range roots {
		person := buildPerson(ordinal, groups[r], idents)
		for _, i := range groups[r] {
			clusterOf[i] = ordinal
		}
		result.Persons = append(result.Persons, person)
	}

	result.Issues = duplicateIdentityWarnings(idents, clusterOf)

	zap.L().Debug("resolve: clustered segments",
		zap.Int("candidates", len(idents)),
		zap.Int("persons", len(result.Persons)),
		zap.Int("warnings", len(result.Issues)),
	)
	return result
}

// linked implements the clustering rule for one pair.
func linked(a, b identity) bool {
	for _, ida := range a.ids {
		for _, idb := range b.ids {
			if ida != "" && ida == idb {
				return true
			}
		}
	}
	if a.normName == "" || a.normName != b.normName {
		return false
	}
	return a.dob == "" || b.dob == "" || a.dob == b.dob
}

// collectIdentities pulls identity fields out of every segment that has any.
// Failed segments have no fields and drop out naturally.
func collectIdentities(segments []model.DocumentSegment) []identity {
	var idents []identity
	for i := range segments {
		seg := &segments[i]
		ident := identity{segIndex: i, segID: seg.ID}

		if name, ok := doctype.PersonName(seg); ok {
			ident.name = name
			ident.normName = NormalizeName(name)
			ident.nameConf = nameConfidence(seg)
		}
		if raw, ok := doctype.DateOfBirth(seg); ok {
			if t, ok := model.ParseDate(raw); ok {
				ident.dob = t.Format("2006-01-02")
			} else {
				ident.dob = raw // unparseable, still usable for exact match
			}
			ident.dobConf = fieldConfidence(seg, "date_of_birth", "birth_date")
		}
		for _, id := range doctype.GovernmentIDs(seg) {
			ident.ids = append(ident.ids, NormalizeID(id))
		}
		if c, ok := doctype.Citizenship(seg); ok {
			ident.citizen = c
		}

		if ident.normName != "" || len(ident.ids) > 0 {
			idents = append(idents, ident)
		}
	}
	return idents
}

func buildPerson(ordinal int, members []int, idents []identity) model.Person {
	sort.Ints(members)
	person := model.Person{
		ID:                 fmt.Sprintf("person-%02d", ordinal+1),
		IdentityAttributes: make(map[string]model.AttributeValue),
	}
	for _, i := range members {
		ident := idents[i]
		person.LinkedSegmentIDs = append(person.LinkedSegmentIDs, ident.segID)
		person.AddNameVariant(ident.name)

		if ident.name != "" {
			setIfBetter(person.IdentityAttributes, model.AttrName, ident.name, ident.nameConf)
		}
		if ident.dob != "" {
			setIfBetter(person.IdentityAttributes, model.AttrDateOfBirth, ident.dob, ident.dobConf)
		}
		if ident.citizen != "" {
			setIfBetter(person.IdentityAttributes, model.AttrCitizenship, ident.citizen, 0)
		}
		if len(ident.ids) > 0 {
			setIfBetter(person.IdentityAttributes, model.AttrGovernmentID, ident.ids[0], 0)
		}
	}
	return person
}

func setIfBetter(attrs map[string]model.AttributeValue, key, value string, conf float64) {
	if existing, ok := attrs[key]; ok && existing.Confidence >= conf {
		return
	}
	attrs[key] = model.AttributeValue{Value: value, Confidence: conf}
}

// duplicateIdentityWarnings flags pairs of clusters that share a normalized
// name but were kept apart by contradictory DOBs. One warning per cluster
// pair, referencing the conflicting segments on both sides.
func duplicateIdentityWarnings(idents []identity, clusterOf map[int]int) []model.ValidationIssue {
	var issues []model.ValidationIssue
	warned := make(map[[2]int]bool)

	for i := 0; i < len(idents); i++ {
		for j := i + 1; j < len(idents); j++ {
			a, b := idents[i], idents[j]
			if a.normName == "" || a.normName != b.normName {
				continue
			}
			ca, cb := clusterOf[i], clusterOf[j]
			if ca == cb {
				continue
			}
			key := [2]int{min(ca, cb), max(ca, cb)}
			if warned[key] {
				continue
			}
			warned[key] = true
			issues = append(issues, model.NewCrossDocumentIssue(
				model.SeverityWarning,
				[]string{a.segID, b.segID},
				fmt.Sprintf("possible duplicate identity: %q appears with conflicting dates of birth (%s vs %s); manual reconciliation needed",
					a.name, a.dob, b.dob),
			))
		}
	}
	return issues
}

func nameConfidence(seg *model.DocumentSegment) float64 {
	return fieldConfidence(seg, "beneficiary", "full_name", "holder_name", "given_name", "first_name")
}

func fieldConfidence(seg *model.DocumentSegment, names ...string) float64 {
	for _, n := range names {
		if fv, ok := seg.Field(n); ok {
			return fv.Confidence
		}
	}
	return 0
}
