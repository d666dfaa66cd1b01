// Package validate checks extracted fields for format violations, impossible
// date orderings within a segment, and disagreements across the documents of
// one person. Validation never mutates fields and never fails a run: every
// finding is a ValidationIssue value appended to the segment or report.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/meridian-legal/docaudit/internal/model"
)

var (
	receiptNumberRe   = regexp.MustCompile(`^(?i)(MSC|NBC|EAC|WAC|IOE)\d{10}$`)
	i94NumberRe       = regexp.MustCompile(`^\d{11}$`)
	usPassportRe      = regexp.MustCompile(`^[A-Z]?\d{8,9}$`)
	genericPassportRe = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)
)

// datePairs are the within-segment orderings that must hold: the first field
// never comes after the second.
var datePairs = [][2]string{
	{"issue_date", "expiration_date"},
	{"date_of_issue", "date_of_expiry"},
	{"passport_issue_date", "passport_expiry_date"},
	{"valid_from", "valid_to"},
	{"begin_date", "end_date"},
	{"issue_date", "expiry_date"},
}

// Validator applies format and consistency rules. The reference time is
// injectable so plausibility checks are deterministic in tests.
type Validator struct {
	now time.Time
}

// New creates a Validator anchored at the given reference time.
func New(now time.Time) *Validator {
	return &Validator{now: now.UTC()}
}

// Segment runs field-scope and cross-field checks for one segment. Failed
// segments have nothing to validate and produce no issues.
func (v *Validator) Segment(seg *model.DocumentSegment) []model.ValidationIssue {
	if seg.Status == model.SegmentFailedExtraction || len(seg.Fields) == 0 {
		return nil
	}

	var issues []model.ValidationIssue
	issues = append(issues, v.formatChecks(seg)...)
	issues = append(issues, v.dateChecks(seg)...)
	issues = append(issues, v.crossFieldChecks(seg)...)
	return issues
}

func (v *Validator) formatChecks(seg *model.DocumentSegment) []model.ValidationIssue {
	var issues []model.ValidationIssue

	switch seg.Type {
	case model.DocTypeI797, model.DocTypeI797C, model.DocTypeI129:
		if fv, ok := seg.Field("receipt_number"); ok && !receiptNumberRe.MatchString(fv.Value) {
			issues = append(issues, model.NewFieldIssue(model.SeverityError, seg.ID, "receipt_number",
				fmt.Sprintf("receipt number %q does not match the USCIS format (3-letter prefix + 10 digits)", fv.Value)))
		}
	case model.DocTypeI94:
		if fv, ok := seg.Field("admission_record_number"); ok {
			cleaned := strings.NewReplacer("-", "", " ", "").Replace(fv.Value)
			if !i94NumberRe.MatchString(cleaned) {
				issues = append(issues, model.NewFieldIssue(model.SeverityError, seg.ID, "admission_record_number",
					fmt.Sprintf("admission number %q is not an 11-digit I-94 number", fv.Value)))
			}
		}
	case model.DocTypeUSPassport:
		if fv, ok := seg.Field("passport_number"); ok && !usPassportRe.MatchString(strings.ToUpper(fv.Value)) {
			issues = append(issues, model.NewFieldIssue(model.SeverityError, seg.ID, "passport_number",
				fmt.Sprintf("passport number %q does not match the US passport format", fv.Value)))
		}
	case model.DocTypeForeignPassport:
		if fv, ok := seg.Field("passport_number"); ok && !genericPassportRe.MatchString(strings.ToUpper(fv.Value)) {
			issues = append(issues, model.NewFieldIssue(model.SeverityError, seg.ID, "passport_number",
				fmt.Sprintf("passport number %q is not 6-12 alphanumeric characters", fv.Value)))
		}
	case model.DocTypeEAD:
		if fv, ok := seg.Field("uscis_number"); ok && len(strings.ReplaceAll(fv.Value, "-", "")) < 8 {
			issues = append(issues, model.NewFieldIssue(model.SeverityError, seg.ID, "uscis_number",
				fmt.Sprintf("USCIS number %q is too short", fv.Value)))
		}
	}

	return issues
}

// dateChecks validates every date-bearing field: unparseable dates are hard
// errors, parseable but implausible ones (before 1900, more than a decade
// out) are warnings.
func (v *Validator) dateChecks(seg *model.DocumentSegment) []model.ValidationIssue {
	var issues []model.ValidationIssue

	names := make([]string, 0, len(seg.Fields))
	for name := range seg.Fields {
		if isDateField(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		fv, ok := seg.Field(name)
		if !ok {
			continue
		}
		if strings.EqualFold(fv.Value, "D/S") {
			// Duration of status: a legitimate non-date admit-until value.
			continue
		}
		t, parsed := model.ParseDate(fv.Value)
		if !parsed {
			issues = append(issues, model.NewFieldIssue(model.SeverityError, seg.ID, name,
				fmt.Sprintf("%s %q is not a recognizable date", name, fv.Value)))
			continue
		}
		if t.Year() < 1900 || t.Year() > v.now.Year()+10 {
			issues = append(issues, model.NewFieldIssue(model.SeverityWarning, seg.ID, name,
				fmt.Sprintf("%s %s is outside the plausible range", name, t.Format("2006-01-02"))))
		}
	}

	return issues
}

func (v *Validator) crossFieldChecks(seg *model.DocumentSegment) []model.ValidationIssue {
	var issues []model.ValidationIssue

	date := func(name string) (time.Time, bool) {
		fv, ok := seg.Field(name)
		if !ok {
			return time.Time{}, false
		}
		return model.ParseDate(fv.Value)
	}

	for _, pair := range datePairs {
		from, okFrom := date(pair[0])
		to, okTo := date(pair[1])
		if okFrom && okTo && from.After(to) {
			issues = append(issues, model.NewCrossFieldIssue(model.SeverityError, seg.ID,
				fmt.Sprintf("%s (%s) is after %s (%s)",
					pair[0], from.Format("2006-01-02"), pair[1], to.Format("2006-01-02"))))
		}
	}

	// A notice cannot predate the receipt it acknowledges.
	if received, ok := date("received_date"); ok {
		if notice, ok := date("notice_date"); ok && notice.Before(received) {
			issues = append(issues, model.NewCrossFieldIssue(model.SeverityWarning, seg.ID,
				fmt.Sprintf("notice_date (%s) is before received_date (%s)",
					notice.Format("2006-01-02"), received.Format("2006-01-02"))))
		}
	}

	return issues
}

func isDateField(name string) bool {
	return strings.Contains(name, "date") || name == "resident_since"
}
