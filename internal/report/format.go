package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/meridian-legal/docaudit/internal/model"
)

// Markdown renders the report as a human-readable summary for terminal
// output or filing alongside the case.
func Markdown(rep *model.AuditReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Audit Report %s\n\n", rep.RunID)
	if rep.CaseType != "" {
		fmt.Fprintf(&b, "Case type: %s\n\n", rep.CaseType)
	}
	if rep.Partial {
		b.WriteString("**Partial run**: the audit was interrupted before all stages completed.\n\n")
	}
	fmt.Fprintf(&b, "Pages: %d | Segments: %d | Persons: %d | Quality score: %.2f\n\n",
		rep.PageCount, len(rep.Segments), len(rep.Persons), rep.QualityScore)

	b.WriteString("## Documents\n\n")
	b.WriteString("| Segment | Type | Pages | Confidence | Status |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for i := range rep.Segments {
		seg := &rep.Segments[i]
		flag := ""
		if seg.LowConfidence {
			flag = " (low)"
		}
		fmt.Fprintf(&b, "| %s | %s | %d-%d | %.2f%s | %s |\n",
			seg.ID, seg.Type, seg.PageStart+1, seg.PageEnd+1, seg.TypeConfidence, flag, seg.Status)
	}
	b.WriteString("\n")

	if len(rep.Persons) > 0 {
		b.WriteString("## Persons\n\n")
		for i := range rep.Persons {
			p := &rep.Persons[i]
			fmt.Fprintf(&b, "### %s\n\n", p.ID)
			if len(p.NameVariants) > 0 {
				fmt.Fprintf(&b, "- Names: %s\n", strings.Join(p.NameVariants, "; "))
			}
			keys := make([]string, 0, len(p.IdentityAttributes))
			for k := range p.IdentityAttributes {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if k == model.AttrName {
					continue
				}
				fmt.Fprintf(&b, "- %s: %s\n", strings.ReplaceAll(k, "_", " "), p.IdentityAttributes[k].Value)
			}
			fmt.Fprintf(&b, "- Documents: %s\n\n", strings.Join(p.LinkedSegmentIDs, ", "))
		}
	}

	if len(rep.Timeline) > 0 {
		b.WriteString("## Timeline\n\n")
		for _, ev := range rep.Timeline {
			fmt.Fprintf(&b, "- %s  %s  %s (%s, page %d)\n",
				ev.Date.Format("2006-01-02"), ev.PersonID, ev.Description, ev.SourceSegmentID, ev.PageIndex+1)
		}
		b.WriteString("\n")
	}

	if len(rep.Issues) > 0 {
		fmt.Fprintf(&b, "## Issues (%d error, %d warning, %d info)\n\n",
			rep.IssueCount(model.SeverityError),
			rep.IssueCount(model.SeverityWarning),
			rep.IssueCount(model.SeverityInfo))
		for _, is := range rep.Issues {
			fmt.Fprintf(&b, "- **%s** [%s] %s: %s\n",
				strings.ToUpper(string(is.Severity)), is.Scope,
				strings.Join(is.SegmentIDs, ","), is.Message)
		}
		b.WriteString("\n")
	}

	if len(rep.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, rec := range rep.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}

	return b.String()
}
