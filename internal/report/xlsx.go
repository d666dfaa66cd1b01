package report

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/meridian-legal/docaudit/internal/model"
)

// WriteXLSX exports the report as a workbook with one sheet per section.
// Paralegals review audits in spreadsheets, so this mirrors the markdown
// layout cell for cell.
func WriteXLSX(rep *model.AuditReport, path string) error {
	f := xlsx.NewFile()

	if err := segmentsSheet(f, rep); err != nil {
		return err
	}
	if err := personsSheet(f, rep); err != nil {
		return err
	}
	if err := issuesSheet(f, rep); err != nil {
		return err
	}
	if err := timelineSheet(f, rep); err != nil {
		return err
	}
	if err := summarySheet(f, rep); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save workbook %s", path)
	}
	return nil
}

func segmentsSheet(f *xlsx.File, rep *model.AuditReport) error {
	sheet, err := f.AddSheet("Documents")
	if err != nil {
		return eris.Wrap(err, "report: add documents sheet")
	}
	addRow(sheet, "Segment", "Type", "First Page", "Last Page", "Type Confidence", "Low Confidence", "Status")
	for i := range rep.Segments {
		seg := &rep.Segments[i]
		row := sheet.AddRow()
		row.AddCell().SetString(seg.ID)
		row.AddCell().SetString(string(seg.Type))
		row.AddCell().SetInt(seg.PageStart + 1)
		row.AddCell().SetInt(seg.PageEnd + 1)
		row.AddCell().SetFloat(seg.TypeConfidence)
		row.AddCell().SetBool(seg.LowConfidence)
		row.AddCell().SetString(string(seg.Status))
	}
	return nil
}

func personsSheet(f *xlsx.File, rep *model.AuditReport) error {
	sheet, err := f.AddSheet("Persons")
	if err != nil {
		return eris.Wrap(err, "report: add persons sheet")
	}
	addRow(sheet, "Person", "Names", "Date of Birth", "Citizenship", "Government ID", "Documents")
	for i := range rep.Persons {
		p := &rep.Persons[i]
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(strings.Join(p.NameVariants, "; "))
		row.AddCell().SetString(p.IdentityAttributes[model.AttrDateOfBirth].Value)
		row.AddCell().SetString(p.IdentityAttributes[model.AttrCitizenship].Value)
		row.AddCell().SetString(p.IdentityAttributes[model.AttrGovernmentID].Value)
		row.AddCell().SetString(strings.Join(p.LinkedSegmentIDs, ", "))
	}
	return nil
}

func issuesSheet(f *xlsx.File, rep *model.AuditReport) error {
	sheet, err := f.AddSheet("Issues")
	if err != nil {
		return eris.Wrap(err, "report: add issues sheet")
	}
	addRow(sheet, "Severity", "Scope", "Segments", "Field", "Message")
	for _, is := range rep.Issues {
		row := sheet.AddRow()
		row.AddCell().SetString(string(is.Severity))
		row.AddCell().SetString(string(is.Scope))
		row.AddCell().SetString(strings.Join(is.SegmentIDs, ", "))
		row.AddCell().SetString(is.Field)
		row.AddCell().SetString(is.Message)
	}
	return nil
}

func timelineSheet(f *xlsx.File, rep *model.AuditReport) error {
	sheet, err := f.AddSheet("Timeline")
	if err != nil {
		return eris.Wrap(err, "report: add timeline sheet")
	}
	addRow(sheet, "Date", "Person", "Event", "Segment", "Page")
	for _, ev := range rep.Timeline {
		row := sheet.AddRow()
		row.AddCell().SetString(ev.Date.Format("2006-01-02"))
		row.AddCell().SetString(ev.PersonID)
		row.AddCell().SetString(ev.Description)
		row.AddCell().SetString(ev.SourceSegmentID)
		row.AddCell().SetInt(ev.PageIndex + 1)
	}
	return nil
}

func summarySheet(f *xlsx.File, rep *model.AuditReport) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}
	kv := func(k string, set func(*xlsx.Cell)) {
		row := sheet.AddRow()
		row.AddCell().SetString(k)
		set(row.AddCell())
	}
	kv("Run", func(c *xlsx.Cell) { c.SetString(rep.RunID) })
	kv("Case Type", func(c *xlsx.Cell) { c.SetString(rep.CaseType) })
	kv("Pages", func(c *xlsx.Cell) { c.SetInt(rep.PageCount) })
	kv("Quality Score", func(c *xlsx.Cell) { c.SetFloat(rep.QualityScore) })
	kv("Partial", func(c *xlsx.Cell) { c.SetBool(rep.Partial) })
	for _, rec := range rep.Recommendations {
		kv("Recommendation", func(c *xlsx.Cell) { c.SetString(rec) })
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}
