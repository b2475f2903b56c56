package audit

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/nap-audit-cli/internal/model"
)

// reportHeader is the column layout shared by the CSV and XLSX exports.
var reportHeader = []string{
	"Business Name",
	"Places Name", "Places Address", "Places Phone",
	"Website URL", "Website Name", "Website Address", "Website Phone",
	"Listings Name", "Listings Address", "Listings Phone",
	"Schema Name", "Schema Address", "Schema Phone",
	"Match Status", "Action Needed", "Notes",
}

func reportRow(r model.AuditResult) []string {
	return []string{
		r.Query,
		recordCell(r.Reference, model.FieldName),
		recordCell(r.Reference, model.FieldAddress),
		recordCell(r.Reference, model.FieldPhone),
		orMissing(r.WebsiteURL),
		recordCell(r.Website, model.FieldName),
		recordCell(r.Website, model.FieldAddress),
		recordCell(r.Website, model.FieldPhone),
		recordCell(r.Directory, model.FieldName),
		recordCell(r.Directory, model.FieldAddress),
		recordCell(r.Directory, model.FieldPhone),
		recordCell(r.Structured, model.FieldName),
		recordCell(r.Structured, model.FieldAddress),
		recordCell(r.Structured, model.FieldPhone),
		string(r.Status),
		strings.Join(r.Actions, "; "),
		strings.Join(r.Notes, "; "),
	}
}

func recordCell(rec *model.NapRecord, f model.Field) string {
	if rec == nil {
		return model.MissingValue
	}
	return orMissing(rec.FieldValue(f))
}

// WriteCSV streams the report rows as CSV.
func WriteCSV(w io.Writer, results []model.AuditResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, r := range results {
		if err := cw.Write(reportRow(r)); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush")
}

// WriteXLSX writes the report as a single-sheet workbook.
func WriteXLSX(path string, results []model.AuditResult) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("NAP Audit")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range reportHeader {
		header.AddCell().Value = col
	}
	for _, r := range results {
		row := sheet.AddRow()
		for _, cell := range reportRow(r) {
			row.AddCell().Value = cell
		}
	}

	return eris.Wrap(f.Save(path), "export: save workbook")
}

// ExportFile writes the report to path, picking the format from the
// extension. Anything other than .xlsx gets CSV.
func ExportFile(path string, results []model.AuditResult) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return WriteXLSX(path, results)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}
	defer f.Close()
	return WriteCSV(f, results)
}
