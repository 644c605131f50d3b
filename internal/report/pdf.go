package report

import (
	"fmt"
	"io"
	"strings"

	gofpdf "github.com/go-pdf/fpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// pdfSeverityColors maps severities to RGB colors for the PDF output.
var pdfSeverityColors = map[model.Severity][]int{
	model.SeverityCritical: {220, 38, 38},
	model.SeverityHigh:     {234, 88, 12},
	model.SeverityMedium:   {202, 138, 4},
	model.SeverityLow:      {37, 99, 235},
	model.SeverityInfo:     {107, 114, 128},
}

// PDFWriter outputs reports as PDF documents.
// This format is designed for handing results to stakeholders who won't
// read terminal or Markdown output.
//
// Design decision: We use go-pdf/fpdf because:
// 1. It generates PDFs without external tooling (no headless browser)
// 2. Cell-based layout fits tabular finding data
// 3. It's a maintained fork of the widely used gofpdf API
type PDFWriter struct {
	baseWriter
}

// NewPDFWriter creates a PDFWriter that outputs to the given writer.
func NewPDFWriter(output io.Writer) *PDFWriter {
	return &PDFWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report as a PDF document.
// The returned byte count is always zero because fpdf streams directly
// to the output writer.
func (w *PDFWriter) Write(report *model.ScanReport) (int, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	w.addTitle(pdf, report)
	w.addSummaryTable(pdf, report)
	w.addFindings(pdf, report)

	return 0, pdf.Output(w.output)
}

// WriteSummary outputs a one-page summary PDF.
func (w *PDFWriter) WriteSummary(summary model.Summary) (int, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 10, "Scan Summary", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(60, 60, 60)
	rows := [][2]string{
		{"Target", summary.TargetURL},
		{"Scan ID", summary.ScanID},
		{"Status", string(summary.Status)},
		{"Scan Date", summary.StartTime.Format("2006-01-02 15:04:05 MST")},
		{"Critical", fmt.Sprintf("%d", summary.Stats.CriticalCount)},
		{"High", fmt.Sprintf("%d", summary.Stats.HighCount)},
		{"Medium", fmt.Sprintf("%d", summary.Stats.MediumCount)},
		{"Low", fmt.Sprintf("%d", summary.Stats.LowCount)},
		{"Info", fmt.Sprintf("%d", summary.Stats.InfoCount)},
	}
	for _, row := range rows {
		pdf.CellFormat(40, 7, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, row[1], "1", 1, "L", false, 0, "")
	}

	return 0, pdf.Output(w.output)
}

// addTitle renders the document header with scan metadata.
func (w *PDFWriter) addTitle(pdf *gofpdf.Fpdf, report *model.ScanReport) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 10, "Web Application Security Report", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(0, 5, "Target: "+report.TargetURL, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Scan ID: "+report.ScanID, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Scan types: "+strings.Join(report.ScanTypes, ", "), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Scan date: "+report.StartTime.Format("2006-01-02 15:04:05 MST"), "", 1, "L", false, 0, "")

	status := strings.ToUpper(string(report.Status))
	if report.TimedOut {
		status = "TIMED OUT (partial results)"
	}
	if report.Status == model.StatusFailed && report.ErrorMessage != "" {
		status += " - " + report.ErrorMessage
	}
	pdf.CellFormat(0, 5, "Status: "+status, "", 1, "L", false, 0, "")

	if report.BrowserScanSkipped {
		pdf.CellFormat(0, 5, "Note: browser checks were skipped in this environment", "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

// addSummaryTable renders the severity rollup table.
func (w *PDFWriter) addSummaryTable(pdf *gofpdf.Fpdf, report *model.ScanReport) {
	w.addSectionHeader(pdf, "Severity Summary")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(30, 41, 59)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(50, 8, "Severity", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Count", "1", 1, "C", true, 0, "")

	rows := []struct {
		severity model.Severity
		count    int
	}{
		{model.SeverityCritical, report.Stats.CriticalCount},
		{model.SeverityHigh, report.Stats.HighCount},
		{model.SeverityMedium, report.Stats.MediumCount},
		{model.SeverityLow, report.Stats.LowCount},
		{model.SeverityInfo, report.Stats.InfoCount},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		color := pdfSeverityColors[row.severity]
		pdf.SetTextColor(color[0], color[1], color[2])
		pdf.CellFormat(50, 7, titleCase(row.severity.String()), "1", 0, "L", false, 0, "")
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", row.count), "1", 1, "C", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(50, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, fmt.Sprintf("%d", report.TotalFindings()), "1", 1, "C", false, 0, "")
	pdf.Ln(6)
}

// addFindings renders each severity group with its findings.
func (w *PDFWriter) addFindings(pdf *gofpdf.Fpdf, report *model.ScanReport) {
	w.addSectionHeader(pdf, "Findings")

	if !report.HasFindings() {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(80, 80, 80)
		pdf.CellFormat(0, 6, "No security findings detected.", "", 1, "L", false, 0, "")
		return
	}

	for _, severity := range severityOrder {
		findings := report.FindingsBySeverity(severity)
		if len(findings) == 0 {
			continue
		}

		color := pdfSeverityColors[severity]
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(color[0], color[1], color[2])
		pdf.CellFormat(0, 8, fmt.Sprintf("%s (%d)", strings.ToUpper(severity.String()), len(findings)), "", 1, "L", false, 0, "")

		for _, f := range findings {
			w.addFinding(pdf, f)
		}
		pdf.Ln(3)
	}
}

// addFinding renders a single finding block.
func (w *PDFWriter) addFinding(pdf *gofpdf.Fpdf, f model.Finding) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(30, 41, 59)
	pdf.MultiCell(0, 6, f.Title, "", "L", false)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(80, 80, 80)
	if f.Description != "" {
		pdf.MultiCell(0, 5, f.Description, "", "L", false)
	}
	if f.Value != "" {
		pdf.MultiCell(0, 5, "Value: "+truncateString(f.Value, 200), "", "L", false)
	}
	if f.Location != "" {
		pdf.MultiCell(0, 5, "Location: "+f.Location, "", "L", false)
	}
	if f.Remediation != "" {
		pdf.MultiCell(0, 5, "Remediation: "+f.Remediation, "", "L", false)
	}
	pdf.Ln(2)
}

// titleCase renders a severity name as a display heading.
// A fresh caser per call because cases.Caser is not safe for
// concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// addSectionHeader renders a section title with an underline.
func (w *PDFWriter) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
	x, y := pdf.GetX(), pdf.GetY()
	pdf.SetDrawColor(30, 41, 59)
	pdf.Line(x, y, x+180, y)
	pdf.Ln(3)
}
