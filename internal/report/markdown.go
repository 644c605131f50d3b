package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation, pull request comments, and
// sharing scan results.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeFindings(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs only a summary table in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Scan Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + summary.TargetURL + "`"},
			{"Scan ID", summary.ScanID},
			{"Status", string(summary.Status)},
			{"Scan Date", summary.StartTime.Format("2006-01-02 15:04:05 MST")},
			{"Critical", strconv.Itoa(summary.Stats.CriticalCount)},
			{"High", strconv.Itoa(summary.Stats.HighCount)},
			{"Medium", strconv.Itoa(summary.Stats.MediumCount)},
			{"Low", strconv.Itoa(summary.Stats.LowCount)},
			{"Info", strconv.Itoa(summary.Stats.InfoCount)},
		},
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("Web Application Security Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.TargetURL + "`"},
			{"Scan ID", report.ScanID},
			{"Scan Types", strings.Join(report.ScanTypes, ", ")},
			{"Scan Date", report.StartTime.Format("2006-01-02 15:04:05 MST")},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.ScanReport) string {
	if report.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if report.Status == model.StatusFailed {
		return "❌ Failed - " + report.ErrorMessage
	}
	if report.BrowserScanSkipped {
		return "✅ Complete (browser checks skipped)"
	}
	return "✅ Complete"
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Severity Summary")
	md.PlainText("")

	stats := report.Stats
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(stats.CriticalCount)},
			{"🟠 High", strconv.Itoa(stats.HighCount)},
			{"🟡 Medium", strconv.Itoa(stats.MediumCount)},
			{"🔵 Low", strconv.Itoa(stats.LowCount)},
			{"⚪ Info", strconv.Itoa(stats.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(report.TotalFindings()) + "**"},
		},
	})
	md.PlainText("")

	if report.HasFindings() {
		w.writePieChart(md, stats)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, stats model.Stats) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Severity Distribution"),
		piechart.WithShowData(true),
	)

	if stats.CriticalCount > 0 {
		chart.LabelAndIntValue("Critical", uint64(stats.CriticalCount))
	}
	if stats.HighCount > 0 {
		chart.LabelAndIntValue("High", uint64(stats.HighCount))
	}
	if stats.MediumCount > 0 {
		chart.LabelAndIntValue("Medium", uint64(stats.MediumCount))
	}
	if stats.LowCount > 0 {
		chart.LabelAndIntValue("Low", uint64(stats.LowCount))
	}
	if stats.InfoCount > 0 {
		chart.LabelAndIntValue("Info", uint64(stats.InfoCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ScanReport) {
	stats := report.Stats
	switch {
	case stats.CriticalCount > 0:
		md.Cautionf(
			"Critical security issues detected! %d critical finding(s) require immediate attention.",
			stats.CriticalCount,
		)
	case stats.HighCount > 0:
		md.Warningf(
			"High severity issues detected. %d high severity finding(s) should be addressed.",
			stats.HighCount,
		)
	case stats.MediumCount > 0:
		md.Importantf(
			"Medium severity issues found. %d finding(s) weaken the application's security posture.",
			stats.MediumCount,
		)
	case report.TotalFindings() > 0:
		md.Note("Only low severity and informational findings detected.")
	default:
		md.Tip("No significant security issues detected.")
	}
	md.PlainText("")
}

// writeFindings writes all findings grouped by severity.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Findings")
	md.PlainText("")

	if !report.HasFindings() {
		md.PlainText("No security findings detected.")
		md.PlainText("")
		return
	}

	headers := map[model.Severity]string{
		model.SeverityCritical: "### 🔴 Critical",
		model.SeverityHigh:     "### 🟠 High",
		model.SeverityMedium:   "### 🟡 Medium",
		model.SeverityLow:      "### 🔵 Low",
		model.SeverityInfo:     "### ⚪ Info",
	}

	for _, severity := range severityOrder {
		findings := report.FindingsBySeverity(severity)
		if len(findings) == 0 {
			continue
		}

		md.PlainText(headers[severity])
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

// writeFindingsTable writes a table of findings with details.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	headers := []string{"Title", "Value", "Location", "Remediation"}

	rows := make([][]string, len(findings))
	for i, f := range findings {
		value := f.Value
		if value == "" {
			value = "-"
		}
		location := f.Location
		if location == "" {
			location = "-"
		}
		remediation := f.Remediation
		if remediation == "" {
			remediation = "-"
		}

		rows[i] = []string{
			f.Title,
			truncateString(value, 50),
			truncateString(location, 40),
			truncateString(remediation, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   rows,
	})
	md.PlainText("")

	// Add detailed descriptions for all findings
	for _, f := range findings {
		if f.Description != "" {
			md.Details(f.Title, f.Description)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by webscan*")
}
