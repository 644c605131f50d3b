package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// SimpleWriter outputs reports in human-readable plain text format.
// This is the default output format for terminal display.
//
// Design decision: Plain text with section separators rather than ANSI
// colors because:
// 1. Output stays readable when piped to files or CI logs
// 2. Severity indicators (!!!, !!, !) convey urgency without color
// 3. No terminal-capability detection is needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether severity groups with zero findings
	// appear in the summary.
	showEmpty bool

	// verbose enables detailed finding output including impact and
	// remediation guidance.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty includes severity levels with zero findings in the summary.
func WithShowEmpty() SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = true
	}
}

// WithVerbose enables detailed output with impact and remediation
// guidance for each finding.
func WithVerbose() SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = true
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in plain text format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report.Stats)
	w.writeFindings(&sb, report)
	w.writeFooter(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// WriteSummary outputs a one-scan summary line suitable for history
// listings.
func (w *SimpleWriter) WriteSummary(summary model.Summary) (int, error) {
	var sb strings.Builder

	status := string(summary.Status)
	if summary.TimedOut {
		status += " (timed out)"
	}

	fmt.Fprintf(&sb, "%s  %s  %s\n", summary.ScanID, summary.TargetURL, status)
	fmt.Fprintf(&sb, "  scanned: %s  critical: %d  high: %d  medium: %d  low: %d  info: %d\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.Stats.CriticalCount,
		summary.Stats.HighCount,
		summary.Stats.MediumCount,
		summary.Stats.LowCount,
		summary.Stats.InfoCount,
	)
	if summary.Error != "" {
		fmt.Fprintf(&sb, "  error: %s\n", summary.Error)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with scan information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString(strings.Repeat("=", 70) + "\n")
	sb.WriteString("WEBSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70) + "\n")
	fmt.Fprintf(sb, "Target:     %s\n", report.TargetURL)
	fmt.Fprintf(sb, "Scan ID:    %s\n", report.ScanID)
	fmt.Fprintf(sb, "Scan types: %s\n", strings.Join(report.ScanTypes, ", "))
	fmt.Fprintf(sb, "Started:    %s\n", report.StartTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:   %s\n", report.Duration().Round(10*time.Millisecond))

	switch {
	case report.TimedOut:
		sb.WriteString("Status:     TIMED OUT (partial results)\n")
	case report.Status == model.StatusFailed:
		fmt.Fprintf(sb, "Status:     FAILED - %s\n", report.ErrorMessage)
	default:
		fmt.Fprintf(sb, "Status:     %s\n", strings.ToUpper(string(report.Status)))
	}

	if report.BrowserScanSkipped {
		sb.WriteString("Note:       browser checks were skipped (no browser available)\n")
	}
	sb.WriteString("\n")
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, stats model.Stats) {
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70) + "\n")

	rows := []struct {
		label string
		count int
	}{
		{"Critical", stats.CriticalCount},
		{"High", stats.HighCount},
		{"Medium", stats.MediumCount},
		{"Low", stats.LowCount},
		{"Info", stats.InfoCount},
	}

	for _, row := range rows {
		if row.count == 0 && !w.showEmpty {
			continue
		}
		fmt.Fprintf(sb, "  %-10s %d\n", row.label, row.count)
	}
	fmt.Fprintf(sb, "  %-10s %d (%d actionable)\n", "Total", stats.TotalChecks, stats.VulnerabilitiesFound)
	sb.WriteString("\n")
}

// writeFindings writes all findings grouped by severity, most severe first.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, report *model.ScanReport) {
	if !report.HasFindings() {
		sb.WriteString("No findings recorded.\n\n")
		return
	}

	for _, severity := range severityOrder {
		findings := report.FindingsBySeverity(severity)
		if len(findings) == 0 {
			continue
		}
		w.writeFindingsForSeverity(sb, severity, findings)
	}
}

// writeFindingsForSeverity writes one severity group.
func (w *SimpleWriter) writeFindingsForSeverity(sb *strings.Builder, severity model.Severity, findings []model.Finding) {
	fmt.Fprintf(sb, "%s (%d)\n", strings.ToUpper(severity.String()), len(findings))
	sb.WriteString(strings.Repeat("-", 70) + "\n")

	indicator := getSeverityIndicator(severity)
	for _, f := range findings {
		fmt.Fprintf(sb, "  [%s] %s\n", indicator, f.Title)
		if f.Value != "" {
			fmt.Fprintf(sb, "        value:    %s\n", truncateString(f.Value, 100))
		}
		if f.Location != "" {
			fmt.Fprintf(sb, "        location: %s\n", f.Location)
		}
		if w.verbose {
			if f.Description != "" {
				fmt.Fprintf(sb, "        detail:   %s\n", f.Description)
			}
			if f.Impact != "" {
				fmt.Fprintf(sb, "        impact:   %s\n", f.Impact)
			}
			if f.Remediation != "" {
				fmt.Fprintf(sb, "        fix:      %s\n", f.Remediation)
			}
		}
	}
	sb.WriteString("\n")
}

// getSeverityIndicator returns the text marker used for a severity level.
func getSeverityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	default:
		return "i"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString(strings.Repeat("=", 70) + "\n")
	if len(report.PerformedScans) > 0 {
		fmt.Fprintf(sb, "Performed checks: %s\n", strings.Join(report.PerformedScans, ", "))
	}
}
