package report

import (
	"io"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// Writer is the interface for report output formats.
//
// Design decision: We use an interface rather than format-specific
// functions because:
// 1. It allows output format selection at runtime via configuration
// 2. Multiple writers can be combined (e.g., terminal + file output)
// 3. New formats can be added without changing callers
type Writer interface {
	// Write outputs the full report.
	// Returns the number of bytes written and any error.
	Write(report *model.ScanReport) (int, error)

	// WriteSummary outputs only the compact summary.
	// Returns the number of bytes written and any error.
	WriteSummary(summary model.Summary) (int, error)
}

// MultiWriter writes reports to multiple writers.
// This is useful for outputting to both terminal and file simultaneously.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a MultiWriter that writes to all given writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write writes the full report to all writers.
// Returns the total bytes written and the first error encountered.
func (m *MultiWriter) Write(report *model.ScanReport) (int, error) {
	total := 0
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummary writes the summary to all writers.
// Returns the total bytes written and the first error encountered.
func (m *MultiWriter) WriteSummary(summary model.Summary) (int, error) {
	total := 0
	for _, w := range m.writers {
		n, err := w.WriteSummary(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for writers.
type baseWriter struct {
	// output is the destination for the report.
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// severityOrder lists severities from most to least severe, the order
// every writer presents findings in.
var severityOrder = []model.Severity{
	model.SeverityCritical,
	model.SeverityHigh,
	model.SeverityMedium,
	model.SeverityLow,
	model.SeverityInfo,
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
