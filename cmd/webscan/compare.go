package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Banumathkovinda/web-app-security-tester/internal/config"
	"github.com/Banumathkovinda/web-app-security-tester/internal/database"
	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// Constants for risk direction and summary messages.
const (
	riskDirectionWorsened  = "worsened"
	riskDirectionImproved  = "improved"
	riskDirectionUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <url>",
		Short: "Compare scan results with historical data",
		Long: `Compare displays differences between the current and previous scan results.

This command retrieves historical scan data from the database and shows:
- New findings that appeared since the last scan
- Resolved findings that are no longer present
- Changes in risk severity levels

The comparison requires at least two scans in the database for the
specified URL. Use 'webscan scan' to perform scans and save results,
and 'webscan history' to list stored scans and their IDs.

Examples:
  # Compare latest two scans for an application
  webscan compare https://example.com

  # Compare with a specific historical scan by scan ID
  webscan compare --with-scan-id 2f4e... https://example.com

  # Compare with the first scan since a specific date
  webscan compare --since "2026-01-01" https://example.com

  # Output comparison in JSON format
  webscan compare --json https://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	// Comparison target flags
	cmd.Flags().StringP("with-scan-id", "i", "",
		"Compare with a specific scan by scan ID (use 'webscan history' to see IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	target := args[0]

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	withScanID, err := cmd.Flags().GetString("with-scan-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	comparison, err := buildComparison(cmd.Context(), db, target, withScanID, sinceDate)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return outputComparisonJSON(out, comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(out, comparison)
	}
	return outputComparisonText(out, comparison)
}

// buildComparison selects the two reports to compare and diffs them.
func buildComparison(ctx context.Context, db *database.ScanDB, target, withScanID, sinceDate string) (*ComparisonResult, error) {
	reports, err := db.GetScanHistory(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(reports) == 0 {
		return nil, fmt.Errorf("no scan history found for %s", target)
	}
	if len(reports) < 2 && withScanID == "" && sinceDate == "" {
		return nil, fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(reports))
	}

	// Latest report is always the current one
	currentReport := reports[0]
	var previousReport *model.ScanReport

	switch {
	case withScanID != "":
		previousReport, err = db.GetScanReport(ctx, withScanID)
		if err != nil {
			return nil, fmt.Errorf("failed to get scan %s: %w", withScanID, err)
		}
		if previousReport == nil {
			return nil, fmt.Errorf("scan %s not found", withScanID)
		}
		if previousReport.TargetURL != target {
			return nil, fmt.Errorf("scan %s belongs to %s, not %s", withScanID, previousReport.TargetURL, target)
		}
	case sinceDate != "":
		parsedDate, parseErr := time.Parse("2006-01-02", sinceDate)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", parseErr)
		}

		// Reports are sorted newest first, so iterate in reverse to find
		// the oldest report at or after the date.
		for i := len(reports) - 1; i >= 0; i-- {
			r := reports[i]
			if !r.StartTime.Before(parsedDate) {
				previousReport = r
				break
			}
		}
		if previousReport == nil {
			return nil, fmt.Errorf("no scans found since %s", sinceDate)
		}
		if previousReport == currentReport {
			return nil, fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", sinceDate)
		}
	default:
		previousReport = reports[1]
	}

	return compareReports(previousReport, currentReport), nil
}

// ComparisonResult holds the result of comparing two scan reports.
type ComparisonResult struct {
	// TargetURL is the scanned URL.
	TargetURL string `json:"target_url"`

	// PreviousScan contains metadata about the previous scan.
	PreviousScan ScanMetadata `json:"previous_scan"`

	// CurrentScan contains metadata about the current scan.
	CurrentScan ScanMetadata `json:"current_scan"`

	// NewFindings contains findings that are new in the current scan.
	NewFindings []model.Finding `json:"new_findings,omitempty"`

	// ResolvedFindings contains findings that were in the previous scan but not in current.
	ResolvedFindings []model.Finding `json:"resolved_findings,omitempty"`

	// UnchangedCount is the number of findings that remain unchanged.
	UnchangedCount int `json:"unchanged_count"`

	// RiskChange describes the overall change in risk level.
	RiskChange RiskChange `json:"risk_change"`
}

// ScanMetadata contains metadata about a scan for comparison display.
type ScanMetadata struct {
	// ScanID is the scan's unique identifier.
	ScanID string `json:"scan_id"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// TotalFindings is the total number of findings in this scan.
	TotalFindings int `json:"total_findings"`

	// CriticalCount is the number of critical findings.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity findings.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity findings.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity findings.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational findings.
	InfoCount int `json:"info_count"`
}

// RiskChange describes the change in risk level between scans.
type RiskChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// CriticalDelta is the change in critical findings count.
	CriticalDelta int `json:"critical_delta"`

	// HighDelta is the change in high severity findings count.
	HighDelta int `json:"high_delta"`

	// MediumDelta is the change in medium severity findings count.
	MediumDelta int `json:"medium_delta"`

	// LowDelta is the change in low severity findings count.
	LowDelta int `json:"low_delta"`

	// InfoDelta is the change in informational findings count.
	InfoDelta int `json:"info_delta"`
}

// compareReports compares two scan reports and generates a comparison result.
func compareReports(previous, current *model.ScanReport) *ComparisonResult {
	result := &ComparisonResult{
		TargetURL:    current.TargetURL,
		PreviousScan: scanMetadata(previous),
		CurrentScan:  scanMetadata(current),
	}

	// Build finding maps for comparison
	previousFindings := make(map[string]model.Finding)
	currentFindings := make(map[string]model.Finding)

	for _, f := range previous.Findings {
		previousFindings[findingKey(f)] = f
	}
	for _, f := range current.Findings {
		currentFindings[findingKey(f)] = f
	}

	// Find new findings (in current but not in previous)
	for key, finding := range currentFindings {
		if _, exists := previousFindings[key]; !exists {
			result.NewFindings = append(result.NewFindings, finding)
		}
	}

	// Find resolved findings (in previous but not in current)
	for key, finding := range previousFindings {
		if _, exists := currentFindings[key]; !exists {
			result.ResolvedFindings = append(result.ResolvedFindings, finding)
		} else {
			result.UnchangedCount++
		}
	}

	result.RiskChange = calculateRiskChange(result.PreviousScan, result.CurrentScan)

	return result
}

// scanMetadata extracts comparison metadata from a report.
func scanMetadata(r *model.ScanReport) ScanMetadata {
	return ScanMetadata{
		ScanID:        r.ScanID,
		DateScanned:   r.StartTime,
		TotalFindings: len(r.Findings),
		CriticalCount: r.Stats.CriticalCount,
		HighCount:     r.Stats.HighCount,
		MediumCount:   r.Stats.MediumCount,
		LowCount:      r.Stats.LowCount,
		InfoCount:     r.Stats.InfoCount,
	}
}

// findingKey generates a unique key for a finding for comparison purposes.
func findingKey(f model.Finding) string {
	return f.Type + "|" + f.Value + "|" + f.Location
}

// calculateRiskChange calculates the change in risk between two scans.
func calculateRiskChange(previous, current ScanMetadata) RiskChange {
	change := RiskChange{
		CriticalDelta: current.CriticalCount - previous.CriticalCount,
		HighDelta:     current.HighCount - previous.HighCount,
		MediumDelta:   current.MediumCount - previous.MediumCount,
		LowDelta:      current.LowCount - previous.LowCount,
		InfoDelta:     current.InfoCount - previous.InfoCount,
	}

	// Determine overall direction based on weighted score.
	// Critical and high severity changes have more weight.
	previousScore := previous.CriticalCount*100 + previous.HighCount*50 + previous.MediumCount*10 + previous.LowCount*5 + previous.InfoCount
	currentScore := current.CriticalCount*100 + current.HighCount*50 + current.MediumCount*10 + current.LowCount*5 + current.InfoCount

	switch {
	case currentScore < previousScore:
		change.Direction = riskDirectionImproved
	case currentScore > previousScore:
		change.Direction = riskDirectionWorsened
	default:
		change.Direction = riskDirectionUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	fmt.Fprintf(out, "# Scan Comparison: %s\n\n", result.TargetURL)

	// Risk change summary
	fmt.Fprintln(out, "## Summary")
	fmt.Fprintf(out, "\n**Risk Status:** %s\n\n", formatRiskDirection(result.RiskChange.Direction))

	// Scan metadata table
	fmt.Fprintln(out, "| Metric | Previous | Current | Change |")
	fmt.Fprintln(out, "|--------|----------|---------|--------|")
	fmt.Fprintf(out, "| Date | %s | %s | - |\n",
		result.PreviousScan.DateScanned.Format("2006-01-02 15:04"),
		result.CurrentScan.DateScanned.Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "| Critical | %d | %d | %s |\n",
		result.PreviousScan.CriticalCount,
		result.CurrentScan.CriticalCount,
		formatDelta(result.RiskChange.CriticalDelta))
	fmt.Fprintf(out, "| High | %d | %d | %s |\n",
		result.PreviousScan.HighCount,
		result.CurrentScan.HighCount,
		formatDelta(result.RiskChange.HighDelta))
	fmt.Fprintf(out, "| Medium | %d | %d | %s |\n",
		result.PreviousScan.MediumCount,
		result.CurrentScan.MediumCount,
		formatDelta(result.RiskChange.MediumDelta))
	fmt.Fprintf(out, "| Low | %d | %d | %s |\n",
		result.PreviousScan.LowCount,
		result.CurrentScan.LowCount,
		formatDelta(result.RiskChange.LowDelta))
	fmt.Fprintf(out, "| Info | %d | %d | %s |\n",
		result.PreviousScan.InfoCount,
		result.CurrentScan.InfoCount,
		formatDelta(result.RiskChange.InfoDelta))
	fmt.Fprintf(out, "| **Total** | **%d** | **%d** | **%s** |\n",
		result.PreviousScan.TotalFindings,
		result.CurrentScan.TotalFindings,
		formatDelta(result.CurrentScan.TotalFindings-result.PreviousScan.TotalFindings))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Fprintf(out, "\n## New Findings (%d)\n\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Fprintf(out, "- **[%s]** %s: %s\n", f.SeverityText, f.Title, f.Value)
			if f.Location != "" {
				fmt.Fprintf(out, "  - Location: `%s`\n", f.Location)
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Fprintf(out, "\n## Resolved Findings (%d)\n\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Fprintf(out, "- ~~**[%s]** %s: %s~~\n", f.SeverityText, f.Title, f.Value)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Fprintf(out, "\n---\n\n*%d findings unchanged*\n", result.UnchangedCount)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	fmt.Fprintf(out, "Scan Comparison: %s\n", result.TargetURL)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	// Risk change summary
	fmt.Fprintf(out, "\nRisk Status: %s\n", formatRiskDirection(result.RiskChange.Direction))

	// Scan dates
	fmt.Fprintf(out, "\nPrevious scan: %s (%s)\n",
		result.PreviousScan.DateScanned.Format("2006-01-02 15:04:05"), result.PreviousScan.ScanID)
	fmt.Fprintf(out, "Current scan:  %s (%s)\n",
		result.CurrentScan.DateScanned.Format("2006-01-02 15:04:05"), result.CurrentScan.ScanID)

	// Summary table
	fmt.Fprintln(out, "\nFindings Summary:")
	fmt.Fprintf(out, "  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 45))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "Critical",
		result.PreviousScan.CriticalCount, result.CurrentScan.CriticalCount,
		formatDelta(result.RiskChange.CriticalDelta))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "High",
		result.PreviousScan.HighCount, result.CurrentScan.HighCount,
		formatDelta(result.RiskChange.HighDelta))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "Medium",
		result.PreviousScan.MediumCount, result.CurrentScan.MediumCount,
		formatDelta(result.RiskChange.MediumDelta))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "Low",
		result.PreviousScan.LowCount, result.CurrentScan.LowCount,
		formatDelta(result.RiskChange.LowDelta))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "Info",
		result.PreviousScan.InfoCount, result.CurrentScan.InfoCount,
		formatDelta(result.RiskChange.InfoDelta))
	fmt.Fprintln(out, "  "+strings.Repeat("-", 45))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousScan.TotalFindings, result.CurrentScan.TotalFindings,
		formatDelta(result.CurrentScan.TotalFindings-result.PreviousScan.TotalFindings))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Fprintf(out, "\nNew Findings (%d):\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Fprintf(out, "  [+] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
			if f.Location != "" {
				fmt.Fprintf(out, "      Location: %s\n", f.Location)
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Fprintf(out, "\nResolved Findings (%d):\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Fprintf(out, "  [-] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d findings\n", result.UnchangedCount)
	}

	return nil
}

// formatRiskDirection formats the risk change direction for display.
func formatRiskDirection(direction string) string {
	switch direction {
	case riskDirectionImproved:
		return "IMPROVED (risk decreased)"
	case riskDirectionWorsened:
		return "WORSENED (risk increased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
