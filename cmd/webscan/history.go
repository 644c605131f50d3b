package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Banumathkovinda/web-app-security-tester/internal/config"
	"github.com/Banumathkovinda/web-app-security-tester/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "List previous scans from the local database",
		Long: `History lists scans stored in the local scan database.

Without arguments it lists the most recent scans across all targets.
With a URL argument it lists only scans of that target.

Examples:
  # List the 20 most recent scans
  webscan history

  # List scans of a specific target
  webscan history https://example.com

  # List every target that has ever been scanned
  webscan history --targets

  # Machine-readable output
  webscan history --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of scans to list (0 for no limit)")
	cmd.Flags().Bool("targets", false, "List scanned targets instead of individual scans")
	cmd.Flags().Bool("json", false, "Output as JSON")
	cmd.Flags().String("db-dir", "", "Database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit < 0 {
		return fmt.Errorf("limit must not be negative: %d", limit)
	}

	listTargets, err := cmd.Flags().GetBool("targets")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	if _, statErr := os.Stat(dbDir); statErr != nil {
		return fmt.Errorf("no scan database found at %s (run a scan first)", dbDir)
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	out := cmd.OutOrStdout()

	if listTargets {
		targets, err := db.ListScannedTargets(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(targets)
		}
		if len(targets) == 0 {
			fmt.Fprintln(out, "No scanned targets found.")
			return nil
		}
		fmt.Fprintf(out, "Scanned targets (%d):\n", len(targets))
		for _, t := range targets {
			fmt.Fprintf(out, "  %s\n", t)
		}
		return nil
	}

	var target string
	if len(args) == 1 {
		target = args[0]
	}

	history, err := db.ListHistory(cmd.Context(), target, limit)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	if len(history) == 0 {
		fmt.Fprintln(out, "No scans found.")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-19s  %-9s  %s\n", "SCAN ID", "DATE", "STATUS", "TARGET")
	for _, meta := range history {
		fmt.Fprintf(out, "%-36s  %-19s  %-9s  %s\n",
			meta.ScanID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.Status,
			meta.TargetURL,
		)
		if summary := formatRiskSummary(meta.RiskSummary); summary != "" {
			fmt.Fprintf(out, "%-36s  %s\n", "", summary)
		}
	}

	return nil
}

// formatRiskSummary renders a severity count map as a compact one-line
// summary, omitting zero counts. Returns "" when nothing was found.
func formatRiskSummary(riskSummary map[string]int) string {
	if len(riskSummary) == 0 {
		return ""
	}

	result := ""
	for _, severity := range []string{"critical", "high", "medium", "low", "info"} {
		if count := riskSummary[severity]; count > 0 {
			if result != "" {
				result += " "
			}
			result += fmt.Sprintf("%s: %d", severity, count)
		}
	}
	return result
}
