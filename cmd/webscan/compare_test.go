package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Banumathkovinda/web-app-security-tester/internal/database"
	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// TestNewCompareCmd tests the compare command creation.
func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "compare <url>" {
			t.Errorf("expected use 'compare <url>', got %q", cmd.Use)
		}
	})

	t.Run("has comparison flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"with-scan-id", "since", "json", "markdown"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}

// reportWithFindings builds a completed report with the given finding types.
func reportWithFindings(target string, findingTypes ...string) *model.ScanReport {
	r := model.NewScanReport(target, []string{"recon"})
	for _, ft := range findingTypes {
		r.AddFinding(model.NewFinding(ft, ft, "", "", target))
	}
	r.Complete()
	return r
}

// TestCompareReports tests the report diffing logic.
func TestCompareReports(t *testing.T) {
	t.Parallel()

	t.Run("detects new and resolved findings", func(t *testing.T) {
		t.Parallel()

		previous := reportWithFindings("https://example.com", "missing_hsts", "missing_csp")
		current := reportWithFindings("https://example.com", "missing_csp", "dom_xss")

		result := compareReports(previous, current)

		if result.TargetURL != "https://example.com" {
			t.Errorf("expected target 'https://example.com', got %q", result.TargetURL)
		}
		if len(result.NewFindings) != 1 || result.NewFindings[0].Type != "dom_xss" {
			t.Errorf("expected new finding dom_xss, got %v", result.NewFindings)
		}
		if len(result.ResolvedFindings) != 1 || result.ResolvedFindings[0].Type != "missing_hsts" {
			t.Errorf("expected resolved finding missing_hsts, got %v", result.ResolvedFindings)
		}
		if result.UnchangedCount != 1 {
			t.Errorf("expected 1 unchanged finding, got %d", result.UnchangedCount)
		}
	})

	t.Run("identical reports are unchanged", func(t *testing.T) {
		t.Parallel()

		previous := reportWithFindings("https://example.com", "missing_hsts")
		current := reportWithFindings("https://example.com", "missing_hsts")

		result := compareReports(previous, current)

		if len(result.NewFindings) != 0 || len(result.ResolvedFindings) != 0 {
			t.Errorf("expected no changes, got new=%v resolved=%v",
				result.NewFindings, result.ResolvedFindings)
		}
		if result.RiskChange.Direction != riskDirectionUnchanged {
			t.Errorf("expected unchanged direction, got %q", result.RiskChange.Direction)
		}
	})

	t.Run("fills scan metadata", func(t *testing.T) {
		t.Parallel()

		previous := reportWithFindings("https://example.com", "missing_hsts")
		current := reportWithFindings("https://example.com")

		result := compareReports(previous, current)

		if result.PreviousScan.ScanID != previous.ScanID {
			t.Errorf("expected previous scan ID %q, got %q", previous.ScanID, result.PreviousScan.ScanID)
		}
		if result.PreviousScan.TotalFindings != 1 {
			t.Errorf("expected 1 previous finding, got %d", result.PreviousScan.TotalFindings)
		}
		if result.CurrentScan.TotalFindings != 0 {
			t.Errorf("expected 0 current findings, got %d", result.CurrentScan.TotalFindings)
		}
	})
}

// TestFindingKey tests finding key generation.
func TestFindingKey(t *testing.T) {
	t.Parallel()

	f1 := model.Finding{Type: "dom_xss", Value: "payload", Location: "https://a.example"}
	f2 := model.Finding{Type: "dom_xss", Value: "payload", Location: "https://b.example"}

	if findingKey(f1) == findingKey(f2) {
		t.Error("expected different keys for different locations")
	}
	if findingKey(f1) != findingKey(f1) {
		t.Error("expected stable keys")
	}
}

// TestCalculateRiskChange tests the weighted risk direction calculation.
func TestCalculateRiskChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		previous ScanMetadata
		current  ScanMetadata
		want     string
	}{
		{
			name:     "new critical worsens",
			previous: ScanMetadata{},
			current:  ScanMetadata{CriticalCount: 1},
			want:     riskDirectionWorsened,
		},
		{
			name:     "resolved high improves",
			previous: ScanMetadata{HighCount: 2},
			current:  ScanMetadata{HighCount: 1},
			want:     riskDirectionImproved,
		},
		{
			name:     "critical outweighs many lows",
			previous: ScanMetadata{LowCount: 10},
			current:  ScanMetadata{CriticalCount: 1},
			want:     riskDirectionWorsened,
		},
		{
			name:     "no findings unchanged",
			previous: ScanMetadata{},
			current:  ScanMetadata{},
			want:     riskDirectionUnchanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := calculateRiskChange(tt.previous, tt.current)
			if got.Direction != tt.want {
				t.Errorf("expected direction %q, got %q", tt.want, got.Direction)
			}
		})
	}
}

// TestFormatDelta tests delta formatting.
func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		delta int
		want  string
	}{
		{3, "+3"},
		{-2, "-2"},
		{0, "0"},
	}

	for _, tt := range tests {
		if got := formatDelta(tt.delta); got != tt.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}

// TestBuildComparison tests comparison report selection against the database.
func TestBuildComparison(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("errors when no history", func(t *testing.T) {
		t.Parallel()

		db := openCompareTestDB(t)
		if _, err := buildComparison(ctx, db, "https://example.com", "", ""); err == nil {
			t.Error("expected error for missing history")
		}
	})

	t.Run("errors when only one scan", func(t *testing.T) {
		t.Parallel()

		db := openCompareTestDB(t)
		if err := db.SaveScanReport(ctx, reportWithFindings("https://example.com")); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		if _, err := buildComparison(ctx, db, "https://example.com", "", ""); err == nil {
			t.Error("expected error for single scan")
		}
	})

	t.Run("compares with explicit scan ID", func(t *testing.T) {
		t.Parallel()

		db := openCompareTestDB(t)
		previous := reportWithFindings("https://example.com", "missing_hsts")
		current := reportWithFindings("https://example.com", "dom_xss")
		if err := db.SaveScanReport(ctx, previous); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		if err := db.SaveScanReport(ctx, current); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		result, err := buildComparison(ctx, db, "https://example.com", previous.ScanID, "")
		if err != nil {
			t.Fatalf("buildComparison() error = %v", err)
		}
		if result.PreviousScan.ScanID != previous.ScanID {
			t.Errorf("expected previous scan %q, got %q", previous.ScanID, result.PreviousScan.ScanID)
		}
	})

	t.Run("rejects scan ID from another target", func(t *testing.T) {
		t.Parallel()

		db := openCompareTestDB(t)
		other := reportWithFindings("https://other.example")
		if err := db.SaveScanReport(ctx, other); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		if err := db.SaveScanReport(ctx, reportWithFindings("https://example.com")); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		if _, err := buildComparison(ctx, db, "https://example.com", other.ScanID, ""); err == nil {
			t.Error("expected error for scan ID belonging to another target")
		}
	})

	t.Run("rejects malformed since date", func(t *testing.T) {
		t.Parallel()

		db := openCompareTestDB(t)
		if err := db.SaveScanReport(ctx, reportWithFindings("https://example.com")); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		if _, err := buildComparison(ctx, db, "https://example.com", "", "01/02/2026"); err == nil {
			t.Error("expected error for malformed date")
		}
	})
}

// openCompareTestDB opens a scan database in a temp directory.
func openCompareTestDB(t *testing.T) *database.ScanDB {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestOutputComparisonFormats tests the comparison output renderers.
func TestOutputComparisonFormats(t *testing.T) {
	t.Parallel()

	result := &ComparisonResult{
		TargetURL: "https://example.com",
		PreviousScan: ScanMetadata{
			ScanID:        "prev-id",
			DateScanned:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
			TotalFindings: 2,
			HighCount:     1,
			MediumCount:   1,
		},
		CurrentScan: ScanMetadata{
			ScanID:        "curr-id",
			DateScanned:   time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
			TotalFindings: 1,
			MediumCount:   1,
		},
		ResolvedFindings: []model.Finding{
			{Type: "missing_hsts", SeverityText: "HIGH", Title: "Missing HSTS header"},
		},
		UnchangedCount: 1,
		RiskChange: RiskChange{
			Direction: riskDirectionImproved,
			HighDelta: -1,
		},
	}

	t.Run("text output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := outputComparisonText(&buf, result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "https://example.com") {
			t.Error("expected output to contain target URL")
		}
		if !strings.Contains(output, "IMPROVED") {
			t.Error("expected output to contain risk direction")
		}
		if !strings.Contains(output, "Missing HSTS header") {
			t.Error("expected output to contain resolved finding")
		}
	})

	t.Run("markdown output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := outputComparisonMarkdown(&buf, result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Scan Comparison: https://example.com") {
			t.Error("expected markdown header")
		}
		if !strings.Contains(output, "| Metric | Previous | Current | Change |") {
			t.Error("expected markdown table")
		}
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := outputComparisonJSON(&buf, result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), `"direction": "improved"`) {
			t.Error("expected JSON output to contain risk direction")
		}
	})
}
