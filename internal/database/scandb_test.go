package database

import (
	"context"
	"testing"
	"time"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

func openTestDB(t *testing.T) *ScanDB {
	t.Helper()

	sdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = sdb.Close()
	})
	return sdb
}

// TestOpen tests database creation behavior.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates the database file", func(t *testing.T) {
		t.Parallel()
		openTestDB(t)
	})

	t.Run("refuses to create when told not to", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("expected an error for a missing database")
		}
	})
}

// TestSaveAndGetScanReport tests report round-tripping.
func TestSaveAndGetScanReport(t *testing.T) {
	t.Parallel()

	sdb := openTestDB(t)
	ctx := context.Background()

	report := model.NewScanReport("https://example.com", []string{"recon"})
	report.AddFinding(model.NewFinding("missing_csp", "Missing CSP", "", "", "https://example.com"))
	report.Complete()

	if err := sdb.SaveScanReport(ctx, report); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	t.Run("retrieve by scan ID", func(t *testing.T) {
		got, err := sdb.GetScanReport(ctx, report.ScanID)
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got == nil {
			t.Fatal("expected a report")
		}
		if got.TargetURL != report.TargetURL {
			t.Errorf("TargetURL = %q, expected %q", got.TargetURL, report.TargetURL)
		}
		if got.Stats.MediumCount != 1 {
			t.Errorf("MediumCount = %d, expected 1", got.Stats.MediumCount)
		}
		if got.Status != model.StatusCompleted {
			t.Errorf("Status = %q, expected completed", got.Status)
		}
	})

	t.Run("unknown scan ID returns nil", func(t *testing.T) {
		got, err := sdb.GetScanReport(ctx, "no-such-scan")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Error("expected nil for unknown scan ID")
		}
	})

	t.Run("saving the same scan ID updates", func(t *testing.T) {
		report.AddFinding(model.NewFinding("missing_hsts", "Missing HSTS", "", "", "https://example.com"))
		if err := sdb.SaveScanReport(ctx, report); err != nil {
			t.Fatalf("failed to re-save: %v", err)
		}

		got, err := sdb.GetScanReport(ctx, report.ScanID)
		if err != nil {
			t.Fatal(err)
		}
		if got.TotalFindings() != 2 {
			t.Errorf("got %d findings, expected 2 after update", got.TotalFindings())
		}

		history, err := sdb.GetScanHistory(ctx, report.TargetURL)
		if err != nil {
			t.Fatal(err)
		}
		if len(history) != 1 {
			t.Errorf("got %d history entries, expected 1 (update, not insert)", len(history))
		}
	})
}

// TestGetLatestScanReport tests latest-report selection.
func TestGetLatestScanReport(t *testing.T) {
	t.Parallel()

	sdb := openTestDB(t)
	ctx := context.Background()

	got, err := sdb.GetLatestScanReport(ctx, "https://never-scanned.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected nil for a never-scanned target")
	}

	first := model.NewScanReport("https://example.com", nil)
	first.Complete()
	if err := sdb.SaveScanReport(ctx, first); err != nil {
		t.Fatal(err)
	}

	got, err = sdb.GetLatestScanReport(ctx, "https://example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ScanID != first.ScanID {
		t.Error("expected the saved report to be the latest")
	}
}

// TestListHistory tests history listings with metadata.
func TestListHistory(t *testing.T) {
	t.Parallel()

	sdb := openTestDB(t)
	ctx := context.Background()

	for _, target := range []string{"https://a.example", "https://b.example", "https://a.example"} {
		report := model.NewScanReport(target, nil)
		report.AddFinding(model.NewFinding("dom_xss", "DOM XSS", "", report.ScanID, target))
		report.Complete()
		if err := sdb.SaveScanReport(ctx, report); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("all targets", func(t *testing.T) {
		history, err := sdb.ListHistory(ctx, "", 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(history) != 3 {
			t.Fatalf("got %d entries, expected 3", len(history))
		}
		if history[0].RiskSummary["critical"] != 1 {
			t.Errorf("RiskSummary = %v, expected one critical", history[0].RiskSummary)
		}
	})

	t.Run("filtered by target", func(t *testing.T) {
		history, err := sdb.ListHistory(ctx, "https://a.example", 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(history) != 2 {
			t.Errorf("got %d entries, expected 2", len(history))
		}
	})

	t.Run("limited", func(t *testing.T) {
		history, err := sdb.ListHistory(ctx, "", 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(history) != 1 {
			t.Errorf("got %d entries, expected 1", len(history))
		}
	})

	t.Run("targets listing", func(t *testing.T) {
		targets, err := sdb.ListScannedTargets(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(targets) != 2 {
			t.Errorf("got %v, expected 2 distinct targets", targets)
		}
	})
}

// TestParseTimestamp tests SQLite timestamp format handling.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		valid bool
	}{
		{"2026-08-25 10:30:00", true},
		{"2026-08-25T10:30:00Z", true},
		{"2026-08-25T10:30:00+09:00", true},
		{"not a timestamp", false},
	}

	for _, tt := range tests {
		got := parseTimestamp(tt.input)
		if tt.valid && got.IsZero() {
			t.Errorf("parseTimestamp(%q) returned zero time", tt.input)
		}
		if !tt.valid && !got.IsZero() {
			t.Errorf("parseTimestamp(%q) = %v, expected zero time", tt.input, got)
		}
	}
}

// TestScanHistoryOrdering ensures newest-first ordering uses the
// stored timestamp.
func TestScanHistoryOrdering(t *testing.T) {
	t.Parallel()

	sdb := openTestDB(t)
	ctx := context.Background()

	old := model.NewScanReport("https://example.com", nil)
	old.StartTime = time.Now().Add(-time.Hour)
	old.Complete()
	if err := sdb.SaveScanReport(ctx, old); err != nil {
		t.Fatal(err)
	}

	recent := model.NewScanReport("https://example.com", nil)
	recent.Complete()
	if err := sdb.SaveScanReport(ctx, recent); err != nil {
		t.Fatal(err)
	}

	history, err := sdb.GetScanHistory(ctx, "https://example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d reports, expected 2", len(history))
	}
}
