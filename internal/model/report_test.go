package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

// TestNewScanReport tests the ScanReport constructor.
func TestNewScanReport(t *testing.T) {
	t.Parallel()

	report := NewScanReport("https://example.com", []string{"recon"})

	t.Run("sets target URL", func(t *testing.T) {
		t.Parallel()
		if report.TargetURL != "https://example.com" {
			t.Errorf("got %q, expected %q", report.TargetURL, "https://example.com")
		}
	})

	t.Run("generates a scan ID", func(t *testing.T) {
		t.Parallel()
		if report.ScanID == "" {
			t.Error("expected ScanID to be set")
		}
	})

	t.Run("starts queued", func(t *testing.T) {
		t.Parallel()
		if report.Status != StatusQueued {
			t.Errorf("got %q, expected %q", report.Status, StatusQueued)
		}
	})

	t.Run("sets start timestamp", func(t *testing.T) {
		t.Parallel()
		if report.StartTime.IsZero() {
			t.Error("expected StartTime to be set")
		}
		if time.Since(report.StartTime) > time.Second {
			t.Error("StartTime is too old")
		}
	})

	t.Run("initializes Pages map", func(t *testing.T) {
		t.Parallel()
		if report.Pages == nil {
			t.Error("expected Pages to be initialized")
		}
	})

	t.Run("defaults scan types to all", func(t *testing.T) {
		t.Parallel()
		r := NewScanReport("https://example.com", nil)
		if len(r.ScanTypes) != 1 || r.ScanTypes[0] != "all" {
			t.Errorf("got %v, expected [all]", r.ScanTypes)
		}
	})

	t.Run("generates unique scan IDs", func(t *testing.T) {
		t.Parallel()
		other := NewScanReport("https://example.com", nil)
		if other.ScanID == report.ScanID {
			t.Error("expected distinct scan IDs")
		}
	})
}

// TestScanReportAddFinding tests finding accumulation and stats rollup.
func TestScanReportAddFinding(t *testing.T) {
	t.Parallel()

	t.Run("updates severity counters", func(t *testing.T) {
		t.Parallel()

		report := NewScanReport("https://example.com", nil)
		report.AddFinding(NewFinding("dom_xss", "DOM XSS", "", "<script>", "https://example.com"))
		report.AddFinding(NewFinding("insecure_form", "Insecure Form", "", "", "https://example.com/login"))
		report.AddFinding(NewFinding("missing_csp", "Missing CSP", "", "", ""))
		report.AddFinding(NewFinding("password_autocomplete", "Autocomplete", "", "", ""))
		report.AddFinding(NewFinding("form_detected", "Form", "", "", ""))

		if report.Stats.CriticalCount != 1 {
			t.Errorf("critical: got %d, expected 1", report.Stats.CriticalCount)
		}
		if report.Stats.HighCount != 1 {
			t.Errorf("high: got %d, expected 1", report.Stats.HighCount)
		}
		if report.Stats.MediumCount != 1 {
			t.Errorf("medium: got %d, expected 1", report.Stats.MediumCount)
		}
		if report.Stats.LowCount != 1 {
			t.Errorf("low: got %d, expected 1", report.Stats.LowCount)
		}
		if report.Stats.InfoCount != 1 {
			t.Errorf("info: got %d, expected 1", report.Stats.InfoCount)
		}
		if report.Stats.TotalChecks != 5 {
			t.Errorf("total: got %d, expected 5", report.Stats.TotalChecks)
		}
		if report.Stats.VulnerabilitiesFound != 3 {
			t.Errorf("vulnerabilities: got %d, expected 3 (critical+high+medium)", report.Stats.VulnerabilitiesFound)
		}
	})

	t.Run("deduplicates by type, value, and location", func(t *testing.T) {
		t.Parallel()

		report := NewScanReport("https://example.com", nil)
		f := NewFinding("missing_csp", "Missing CSP", "", "", "https://example.com")
		report.AddFinding(f)
		report.AddFinding(f)

		if got := report.TotalFindings(); got != 1 {
			t.Errorf("got %d findings, expected 1", got)
		}
	})
}

// TestScanReportLifecycle tests the status transitions.
func TestScanReportLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("SetProgress moves to running", func(t *testing.T) {
		t.Parallel()

		report := NewScanReport("https://example.com", nil)
		report.SetProgress("performing reconnaissance")

		if report.Status != StatusRunning {
			t.Errorf("got %q, expected %q", report.Status, StatusRunning)
		}
		if report.CurrentMessage != "performing reconnaissance" {
			t.Errorf("got %q, expected progress message", report.CurrentMessage)
		}
		if report.LastUpdate.IsZero() {
			t.Error("expected LastUpdate to be set")
		}
	})

	t.Run("Complete sets end time and clears message", func(t *testing.T) {
		t.Parallel()

		report := NewScanReport("https://example.com", nil)
		report.SetProgress("working")
		report.Complete()

		if report.Status != StatusCompleted {
			t.Errorf("got %q, expected %q", report.Status, StatusCompleted)
		}
		if report.EndTime.IsZero() {
			t.Error("expected EndTime to be set")
		}
		if report.CurrentMessage != "" {
			t.Error("expected CurrentMessage to be cleared")
		}
	})

	t.Run("Fail records the error", func(t *testing.T) {
		t.Parallel()

		report := NewScanReport("https://example.com", nil)
		report.Fail(errors.New("connection refused"))

		if report.Status != StatusFailed {
			t.Errorf("got %q, expected %q", report.Status, StatusFailed)
		}
		if report.ErrorMessage != "connection refused" {
			t.Errorf("got %q, expected error message", report.ErrorMessage)
		}
	})
}

// TestNewSummary tests summary extraction.
func TestNewSummary(t *testing.T) {
	t.Parallel()

	report := NewScanReport("https://example.com", nil)
	report.AddFinding(NewFinding("dom_xss", "DOM XSS", "", "x", "y"))
	report.Complete()

	summary := NewSummary(report)

	if summary.ScanID != report.ScanID {
		t.Errorf("got %q, expected %q", summary.ScanID, report.ScanID)
	}
	if summary.TargetURL != report.TargetURL {
		t.Errorf("got %q, expected %q", summary.TargetURL, report.TargetURL)
	}
	if summary.Status != StatusCompleted {
		t.Errorf("got %q, expected %q", summary.Status, StatusCompleted)
	}
	if summary.Stats.CriticalCount != 1 {
		t.Errorf("got %d critical, expected 1", summary.Stats.CriticalCount)
	}
}

// TestScanReportSnapshot tests that snapshots are isolated copies that
// stay valid while the original keeps changing.
func TestScanReportSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("later mutation does not leak into the snapshot", func(t *testing.T) {
		t.Parallel()

		report := NewScanReport("https://example.com", []string{"recon"})
		report.AddFinding(NewFinding("missing_csp", "Missing CSP", "", "", "https://example.com"))

		snap := report.Snapshot()

		report.AddFinding(NewFinding("dom_xss", "DOM XSS", "", "<script>", "https://example.com"))
		report.SetProgress("still working")
		report.Complete()

		if got := snap.TotalFindings(); got != 1 {
			t.Errorf("snapshot has %d findings, expected 1", got)
		}
		if snap.Status != StatusQueued {
			t.Errorf("snapshot status = %q, expected %q", snap.Status, StatusQueued)
		}
		if snap.Stats.CriticalCount != 0 {
			t.Error("snapshot stats picked up a later finding")
		}
	})

	t.Run("serializable while the scan goroutine mutates", func(t *testing.T) {
		t.Parallel()

		report := NewScanReport("https://example.com", nil)
		done := make(chan struct{})

		go func() {
			defer close(done)
			for i := 0; i < 200; i++ {
				report.SetProgress(fmt.Sprintf("step %d", i))
				report.AddFinding(NewFinding(
					"form_detected", "Form Detected", "",
					fmt.Sprintf("form-%d", i), "https://example.com",
				))
				report.RecordStep("recon")
			}
			report.MarkTimedOut()
			report.Complete()
		}()

		for {
			if _, err := json.Marshal(report.Snapshot()); err != nil {
				t.Fatalf("snapshot did not serialize: %v", err)
			}
			select {
			case <-done:
				if report.Snapshot().TotalFindings() != 200 {
					t.Error("expected every finding in the final snapshot")
				}
				return
			default:
			}
		}
	})
}
