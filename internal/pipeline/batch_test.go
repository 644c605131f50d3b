package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// countingStep counts concurrent executions to verify the limit.
type countingStep struct {
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (s *countingStep) Name() string { return "counting" }

func (s *countingStep) Do(ctx context.Context, report *model.ScanReport) error {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	return nil
}

// TestProcessBatch tests concurrent batch scanning.
func TestProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("returns a report per target in order", func(t *testing.T) {
		t.Parallel()

		factory := func(target string) (*Pipeline, error) {
			p := New()
			p.AddStep(&fakeStep{name: "noop"})
			return p, nil
		}

		targets := []string{"https://a.example", "https://b.example", "https://c.example"}
		bp := NewBatchProcessor(factory, WithConcurrency(2), WithScanTypes([]string{"recon"}))

		reports, err := bp.ProcessBatch(context.Background(), targets)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reports) != len(targets) {
			t.Fatalf("got %d reports, expected %d", len(reports), len(targets))
		}
		for i, report := range reports {
			if report.TargetURL != targets[i] {
				t.Errorf("report %d is for %q, expected %q", i, report.TargetURL, targets[i])
			}
			if report.Status != model.StatusCompleted {
				t.Errorf("report %d status = %q, expected completed", i, report.Status)
			}
			if len(report.ScanTypes) != 1 || report.ScanTypes[0] != "recon" {
				t.Errorf("report %d scan types = %v, expected [recon]", i, report.ScanTypes)
			}
		}
	})

	t.Run("failed pipelines produce failed reports", func(t *testing.T) {
		t.Parallel()

		factory := func(target string) (*Pipeline, error) {
			p := New()
			p.AddStep(&fakeStep{name: "bad", err: errors.New("boom")})
			return p, nil
		}

		bp := NewBatchProcessor(factory)
		reports, err := bp.ProcessBatch(context.Background(), []string{"https://a.example"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reports[0].Status != model.StatusFailed {
			t.Errorf("status = %q, expected failed", reports[0].Status)
		}
		if reports[0].ErrorMessage != "boom" {
			t.Errorf("ErrorMessage = %q, expected boom", reports[0].ErrorMessage)
		}
	})

	t.Run("factory errors fail the report, not the batch", func(t *testing.T) {
		t.Parallel()

		factory := func(target string) (*Pipeline, error) {
			return nil, ErrBrowserUnavailable
		}

		bp := NewBatchProcessor(factory)
		reports, err := bp.ProcessBatch(context.Background(), []string{"https://a.example"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reports[0].Status != model.StatusFailed {
			t.Errorf("status = %q, expected failed", reports[0].Status)
		}
		if !errors.Is(reports[0].Error, ErrBrowserUnavailable) {
			t.Errorf("Error = %v, expected ErrBrowserUnavailable", reports[0].Error)
		}
	})

	t.Run("respects the concurrency limit", func(t *testing.T) {
		t.Parallel()

		step := &countingStep{}
		factory := func(target string) (*Pipeline, error) {
			p := New()
			p.AddStep(step)
			return p, nil
		}

		targets := make([]string, 20)
		for i := range targets {
			targets[i] = "https://example.com"
		}

		bp := NewBatchProcessor(factory, WithConcurrency(3))
		if _, err := bp.ProcessBatch(context.Background(), targets); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen := step.maxSeen.Load(); seen > 3 {
			t.Errorf("saw %d concurrent scans, limit was 3", seen)
		}
	})
}
