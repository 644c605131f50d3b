package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// fakeStep is a configurable test step.
type fakeStep struct {
	name   string
	err    error
	delay  time.Duration
	called *bool
}

func (s *fakeStep) Name() string { return s.name }

func (s *fakeStep) Do(ctx context.Context, report *model.ScanReport) error {
	if s.called != nil {
		*s.called = true
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

// TestPipelineExecute tests sequential step execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs all steps in order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&fakeStep{name: "first"}, &fakeStep{name: "second"})

		report := model.NewScanReport("https://example.com", nil)
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.PerformedScans) != 2 {
			t.Fatalf("got %d performed scans, expected 2", len(report.PerformedScans))
		}
		if report.PerformedScans[0] != "first" || report.PerformedScans[1] != "second" {
			t.Errorf("PerformedScans = %v, expected [first second]", report.PerformedScans)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		stepErr := errors.New("boom")
		var secondCalled bool
		p := New()
		p.AddSteps(
			&fakeStep{name: "failing", err: stepErr},
			&fakeStep{name: "after", called: &secondCalled},
		)

		report := model.NewScanReport("https://example.com", nil)
		if err := p.Execute(context.Background(), report); !errors.Is(err, stepErr) {
			t.Errorf("got %v, expected the step error", err)
		}
		if secondCalled {
			t.Error("second step should not run after a failure")
		}
		if report.ErrorMessage != "boom" {
			t.Errorf("ErrorMessage = %q, expected boom", report.ErrorMessage)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		var secondCalled bool
		p := New(WithContinueOnError(true))
		p.AddSteps(
			&fakeStep{name: "failing", err: errors.New("boom")},
			&fakeStep{name: "after", called: &secondCalled},
		)

		report := model.NewScanReport("https://example.com", nil)
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !secondCalled {
			t.Error("second step should run despite the failure")
		}
	})

	t.Run("cancellation marks the report timed out", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := New()
		p.AddStep(&fakeStep{name: "never"})

		report := model.NewScanReport("https://example.com", nil)
		if err := p.Execute(ctx, report); !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, expected context.Canceled", err)
		}
		if !report.TimedOut {
			t.Error("expected TimedOut to be set")
		}
	})

	t.Run("progress message updates per step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&fakeStep{name: "recon"})

		report := model.NewScanReport("https://example.com", nil)
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatal(err)
		}
		if report.CurrentMessage != "running recon checks" {
			t.Errorf("CurrentMessage = %q, expected progress text", report.CurrentMessage)
		}
		if report.Status != model.StatusRunning {
			t.Errorf("Status = %q, expected running until caller completes", report.Status)
		}
	})
}

// TestPipelineStepNames tests step introspection.
func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddSteps(&fakeStep{name: "a"}, &fakeStep{name: "b"})

	if p.StepCount() != 2 {
		t.Errorf("StepCount = %d, expected 2", p.StepCount())
	}
	names := p.StepNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("StepNames = %v, expected [a b]", names)
	}
}
