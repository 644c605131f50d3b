package burp

import (
	"context"
	"fmt"
	"time"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// Scanner runs the Burp Suite scan mode: it verifies the local Burp
// instance is reachable, submits the target to Burp's scanner through
// the REST API, and converts reported issues into findings.
type Scanner struct {
	client *Client

	// pollInterval is how often scan progress is checked.
	pollInterval time.Duration

	// maxWait bounds how long we wait for Burp's scan to finish.
	// Burp audits can run for hours; we collect whatever issues exist
	// when the budget runs out.
	maxWait time.Duration
}

// NewScanner creates a Burp scan mode around an existing client.
func NewScanner(client *Client) *Scanner {
	return &Scanner{
		client:       client,
		pollInterval: 5 * time.Second,
		maxWait:      10 * time.Minute,
	}
}

// Name returns the scan mode name.
func (s *Scanner) Name() string {
	return "burp"
}

// Scan checks Burp availability, launches a Burp scan for the target,
// and records the issues Burp reports. An unreachable Burp instance is
// recorded as an informational finding so the report explains why Burp
// results are absent.
func (s *Scanner) Scan(ctx context.Context, report *model.ScanReport) error {
	status := s.client.CheckProxy(ctx)
	if status != ProxyStatusOK {
		report.AddFinding(model.NewFinding(
			"burp_proxy_unavailable",
			"Burp Proxy Unavailable",
			fmt.Sprintf("The Burp proxy at %s could not be reached: %s. Burp checks were skipped.",
				s.client.ProxyAddress(), status),
			status.String(),
			report.TargetURL,
		))
		return nil
	}

	report.AddFinding(model.NewFinding(
		"burp_proxy_connected",
		"Burp Proxy Connected",
		fmt.Sprintf("Traffic is routed through the Burp proxy at %s.", s.client.ProxyAddress()),
		s.client.ProxyAddress(),
		report.TargetURL,
	))

	if err := s.client.CheckAPI(ctx); err != nil {
		report.AddFinding(model.NewFinding(
			"burp_proxy_unavailable",
			"Burp REST API Unavailable",
			fmt.Sprintf("The Burp REST API did not respond: %v. Active Burp scanning was skipped.", err),
			err.Error(),
			report.TargetURL,
		))
		return nil
	}

	taskID, err := s.client.StartScan(ctx, report.TargetURL)
	if err != nil {
		report.AddFinding(model.NewFinding(
			"burp_proxy_unavailable",
			"Burp Scan Launch Failed",
			fmt.Sprintf("Burp rejected the scan request: %v", err),
			err.Error(),
			report.TargetURL,
		))
		return nil
	}

	issues, err := s.awaitIssues(ctx, taskID)
	if err != nil && len(issues) == 0 {
		return err
	}

	for _, issue := range issues {
		AddIssueFinding(report, issue)
	}
	return nil
}

// awaitIssues polls the scan task until it finishes, the budget runs
// out, or the context is canceled. Partial issue lists are returned on
// timeout so a bounded scan still yields results.
func (s *Scanner) awaitIssues(ctx context.Context, taskID string) ([]Issue, error) {
	deadline := time.NewTimer(s.maxWait)
	defer deadline.Stop()
	tick := time.NewTicker(s.pollInterval)
	defer tick.Stop()

	var last []Issue
	for {
		issues, status, err := s.client.ScanIssues(ctx, taskID)
		if err != nil {
			return last, err
		}
		last = issues

		if status == "succeeded" || status == "failed" {
			return last, nil
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-deadline.C:
			return last, nil
		case <-tick.C:
		}
	}
}

// AddIssueFinding converts a Burp issue into a finding on the report.
// Burp's own severity is trusted; the finding type carries the
// confidence so low-confidence issues are distinguishable.
func AddIssueFinding(report *model.ScanReport, issue Issue) {
	severity := model.ParseSeverity(issue.Severity)
	location := issue.Origin + issue.Path

	report.AddFinding(model.Finding{
		Type:         "burp_issue",
		Severity:     severity,
		SeverityText: severity.String(),
		Title:        issue.Name,
		Description:  issue.Description,
		Value:        fmt.Sprintf("confidence: %s", issue.Confidence),
		Location:     location,
	})
}
