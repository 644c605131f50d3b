package model

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status describes the lifecycle state of a scan.
// We use string constants rather than iota because the status is part of
// the HTTP API surface and must serialize to stable, readable values.
type Status string

const (
	// StatusQueued means the scan has been accepted but not started.
	StatusQueued Status = "queued"

	// StatusRunning means the scan is currently executing.
	StatusRunning Status = "running"

	// StatusCompleted means the scan finished all requested steps.
	StatusCompleted Status = "completed"

	// StatusFailed means the scan aborted with an error.
	StatusFailed Status = "failed"
)

// ScanReport is the main scan result structure.
// It contains all information collected during a scan of a target web
// application.
//
// Design decision: We use a single large struct rather than many small ones
// to simplify serialization and database storage. The Stats sub-struct
// groups severity counters for quick risk assessment.
type ScanReport struct {
	// mu guards the mutable fields below. A scan goroutine keeps
	// writing findings and progress while API handlers serialize the
	// report, so all mutation goes through the methods and concurrent
	// readers take a Snapshot.
	mu sync.RWMutex

	// ScanID is the unique identifier of this scan.
	ScanID string `json:"scan_id"`

	// TargetURL is the scanned URL.
	TargetURL string `json:"target_url"`

	// Status is the current lifecycle state of the scan.
	Status Status `json:"status"`

	// ScanTypes lists the scan categories requested for this scan
	// ("recon", "browser", "burp", or "all").
	ScanTypes []string `json:"scan_types"`

	// StartTime is when the scan was started.
	StartTime time.Time `json:"start_time"`

	// EndTime is when the scan finished. Zero while running.
	EndTime time.Time `json:"end_time,omitempty"`

	// CurrentMessage is a human-readable progress message.
	// Updated by pipeline steps as the scan progresses.
	CurrentMessage string `json:"current_message,omitempty"`

	// LastUpdate is when the status or message last changed.
	LastUpdate time.Time `json:"last_update,omitempty"`

	// Findings contains all security findings collected so far.
	Findings []Finding `json:"findings"`

	// Stats is the severity rollup over Findings.
	Stats Stats `json:"stats"`

	// PerformedScans lists the pipeline steps that actually ran.
	PerformedScans []string `json:"performed_scans,omitempty"`

	// BrowserScanSkipped is true when browser-automation checks were
	// requested but the environment cannot run them. Callers must surface
	// this rather than silently pretending the checks happened.
	BrowserScanSkipped bool `json:"browser_scan_skipped,omitempty"`

	// TimedOut is true if the scan was terminated by a deadline.
	TimedOut bool `json:"timed_out"`

	// Pages caches fetched pages by URL for cross-step analysis.
	// Excluded from JSON due to size.
	Pages map[string]*Page `json:"-"`

	// Error contains any error that occurred during scanning.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// Stats aggregates findings by severity.
// VulnerabilitiesFound counts critical, high, and medium findings, matching
// how the report presents "actionable" results.
type Stats struct {
	// TotalChecks is the total number of findings recorded, including
	// informational ones.
	TotalChecks int `json:"total_checks"`

	// VulnerabilitiesFound is the number of critical, high, and medium
	// severity findings.
	VulnerabilitiesFound int `json:"vulnerabilities_found"`

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

// Finding represents a single security finding.
type Finding struct {
	// Type is the finding type identifier.
	// This maps to the finding metadata in severity.go.
	Type string `json:"type"`

	// Severity is the risk level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Description provides more detail about the finding.
	Description string `json:"description,omitempty"`

	// Impact explains the security implications of this finding.
	Impact string `json:"impact,omitempty"`

	// Remediation provides guidance on how to address this finding.
	Remediation string `json:"remediation,omitempty"`

	// Value is the specific value found (header value, payload, URL, key).
	Value string `json:"value,omitempty"`

	// Location is where the finding was discovered.
	Location string `json:"location,omitempty"`
}

// NewFinding creates a Finding of the given type, filling severity,
// impact, and remediation from the central mapping.
func NewFinding(findingType, title, description, value, location string) Finding {
	info := GetFindingInfo(findingType)
	return Finding{
		Type:         findingType,
		Severity:     info.Severity,
		SeverityText: info.Severity.String(),
		Title:        title,
		Description:  description,
		Impact:       info.Impact,
		Remediation:  info.Remediation,
		Value:        value,
		Location:     location,
	}
}

// NewScanReport creates a new report for the given target URL with a
// fresh scan ID and the status set to queued.
func NewScanReport(targetURL string, scanTypes []string) *ScanReport {
	if len(scanTypes) == 0 {
		scanTypes = []string{"all"}
	}
	return &ScanReport{
		ScanID:    uuid.NewString(),
		TargetURL: targetURL,
		Status:    StatusQueued,
		ScanTypes: scanTypes,
		StartTime: time.Now(),
		Findings:  make([]Finding, 0),
		Pages:     make(map[string]*Page),
	}
}

// AddFinding appends a finding and updates the severity counters.
// Duplicate findings (same type, value, and location) are dropped so
// repeated checks across steps don't inflate the risk summary.
func (r *ScanReport) AddFinding(finding Finding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.Findings {
		if f.Type == finding.Type && f.Value == finding.Value && f.Location == finding.Location {
			return
		}
	}

	r.Findings = append(r.Findings, finding)
	r.Stats.TotalChecks++

	switch finding.Severity {
	case SeverityCritical:
		r.Stats.CriticalCount++
	case SeverityHigh:
		r.Stats.HighCount++
	case SeverityMedium:
		r.Stats.MediumCount++
	case SeverityLow:
		r.Stats.LowCount++
	case SeverityInfo:
		r.Stats.InfoCount++
	}

	if finding.Severity >= SeverityMedium {
		r.Stats.VulnerabilitiesFound++
	}
}

// AddPage caches a fetched page by URL for later analysis steps.
func (r *ScanReport) AddPage(url string, page *Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Pages == nil {
		r.Pages = make(map[string]*Page)
	}
	r.Pages[url] = page
}

// GetPage retrieves a cached page by URL.
// Returns nil if the page was not fetched.
func (r *ScanReport) GetPage(url string) *Page {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Pages[url]
}

// SetProgress updates the progress message and timestamp while a scan is
// running. This is what the status API endpoint reports to pollers.
func (r *ScanReport) SetProgress(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = StatusRunning
	r.CurrentMessage = message
	r.LastUpdate = time.Now()
}

// Complete marks the scan as finished.
func (r *ScanReport) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = StatusCompleted
	r.CurrentMessage = ""
	r.EndTime = time.Now()
	r.LastUpdate = r.EndTime
}

// Fail marks the scan as failed with the given error.
func (r *ScanReport) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = StatusFailed
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
	r.EndTime = time.Now()
	r.LastUpdate = r.EndTime
}

// MarkTimedOut records that the scan was cut short by a deadline.
func (r *ScanReport) MarkTimedOut() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TimedOut = true
}

// MarkBrowserScanSkipped records that browser checks could not run in
// this environment.
func (r *ScanReport) MarkBrowserScanSkipped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.BrowserScanSkipped = true
}

// RecordError stores a step error without changing the scan status.
// Used when the pipeline continues past a failed step.
func (r *ScanReport) RecordError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// RecordStep appends a step name to the performed-scans list.
func (r *ScanReport) RecordStep(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PerformedScans = append(r.PerformedScans, name)
}

// Snapshot returns a copy of the report that is safe to serialize while
// the scan goroutine keeps mutating the original. The page cache is not
// copied; it is excluded from serialization anyway.
func (r *ScanReport) Snapshot() *ScanReport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return &ScanReport{
		ScanID:             r.ScanID,
		TargetURL:          r.TargetURL,
		Status:             r.Status,
		ScanTypes:          slices.Clone(r.ScanTypes),
		StartTime:          r.StartTime,
		EndTime:            r.EndTime,
		CurrentMessage:     r.CurrentMessage,
		LastUpdate:         r.LastUpdate,
		Findings:           slices.Clone(r.Findings),
		Stats:              r.Stats,
		PerformedScans:     slices.Clone(r.PerformedScans),
		BrowserScanSkipped: r.BrowserScanSkipped,
		TimedOut:           r.TimedOut,
		Error:              r.Error,
		ErrorMessage:       r.ErrorMessage,
	}
}

// Duration returns the elapsed scan time. For running scans this is the
// time since the scan started.
func (r *ScanReport) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// TotalFindings returns the total number of findings.
func (r *ScanReport) TotalFindings() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Findings)
}

// HasFindings returns true if there are any findings.
func (r *ScanReport) HasFindings() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Findings) > 0
}

// FindingsBySeverity returns findings filtered by severity.
func (r *ScanReport) FindingsBySeverity(severity Severity) []Finding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []Finding
	for _, f := range r.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}

// Summary is a compact per-scan view for history listings.
// It carries enough information to render a history table without loading
// the full report.
type Summary struct {
	// ScanID is the unique identifier of the scan.
	ScanID string `json:"scan_id"`

	// TargetURL is the scanned URL.
	TargetURL string `json:"target_url"`

	// Status is the final (or current) scan status.
	Status Status `json:"status"`

	// StartTime is when the scan started.
	StartTime time.Time `json:"start_time"`

	// EndTime is when the scan finished. Zero while running.
	EndTime time.Time `json:"end_time,omitempty"`

	// Stats is the severity rollup.
	Stats Stats `json:"stats"`

	// TimedOut indicates the scan hit a deadline.
	TimedOut bool `json:"timed_out"`

	// Error is the error message for failed scans.
	Error string `json:"error,omitempty"`
}

// NewSummary extracts a Summary from a full report.
func NewSummary(report *ScanReport) Summary {
	return Summary{
		ScanID:    report.ScanID,
		TargetURL: report.TargetURL,
		Status:    report.Status,
		StartTime: report.StartTime,
		EndTime:   report.EndTime,
		Stats:     report.Stats,
		TimedOut:  report.TimedOut,
		Error:     report.ErrorMessage,
	}
}
