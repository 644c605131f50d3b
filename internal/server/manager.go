package server

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"

	"github.com/Banumathkovinda/web-app-security-tester/internal/config"
	"github.com/Banumathkovinda/web-app-security-tester/internal/database"
	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
	"github.com/Banumathkovinda/web-app-security-tester/internal/pipeline"
	"github.com/Banumathkovinda/web-app-security-tester/internal/platform"
	"github.com/Banumathkovinda/web-app-security-tester/internal/report"
)

// ErrInvalidTarget is returned when a scan request carries a URL that is
// not an absolute http or https URL.
var ErrInvalidTarget = errors.New("target must be an absolute http or https URL")

// Manager owns the scan lifecycle behind the API: launching pipelines,
// tracking running scans, and recording finished ones.
//
// Design decision: On a full host scans run in goroutines and callers
// poll the status endpoint. On serverless platforms the instance may be
// frozen the moment the response is sent, so StartScan runs the scan
// synchronously within the platform's duration budget and returns the
// finished report in the launch response.
type Manager struct {
	cfg    *config.Config
	caps   platform.Capabilities
	logger *slog.Logger

	// db persists finished scans. Nil when the platform has no durable
	// storage; history then lives in memory only.
	db *database.ScanDB

	// metrics is optional scan instrumentation.
	metrics *Metrics

	// store writes finished reports to disk as JSON files. The location
	// follows the platform: a temp directory on serverless, the XDG data
	// directory elsewhere.
	store *report.Store

	mu sync.RWMutex

	// scans holds every report this instance has seen, running or done.
	scans map[string]*model.ScanReport

	// history is the in-memory fallback ordering, newest first.
	history []string

	// wg tracks running scan goroutines for clean shutdown.
	wg sync.WaitGroup
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDatabase persists finished scans to the given database.
func WithDatabase(db *database.ScanDB) ManagerOption {
	return func(m *Manager) {
		m.db = db
	}
}

// WithMetrics records scan activity on the given metrics.
func WithMetrics(metrics *Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// NewManager creates a scan manager for the given configuration and
// platform capabilities.
func NewManager(cfg *config.Config, caps platform.Capabilities, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		cfg:    cfg,
		caps:   caps,
		logger: logger,
		store:  report.NewStore(caps),
		scans:  make(map[string]*model.ScanReport),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// StartScan validates the target, builds a pipeline, and launches the
// scan. On serverless platforms the returned report is already finished;
// otherwise it is running and callers should poll for status.
//
// useBurp opts the scan into Burp proxy routing; without it no scan
// selection, including the default "all", touches the proxy.
//
// Explicit browser scan requests in an environment without browser
// automation fail with pipeline.ErrBrowserUnavailable.
func (m *Manager) StartScan(ctx context.Context, target string, scanTypes []string, useBurp bool) (*model.ScanReport, error) {
	u, err := url.Parse(target)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidTarget
	}

	for _, st := range scanTypes {
		switch st {
		case config.ScanTypeAll, config.ScanTypeRecon, config.ScanTypeBrowser, config.ScanTypeBurp:
		default:
			return nil, config.ErrInvalidScanType
		}
	}

	scanCfg := *m.cfg
	scanCfg.Targets = []string{target}
	if len(scanTypes) > 0 {
		scanCfg.ScanTypes = scanTypes
	}
	if useBurp {
		scanCfg.UseBurp = true
	}

	p, err := pipeline.Build(&scanCfg, m.caps, target, m.logger)
	if err != nil {
		return nil, err
	}

	report := model.NewScanReport(target, scanCfg.ScanTypes)
	m.track(report)

	if m.caps.Serverless {
		m.runScan(ctx, p, report)
		return report.Snapshot(), nil
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.runScan(context.Background(), p, report)
	}()

	// The scan goroutine keeps writing to the report, so the caller
	// gets an isolated copy.
	return report.Snapshot(), nil
}

// runScan executes the pipeline and records the outcome.
func (m *Manager) runScan(ctx context.Context, p *pipeline.Pipeline, report *model.ScanReport) {
	if m.metrics != nil {
		m.metrics.ScanStarted()
	}

	if m.caps.MaxScanDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.caps.MaxScanDuration)
		defer cancel()
	}

	m.logger.Info("scan started", "scan_id", report.ScanID, "target", report.TargetURL)

	switch err := p.Execute(ctx, report); {
	case errors.Is(err, context.DeadlineExceeded):
		// Partial results are still results: a timed-out scan completes
		// with the TimedOut flag set instead of failing.
		report.Complete()
		report.MarkTimedOut()
		m.logger.Warn("scan hit the duration budget", "scan_id", report.ScanID)
	case err != nil:
		report.Fail(err)
		m.logger.Warn("scan failed", "scan_id", report.ScanID, "error", err.Error())
	default:
		report.Complete()
		m.logger.Info("scan completed",
			"scan_id", report.ScanID,
			"findings", report.TotalFindings(),
			"duration", report.Duration().String(),
		)
	}

	m.finish(report)
}

// finish persists the report and updates metrics.
func (m *Manager) finish(scanReport *model.ScanReport) {
	if m.db != nil {
		if err := m.db.SaveScanReport(context.Background(), scanReport); err != nil {
			m.logger.Warn("failed to persist scan", "scan_id", scanReport.ScanID, "error", err.Error())
		}
	}

	if path, err := m.store.Save(scanReport, "json"); err != nil {
		m.logger.Warn("failed to write report file", "scan_id", scanReport.ScanID, "error", err.Error())
	} else {
		m.logger.Info("report file written",
			"scan_id", scanReport.ScanID,
			"path", path,
			"ephemeral", m.store.Ephemeral(),
		)
	}

	if m.metrics != nil {
		m.metrics.ScanFinished(string(scanReport.Status), scanReport.Duration().Seconds(), map[string]int{
			"critical": scanReport.Stats.CriticalCount,
			"high":     scanReport.Stats.HighCount,
			"medium":   scanReport.Stats.MediumCount,
			"low":      scanReport.Stats.LowCount,
			"info":     scanReport.Stats.InfoCount,
		})
	}
}

// track registers a report in the in-memory scan table.
func (m *Manager) track(report *model.ScanReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans[report.ScanID] = report
	m.history = append([]string{report.ScanID}, m.history...)
}

// GetReport returns the report for a scan ID, checking this instance's
// scans first and then durable storage. Returns nil when unknown.
// In-memory hits are snapshots because the scan may still be running.
func (m *Manager) GetReport(ctx context.Context, scanID string) (*model.ScanReport, error) {
	m.mu.RLock()
	report, ok := m.scans[scanID]
	m.mu.RUnlock()
	if ok {
		return report.Snapshot(), nil
	}

	if m.db != nil {
		return m.db.GetScanReport(ctx, scanID)
	}
	return nil, nil
}

// History lists finished and running scans, newest first, optionally
// filtered by target and bounded by limit.
func (m *Manager) History(ctx context.Context, target string, limit int) ([]database.ScanReportMetadata, error) {
	if m.db != nil {
		return m.db.ListHistory(ctx, target, limit)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]database.ScanReportMetadata, 0, len(m.history))
	for _, scanID := range m.history {
		report := m.scans[scanID].Snapshot()
		if target != "" && report.TargetURL != target {
			continue
		}
		results = append(results, database.ScanReportMetadata{
			ScanID:    report.ScanID,
			TargetURL: report.TargetURL,
			Status:    string(report.Status),
			Timestamp: report.StartTime,
			RiskSummary: map[string]int{
				"critical": report.Stats.CriticalCount,
				"high":     report.Stats.HighCount,
				"medium":   report.Stats.MediumCount,
				"low":      report.Stats.LowCount,
				"info":     report.Stats.InfoCount,
			},
		})
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// Wait blocks until all running scan goroutines finish.
// Used during graceful shutdown.
func (m *Manager) Wait() {
	m.wg.Wait()
}
