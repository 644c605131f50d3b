package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/Banumathkovinda/web-app-security-tester/internal/browser"
	"github.com/Banumathkovinda/web-app-security-tester/internal/burp"
	"github.com/Banumathkovinda/web-app-security-tester/internal/config"
	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
	"github.com/Banumathkovinda/web-app-security-tester/internal/platform"
	"github.com/Banumathkovinda/web-app-security-tester/internal/scanner"
)

// ErrBrowserUnavailable is returned when browser scans are explicitly
// requested in an environment that cannot run them. Callers must
// surface this to the user rather than silently downgrading the scan.
var ErrBrowserUnavailable = errors.New("browser scans are not available in this environment")

// scanStep adapts a scanner.Scanner to a pipeline Step.
type scanStep struct {
	scanner scanner.Scanner
}

// NewScanStep wraps a scan mode as a pipeline step.
func NewScanStep(s scanner.Scanner) Step {
	return &scanStep{scanner: s}
}

// Name returns the underlying scan mode's name.
func (s *scanStep) Name() string {
	return s.scanner.Name()
}

// Do runs the scan mode against the report.
func (s *scanStep) Do(ctx context.Context, report *model.ScanReport) error {
	return s.scanner.Scan(ctx, report)
}

// skippedBrowserStep records that browser checks could not run.
// Used when a broad "all" scan lands on a platform without browser
// support, so the report says what is missing instead of silently
// omitting results.
type skippedBrowserStep struct{}

// Name returns the step name.
func (s *skippedBrowserStep) Name() string {
	return "browser"
}

// Do marks the browser scan as skipped on the report.
func (s *skippedBrowserStep) Do(_ context.Context, report *model.ScanReport) error {
	report.MarkBrowserScanSkipped()
	report.AddFinding(model.NewFinding(
		"browser_unavailable",
		"Browser Checks Skipped",
		"This environment cannot run browser automation. DOM XSS, mixed content, and client storage checks were not performed.",
		"",
		report.TargetURL,
	))
	return nil
}

// Build assembles the scan pipeline for a single target based on the
// requested scan types, the platform capabilities, and per-site
// configuration.
//
// Explicitly requested browser scans fail with ErrBrowserUnavailable
// when the platform cannot run them. Implicit ("all") browser scans
// degrade to a skip marker on the report instead.
func Build(cfg *config.Config, caps platform.Capabilities, target string, logger *slog.Logger) (*Pipeline, error) {
	browserRequested := false
	for _, st := range cfg.ScanTypes {
		if st == config.ScanTypeBrowser {
			browserRequested = true
		}
	}

	site := siteConfigFor(cfg, target)
	if browserRequested && (!caps.BrowserAutomation || site.SkipBrowser) {
		return nil, ErrBrowserUnavailable
	}

	p := New(WithLogger(logger), WithContinueOnError(true))

	// Burp integration needs a running proxy, so it is strictly opt-in:
	// the UseBurp flag or a literal "burp" scan type. The default and
	// "all" selections never route traffic through the proxy. When burp
	// is on, the other modes share the proxy so Burp's passive checks
	// see every request the scanner makes.
	useBurp := cfg.UseBurp
	for _, st := range cfg.ScanTypes {
		if st == config.ScanTypeBurp {
			useBurp = true
		}
	}

	proxyAddress := ""
	if useBurp {
		proxyAddress = cfg.BurpProxyAddress
	}

	if cfg.WantsScanType(config.ScanTypeRecon) {
		client, err := scanner.NewHTTPClient(cfg.Timeout, proxyAddress)
		if err != nil {
			return nil, err
		}

		recon := scanner.NewReconScanner(client,
			scanner.WithUserAgent(cfg.UserAgent),
			scanner.WithMaxBodySize(cfg.MaxBodySize),
			scanner.WithCookie(site.Cookie),
			scanner.WithHeaders(site.Headers),
		)
		p.AddStep(NewScanStep(recon))
		p.AddStep(NewScanStep(scanner.NewEXIFScanner(client)))
	}

	if cfg.WantsScanType(config.ScanTypeBrowser) && !site.SkipBrowser {
		if caps.BrowserAutomation {
			opts := []browser.Option{
				browser.WithTimeout(cfg.BrowserTimeout),
				browser.WithUserAgent(cfg.UserAgent),
			}
			if useBurp {
				opts = append(opts, browser.WithProxy(cfg.BurpProxyAddress))
			}
			p.AddStep(NewScanStep(browser.NewScanner(opts...)))
		} else {
			p.AddStep(&skippedBrowserStep{})
		}
	}

	if useBurp {
		client, err := burp.NewClient(cfg.BurpProxyAddress, cfg.BurpAPIAddress, burp.WithAPIKey(cfg.BurpAPIKey))
		if err != nil {
			return nil, err
		}
		p.AddStep(NewScanStep(burp.NewScanner(client)))
	}

	return p, nil
}

// siteConfigFor looks up per-site configuration for a target URL.
func siteConfigFor(cfg *config.Config, target string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	u, err := url.Parse(target)
	if err != nil {
		return cfg.SiteConfigs.Defaults
	}
	return cfg.SiteConfigs.GetSiteConfig(u.Hostname())
}
