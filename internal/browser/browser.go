package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// Scanner runs security checks inside a headless Chrome instance.
// Browser automation catches issues invisible to plain HTTP scanning:
// DOM-based XSS sinks, mixed content loaded by scripts, and sensitive
// data in client-side storage.
//
// Design decision: We drive a real browser via chromedp rather than
// simulating JavaScript because:
//  1. DOM XSS only manifests when real sinks execute
//  2. Mixed content is often loaded dynamically after page load
//  3. localStorage/sessionStorage are only observable in a browser
type Scanner struct {
	// timeout is the per-page budget.
	timeout time.Duration

	// userAgent is the User-Agent to present.
	userAgent string

	// proxyAddress routes browser traffic through a proxy when set.
	proxyAddress string

	// payloads are the DOM XSS probes appended to the URL fragment.
	payloads []string
}

// Option configures a browser Scanner.
type Option func(*Scanner)

// WithTimeout sets the per-page budget.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Scanner) {
		s.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent presented by the browser.
func WithUserAgent(ua string) Option {
	return func(s *Scanner) {
		s.userAgent = ua
	}
}

// WithProxy routes browser traffic through the given proxy address.
func WithProxy(address string) Option {
	return func(s *Scanner) {
		s.proxyAddress = address
	}
}

// defaultPayloads are DOM XSS probes placed in the URL fragment.
// Fragments never reach the server, so a fired dialog proves a
// client-side sink executed attacker-controlled input.
var defaultPayloads = []string{
	`<img src=x onerror=alert('webscan-dom-xss')>`,
	`<svg onload=alert('webscan-dom-xss')>`,
	`'-alert('webscan-dom-xss')-'`,
	`"><script>alert('webscan-dom-xss')</script>`,
}

// NewScanner creates a browser scanner with sensible defaults.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		timeout:   60 * time.Second,
		userAgent: "webscan/1.0",
		payloads:  defaultPayloads,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the scan mode name.
func (s *Scanner) Name() string {
	return "browser"
}

// Scan runs all browser checks against the report's target.
// A browser launch failure is recorded as an informational finding so
// the report explains why browser results are absent.
func (s *Scanner) Scan(ctx context.Context, report *model.ScanReport) error {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, s.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// Launch check: a trivial navigation proves Chrome is available.
	launchCtx, cancelLaunch := context.WithTimeout(browserCtx, s.timeout)
	defer cancelLaunch()
	if err := chromedp.Run(launchCtx, chromedp.Navigate("about:blank")); err != nil {
		report.AddFinding(model.NewFinding(
			"browser_unavailable",
			"Browser Automation Unavailable",
			fmt.Sprintf("Headless Chrome could not be started: %v. Browser checks were skipped.", err),
			err.Error(),
			report.TargetURL,
		))
		report.MarkBrowserScanSkipped()
		return nil //nolint:nilerr // Missing browser degrades the scan, it doesn't fail it
	}

	observed, err := s.observePage(browserCtx, report.TargetURL)
	if err != nil {
		report.AddFinding(model.NewFinding(
			"connection_error",
			"Browser Navigation Failed",
			fmt.Sprintf("The browser could not load the target: %v", err),
			err.Error(),
			report.TargetURL,
		))
		return nil //nolint:nilerr // Unreachable target is a finding, not a scan failure
	}

	AnalyzeMixedContent(report, report.TargetURL, observed.ResourceURLs)
	AnalyzeForms(report, report.TargetURL, observed.Forms)
	AnalyzeStorage(report, report.TargetURL, observed.Storage)
	AnalyzeFrameability(report, report.TargetURL, observed.Framable)

	s.probeDOMXSS(browserCtx, report)

	return nil
}

// allocatorOptions returns the Chrome launch flags.
// Certificate errors are ignored because scans may target staging hosts
// with self-signed certificates, and the proxy CA is rarely trusted.
func (s *Scanner) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{},
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.WindowSize(1280, 800),
		chromedp.UserAgent(s.userAgent),
		chromedp.Flag("ignore-certificate-errors", true),
	)
	if s.proxyAddress != "" {
		opts = append(opts, chromedp.ProxyServer("http://"+s.proxyAddress))
	}
	return opts
}

// PageObservation holds everything collected from one page load.
type PageObservation struct {
	// ResourceURLs are all URLs the page requested while loading.
	ResourceURLs []string

	// Forms describes the forms present in the live DOM.
	Forms []DOMForm

	// Storage holds localStorage and sessionStorage contents.
	Storage StorageSnapshot

	// Framable is true when the document response carried neither
	// X-Frame-Options nor a CSP frame-ancestors directive.
	Framable bool
}

// DOMForm is a form as seen in the rendered DOM. Unlike the static
// parser, this includes forms injected by JavaScript.
type DOMForm struct {
	Action          string `json:"action"`
	Method          string `json:"method"`
	HasPassword     bool   `json:"hasPassword"`
	PasswordField   string `json:"passwordField"`
	AutocompleteOff bool   `json:"autocompleteOff"`
}

// StorageSnapshot holds client-side storage keys and values.
type StorageSnapshot struct {
	Local   map[string]string `json:"local"`
	Session map[string]string `json:"session"`
}

// collectFormsJS serializes the rendered DOM's forms to JSON.
const collectFormsJS = `JSON.stringify(Array.from(document.forms).map(f => {
	const pw = f.querySelector('input[type="password"]');
	return {
		action: f.action || '',
		method: (f.method || 'get').toUpperCase(),
		hasPassword: pw !== null,
		passwordField: pw ? (pw.name || pw.id || 'unnamed') : '',
		autocompleteOff: pw ? (pw.autocomplete === 'off' || f.autocomplete === 'off') : false
	};
}))`

// collectStorageJS serializes localStorage and sessionStorage to JSON.
const collectStorageJS = `JSON.stringify({
	local: Object.fromEntries(Object.keys(localStorage).map(k => [k, localStorage.getItem(k)])),
	session: Object.fromEntries(Object.keys(sessionStorage).map(k => [k, sessionStorage.getItem(k)]))
})`

// observePage loads the target once and collects resource requests,
// rendered forms, and client storage.
func (s *Scanner) observePage(browserCtx context.Context, target string) (*PageObservation, error) {
	ctx, cancel := context.WithTimeout(browserCtx, s.timeout)
	defer cancel()

	obs := &PageObservation{}

	var mu sync.Mutex
	var docHeaders network.Headers
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *network.EventRequestWillBeSent:
			mu.Lock()
			obs.ResourceURLs = append(obs.ResourceURLs, ev.Request.URL)
			mu.Unlock()
		case *network.EventResponseReceived:
			// The first document response carries the headers that
			// decide frameability.
			if ev.Type == network.ResourceTypeDocument {
				mu.Lock()
				if docHeaders == nil {
					docHeaders = ev.Response.Headers
				}
				mu.Unlock()
			}
		}
	})

	var formsJSON, storageJSON string
	err := chromedp.Run(ctx,
		network.Enable(),
		chromedp.Navigate(target),
		chromedp.Sleep(2*time.Second), // let dynamic resources load
		chromedp.Evaluate(collectFormsJS, &formsJSON),
		chromedp.Evaluate(collectStorageJS, &storageJSON),
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(formsJSON), &obs.Forms); err != nil {
		return nil, fmt.Errorf("failed to decode forms: %w", err)
	}
	if err := json.Unmarshal([]byte(storageJSON), &obs.Storage); err != nil {
		return nil, fmt.Errorf("failed to decode storage: %w", err)
	}

	// Frameability is judged from the response headers observed via CDP.
	// A page served without X-Frame-Options or frame-ancestors can be
	// embedded by an attacker's page.
	mu.Lock()
	obs.Framable = framableFromHeaders(docHeaders)
	mu.Unlock()

	return obs, nil
}

// framableFromHeaders reports whether a document response allows the
// page to be embedded in a frame. X-Frame-Options or a CSP
// frame-ancestors directive blocks embedding; a response carrying
// neither, or a navigation with no captured document response, counts
// as framable.
func framableFromHeaders(headers network.Headers) bool {
	for key, value := range headers {
		v, _ := value.(string)
		switch strings.ToLower(key) {
		case "x-frame-options":
			return false
		case "content-security-policy":
			if strings.Contains(strings.ToLower(v), "frame-ancestors") {
				return false
			}
		}
	}
	return true
}

// probeDOMXSS navigates the target with each payload in the URL
// fragment and watches for JavaScript dialogs. A dialog containing the
// probe marker proves a DOM sink executed the fragment.
func (s *Scanner) probeDOMXSS(browserCtx context.Context, report *model.ScanReport) {
	for _, payload := range s.payloads {
		probeURL := report.TargetURL + "#" + url.PathEscape(payload)

		ctx, cancel := context.WithTimeout(browserCtx, s.timeout)

		fired := make(chan string, 1)
		chromedp.ListenTarget(ctx, func(ev interface{}) {
			if dlg, ok := ev.(*page.EventJavascriptDialogOpening); ok {
				select {
				case fired <- dlg.Message:
				default:
				}
				// Dismiss so the page doesn't hang
				go func() {
					_ = chromedp.Run(ctx, page.HandleJavaScriptDialog(false))
				}()
			}
		})

		err := chromedp.Run(ctx,
			chromedp.Navigate(probeURL),
			chromedp.Sleep(2*time.Second),
		)
		cancel()
		if err != nil {
			continue
		}

		select {
		case msg := <-fired:
			if strings.Contains(msg, "webscan-dom-xss") {
				report.AddFinding(model.NewFinding(
					"dom_xss_hash",
					"DOM-Based XSS via URL Fragment",
					"A JavaScript dialog fired when a probe was placed in the URL fragment. A client-side sink executes attacker-controlled input.",
					payload,
					probeURL,
				))
			}
		default:
		}
	}
}
