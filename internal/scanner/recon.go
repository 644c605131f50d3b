package scanner

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// Recommended security headers and the finding type recorded when they
// are missing. The order here is the order findings appear in reports.
var securityHeaderChecks = []struct {
	header      string
	findingType string
	title       string
	httpsOnly   bool
}{
	{
		header:      "Strict-Transport-Security",
		findingType: "missing_hsts",
		title:       "Missing Strict-Transport-Security Header",
		httpsOnly:   true,
	},
	{
		header:      "Content-Security-Policy",
		findingType: "missing_csp",
		title:       "Missing Content-Security-Policy Header",
	},
	{
		header:      "X-Frame-Options",
		findingType: "missing_x_frame_options",
		title:       "Missing X-Frame-Options Header",
	},
	{
		header:      "X-Content-Type-Options",
		findingType: "missing_x_content_type_options",
		title:       "Missing X-Content-Type-Options Header",
	},
	{
		header:      "Referrer-Policy",
		findingType: "missing_referrer_policy",
		title:       "Missing Referrer-Policy Header",
	},
	{
		header:      "Permissions-Policy",
		findingType: "missing_permissions_policy",
		title:       "Missing Permissions-Policy Header",
	},
}

// ReconScanner performs HTTP reconnaissance against a target web
// application. It checks liveness, audits security headers and cookie
// flags, and discovers forms for later checks.
//
// Design decision: We use a struct with the http.Client rather than
// passing the client on each call because:
//  1. Client configuration (proxy, timeouts) should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test with mock transport
type ReconScanner struct {
	// client is the HTTP client, optionally routed through a proxy.
	client *http.Client

	// userAgent is the User-Agent header to use for requests.
	userAgent string

	// maxBodySize limits the response body size to prevent memory exhaustion.
	maxBodySize int64

	// cookie is an optional session cookie sent with requests.
	cookie string

	// headers are extra request headers from per-site configuration.
	headers map[string]string
}

// ReconOption configures a ReconScanner.
type ReconOption func(*ReconScanner)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ReconOption {
	return func(s *ReconScanner) {
		s.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
// Default is 5MB to prevent memory exhaustion from large responses.
func WithMaxBodySize(size int64) ReconOption {
	return func(s *ReconScanner) {
		s.maxBodySize = size
	}
}

// WithCookie sets a session cookie sent with every request.
// Useful for scanning pages behind a login.
func WithCookie(cookie string) ReconOption {
	return func(s *ReconScanner) {
		s.cookie = cookie
	}
}

// WithHeaders sets extra request headers from per-site configuration.
func WithHeaders(headers map[string]string) ReconOption {
	return func(s *ReconScanner) {
		s.headers = headers
	}
}

// NewReconScanner creates a new reconnaissance scanner with the given
// HTTP client. The client may be pre-configured with a proxy.
func NewReconScanner(client *http.Client, opts ...ReconOption) *ReconScanner {
	s := &ReconScanner{
		client:      client,
		userAgent:   "webscan/1.0",
		maxBodySize: model.MaxPageSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the scan mode name.
func (s *ReconScanner) Name() string {
	return "recon"
}

// Scan fetches the target page and runs all reconnaissance checks.
// A connection failure is recorded as a high severity finding rather
// than returned as an error, so the rest of the pipeline can continue.
func (s *ReconScanner) Scan(ctx context.Context, report *model.ScanReport) error {
	page, err := s.Fetch(ctx, report.TargetURL)
	if err != nil {
		report.AddFinding(model.NewFinding(
			"connection_error",
			"Target Unreachable",
			fmt.Sprintf("The target did not respond: %v", err),
			err.Error(),
			report.TargetURL,
		))
		return nil //nolint:nilerr // Unreachable target is a finding, not a scan failure
	}

	report.AddPage(report.TargetURL, page)
	report.AddFinding(model.NewFinding(
		"target_response",
		"Target Responded",
		fmt.Sprintf("The target responded with HTTP %d in %.2fs.", page.StatusCode, page.ResponseTime),
		fmt.Sprintf("HTTP %d", page.StatusCode),
		report.TargetURL,
	))

	s.checkSecurityHeaders(report, page)
	s.checkCookies(report, page)
	s.checkServerInfo(report, page)
	s.checkForms(report, page)

	return nil
}

// Fetch retrieves a single URL and returns the parsed page.
// HTML responses are run through the page parser to extract forms,
// scripts, images, and iframes.
func (s *ReconScanner) Fetch(ctx context.Context, target string) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if s.cookie != "" {
		req.Header.Set("Cookie", s.cookie)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	page := &model.Page{
		URL:         target,
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header.Clone(),
		ContentType: resp.Header.Get("Content-Type"),
	}

	maxSize := s.maxBodySize
	if maxSize <= 0 {
		maxSize = model.MaxPageSize
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSize))
	if err != nil {
		// Keep the headers even when the body read fails
		page.ResponseTime = time.Since(start).Seconds()
		return page, nil //nolint:nilerr // Header-only page is still useful
	}

	page.ResponseTime = time.Since(start).Seconds()
	page.Raw = body
	page.ContentLength = len(body)
	page.ComputeHash()

	if page.IsHTML() {
		if parsed, perr := ParsePage(target, body); perr == nil {
			page.Title = parsed.Title
			page.Forms = parsed.Forms
			page.Scripts = parsed.Scripts
			page.Images = parsed.Images
			page.Stylesheets = parsed.Stylesheets
			page.Iframes = parsed.Iframes
		}
	}

	return page, nil
}

// checkSecurityHeaders records a finding for each recommended security
// header that is missing, and an informational finding for each that is
// present so reports show what the target already does right.
func (s *ReconScanner) checkSecurityHeaders(report *model.ScanReport, page *model.Page) {
	https := strings.HasPrefix(page.URL, "https://")

	for _, check := range securityHeaderChecks {
		if check.httpsOnly && !https {
			continue
		}

		value := page.GetHeader(check.header)
		if value == "" {
			report.AddFinding(model.NewFinding(
				check.findingType,
				check.title,
				fmt.Sprintf("The %s header is not set.", check.header),
				check.header,
				page.URL,
			))
			continue
		}

		report.AddFinding(model.NewFinding(
			"header_present",
			fmt.Sprintf("%s Header Present", check.header),
			fmt.Sprintf("The %s header is set.", check.header),
			check.header+": "+value,
			page.URL,
		))
	}
}

// checkCookies audits Set-Cookie headers for missing Secure, HttpOnly,
// and SameSite attributes.
func (s *ReconScanner) checkCookies(report *model.ScanReport, page *model.Page) {
	https := strings.HasPrefix(page.URL, "https://")

	for _, raw := range page.Headers["Set-Cookie"] {
		name := cookieName(raw)
		if name == "" {
			continue
		}
		attrs := cookieAttributes(raw)

		if https && !attrs["secure"] {
			report.AddFinding(model.NewFinding(
				"cookie_missing_secure",
				"Cookie Without Secure Flag",
				fmt.Sprintf("The cookie %q is set without the Secure flag on an HTTPS site.", name),
				name,
				page.URL,
			))
		}
		if !attrs["httponly"] {
			report.AddFinding(model.NewFinding(
				"cookie_missing_httponly",
				"Cookie Without HttpOnly Flag",
				fmt.Sprintf("The cookie %q is readable from JavaScript.", name),
				name,
				page.URL,
			))
		}
		if !attrs["samesite"] {
			report.AddFinding(model.NewFinding(
				"cookie_missing_samesite",
				"Cookie Without SameSite Attribute",
				fmt.Sprintf("The cookie %q has no SameSite attribute.", name),
				name,
				page.URL,
			))
		}
	}
}

// checkServerInfo flags version disclosure in the Server and
// X-Powered-By headers.
func (s *ReconScanner) checkServerInfo(report *model.ScanReport, page *model.Page) {
	if server := page.GetHeader("Server"); server != "" && strings.Contains(server, "/") {
		report.AddFinding(model.NewFinding(
			"server_version",
			"Server Version Disclosed",
			"The Server header reveals software version information.",
			server,
			page.URL,
		))
	}

	if poweredBy := page.GetHeader("X-Powered-By"); poweredBy != "" {
		report.AddFinding(model.NewFinding(
			"x_powered_by",
			"X-Powered-By Header Present",
			"The X-Powered-By header reveals backend technology.",
			poweredBy,
			page.URL,
		))
	}
}

// checkForms records discovered forms and flags forms that submit over
// plain HTTP. Password forms over HTTP are the worst case because they
// expose credentials to any on-path observer.
func (s *ReconScanner) checkForms(report *model.ScanReport, page *model.Page) {
	for _, form := range page.Forms {
		action := form.Action
		if action == "" {
			action = page.URL
		}

		report.AddFinding(model.NewFinding(
			"form_detected",
			"Form Detected",
			fmt.Sprintf("A %s form with %d input(s) was found.", form.Method, len(form.Inputs)),
			action,
			page.URL,
		))

		if strings.HasPrefix(action, "http://") && form.HasPasswordInput() {
			report.AddFinding(model.NewFinding(
				"insecure_form",
				"Password Form Submits Over HTTP",
				"A form containing a password field submits to an unencrypted HTTP endpoint.",
				action,
				page.URL,
			))
		}
	}
}

// cookieName extracts the cookie name from a Set-Cookie header value.
func cookieName(raw string) string {
	nameValue, _, _ := strings.Cut(raw, ";")
	name, _, found := strings.Cut(nameValue, "=")
	if !found {
		return ""
	}
	return strings.TrimSpace(name)
}

// cookieAttributes parses the attribute list after the name=value pair
// of a Set-Cookie header. Keys are lower-cased attribute names; the
// name=value pair itself is skipped so a cookie named "secure_token" or
// a value containing "samesite" never counts as the flag being set.
func cookieAttributes(raw string) map[string]bool {
	parts := strings.Split(raw, ";")
	attrs := make(map[string]bool, len(parts)-1)
	for _, part := range parts[1:] {
		attr, _, _ := strings.Cut(part, "=")
		attrs[strings.ToLower(strings.TrimSpace(attr))] = true
	}
	return attrs
}
