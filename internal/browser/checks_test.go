package browser

import (
	"testing"

	"github.com/chromedp/cdproto/network"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

func findingTypes(report *model.ScanReport) map[string]int {
	types := make(map[string]int)
	for _, f := range report.Findings {
		types[f.Type]++
	}
	return types
}

// TestAnalyzeMixedContent tests mixed content classification.
func TestAnalyzeMixedContent(t *testing.T) {
	t.Parallel()

	t.Run("flags http resources on https page", func(t *testing.T) {
		t.Parallel()

		report := model.NewScanReport("https://example.com", nil)
		AnalyzeMixedContent(report, "https://example.com", []string{
			"https://example.com/app.js",
			"http://cdn.example.net/tracker.js",
			"http://example.com/logo.png",
		})

		types := findingTypes(report)
		if types["mixed_content"] != 2 {
			t.Errorf("got %d mixed_content findings, expected 2", types["mixed_content"])
		}
	})

	t.Run("http pages are exempt", func(t *testing.T) {
		t.Parallel()

		report := model.NewScanReport("http://example.com", nil)
		AnalyzeMixedContent(report, "http://example.com", []string{"http://example.com/a.js"})

		if report.TotalFindings() != 0 {
			t.Errorf("got %d findings, expected none for an HTTP page", report.TotalFindings())
		}
	})
}

// TestAnalyzeForms tests rendered-form checks.
func TestAnalyzeForms(t *testing.T) {
	t.Parallel()

	t.Run("insecure password form", func(t *testing.T) {
		t.Parallel()

		report := model.NewScanReport("https://example.com/login", nil)
		AnalyzeForms(report, "https://example.com/login", []DOMForm{
			{Action: "http://example.com/login", Method: "POST", HasPassword: true, PasswordField: "pass"},
		})

		types := findingTypes(report)
		if types["insecure_form"] != 1 {
			t.Errorf("expected insecure_form, got %v", types)
		}
		if types["password_autocomplete"] != 1 {
			t.Errorf("expected password_autocomplete, got %v", types)
		}
	})

	t.Run("autocomplete off suppresses the advisory", func(t *testing.T) {
		t.Parallel()

		report := model.NewScanReport("https://example.com/login", nil)
		AnalyzeForms(report, "https://example.com/login", []DOMForm{
			{Action: "https://example.com/login", Method: "POST", HasPassword: true, PasswordField: "pass", AutocompleteOff: true},
		})

		types := findingTypes(report)
		if types["password_autocomplete"] != 0 {
			t.Errorf("unexpected password_autocomplete finding: %v", types)
		}
		if types["insecure_form"] != 0 {
			t.Errorf("unexpected insecure_form finding for HTTPS action: %v", types)
		}
	})

	t.Run("forms without passwords are ignored", func(t *testing.T) {
		t.Parallel()

		report := model.NewScanReport("https://example.com", nil)
		AnalyzeForms(report, "https://example.com", []DOMForm{
			{Action: "http://example.com/search", Method: "GET"},
		})

		if report.TotalFindings() != 0 {
			t.Errorf("got %d findings, expected none", report.TotalFindings())
		}
	})
}

// TestAnalyzeStorage tests client storage inspection.
func TestAnalyzeStorage(t *testing.T) {
	t.Parallel()

	t.Run("sensitive keys flagged in both areas", func(t *testing.T) {
		t.Parallel()

		report := model.NewScanReport("https://example.com", nil)
		AnalyzeStorage(report, "https://example.com", StorageSnapshot{
			Local:   map[string]string{"auth_token": "eyJ...", "theme": "dark"},
			Session: map[string]string{"JWT": "eyJ..."},
		})

		types := findingTypes(report)
		if types["client_storage"] != 2 {
			t.Errorf("got %d client_storage findings, expected 2", types["client_storage"])
		}
		if types["client_storage_sensitive"] != 2 {
			t.Errorf("got %d client_storage_sensitive findings, expected 2", types["client_storage_sensitive"])
		}
	})

	t.Run("empty storage produces nothing", func(t *testing.T) {
		t.Parallel()

		report := model.NewScanReport("https://example.com", nil)
		AnalyzeStorage(report, "https://example.com", StorageSnapshot{})

		if report.TotalFindings() != 0 {
			t.Errorf("got %d findings, expected none", report.TotalFindings())
		}
	})
}

// TestAnalyzeFrameability tests the clickjacking advisory.
func TestAnalyzeFrameability(t *testing.T) {
	t.Parallel()

	report := model.NewScanReport("https://example.com", nil)
	AnalyzeFrameability(report, "https://example.com", true)
	AnalyzeFrameability(report, "https://example.com", false)

	types := findingTypes(report)
	if types["clickjacking"] != 1 {
		t.Errorf("got %d clickjacking findings, expected 1", types["clickjacking"])
	}
}

// TestFramableFromHeaders tests frame-restriction detection on observed
// document response headers.
func TestFramableFromHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		headers  network.Headers
		framable bool
	}{
		{
			name:     "no restrictions",
			headers:  network.Headers{"Content-Type": "text/html"},
			framable: true,
		},
		{
			name:     "X-Frame-Options deny",
			headers:  network.Headers{"X-Frame-Options": "DENY"},
			framable: false,
		},
		{
			name:     "lower-case header name",
			headers:  network.Headers{"x-frame-options": "sameorigin"},
			framable: false,
		},
		{
			name:     "CSP frame-ancestors",
			headers:  network.Headers{"Content-Security-Policy": "frame-ancestors 'none'"},
			framable: false,
		},
		{
			name:     "CSP without frame-ancestors",
			headers:  network.Headers{"Content-Security-Policy": "default-src 'self'"},
			framable: true,
		},
		{
			name:     "no document response captured",
			headers:  nil,
			framable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := framableFromHeaders(tt.headers); got != tt.framable {
				t.Errorf("framableFromHeaders(%v) = %v, expected %v", tt.headers, got, tt.framable)
			}
		})
	}
}

// TestIsSensitiveKey tests storage key classification.
func TestIsSensitiveKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key      string
		expected bool
	}{
		{"auth_token", true},
		{"JWT", true},
		{"UserSession", true},
		{"api_key", true},
		{"theme", false},
		{"locale", false},
	}

	for _, tt := range tests {
		if got := isSensitiveKey(tt.key); got != tt.expected {
			t.Errorf("isSensitiveKey(%q) = %v, expected %v", tt.key, got, tt.expected)
		}
	}
}
