package burp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// TestNewClient tests address validation.
func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("valid addresses", func(t *testing.T) {
		t.Parallel()
		if _, err := NewClient("127.0.0.1:8080", "127.0.0.1:1337"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name  string
		proxy string
		api   string
	}{
		{"missing port", "127.0.0.1", "127.0.0.1:1337"},
		{"empty host", ":8080", "127.0.0.1:1337"},
		{"non-numeric port", "127.0.0.1:burp", "127.0.0.1:1337"},
		{"port out of range", "127.0.0.1:99999", "127.0.0.1:1337"},
		{"bad api address", "127.0.0.1:8080", "nonsense"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewClient(tt.proxy, tt.api); !errors.Is(err, ErrInvalidProxyAddress) {
				t.Errorf("got %v, expected ErrInvalidProxyAddress", err)
			}
		})
	}
}

// TestCheckProxy tests proxy liveness detection.
func TestCheckProxy(t *testing.T) {
	t.Parallel()

	t.Run("responding HTTP listener is accepted", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("Burp Suite Professional"))
		}))
		defer srv.Close()

		addr := strings.TrimPrefix(srv.URL, "http://")
		client, err := NewClient(addr, "127.0.0.1:1337")
		if err != nil {
			t.Fatal(err)
		}

		if status := client.CheckProxy(context.Background()); status != ProxyStatusOK {
			t.Errorf("got %v, expected ProxyStatusOK", status)
		}
	})

	t.Run("closed port cannot connect", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:1", "127.0.0.1:1337")
		if err != nil {
			t.Fatal(err)
		}

		if status := client.CheckProxy(context.Background()); status != ProxyStatusCannotConnect {
			t.Errorf("got %v, expected ProxyStatusCannotConnect", status)
		}
	})
}

// TestStartScan tests scan submission against a mock REST API.
func TestStartScan(t *testing.T) {
	t.Parallel()

	t.Run("task ID from Location header", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/v0.1/scan") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Location", "/v0.1/scan/42")
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		addr := strings.TrimPrefix(srv.URL, "http://")
		client, err := NewClient("127.0.0.1:8080", addr)
		if err != nil {
			t.Fatal(err)
		}

		taskID, err := client.StartScan(context.Background(), "https://example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if taskID != "42" {
			t.Errorf("taskID = %q, expected %q", taskID, "42")
		}
	})

	t.Run("API key goes in the path", func(t *testing.T) {
		t.Parallel()

		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Header().Set("Location", "7")
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		addr := strings.TrimPrefix(srv.URL, "http://")
		client, err := NewClient("127.0.0.1:8080", addr, WithAPIKey("sekrit"))
		if err != nil {
			t.Fatal(err)
		}

		if _, err := client.StartScan(context.Background(), "https://example.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotPath != "/sekrit/v0.1/scan" {
			t.Errorf("path = %q, expected key segment", gotPath)
		}
	})

	t.Run("non-201 is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no license", http.StatusForbidden)
		}))
		defer srv.Close()

		addr := strings.TrimPrefix(srv.URL, "http://")
		client, err := NewClient("127.0.0.1:8080", addr)
		if err != nil {
			t.Fatal(err)
		}

		if _, err := client.StartScan(context.Background(), "https://example.com"); err == nil {
			t.Error("expected an error for 403")
		}
	})
}

// TestScanIssues tests issue retrieval and decoding.
func TestScanIssues(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v0.1/scan/42") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"scan_status": "succeeded",
			"issue_events": [
				{"type": "issue_found", "issue": {
					"name": "SQL injection",
					"severity": "high",
					"confidence": "firm",
					"origin": "https://example.com",
					"path": "/search"
				}}
			]
		}`))
	}))
	defer srv.Close()

	addr := strings.TrimPrefix(srv.URL, "http://")
	client, err := NewClient("127.0.0.1:8080", addr)
	if err != nil {
		t.Fatal(err)
	}

	issues, status, err := client.ScanIssues(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != "succeeded" {
		t.Errorf("status = %q, expected succeeded", status)
	}
	if len(issues) != 1 {
		t.Fatalf("got %d issues, expected 1", len(issues))
	}
	if issues[0].Name != "SQL injection" {
		t.Errorf("Name = %q, expected SQL injection", issues[0].Name)
	}
}

// TestAddIssueFinding tests Burp issue to finding conversion.
func TestAddIssueFinding(t *testing.T) {
	t.Parallel()

	report := model.NewScanReport("https://example.com", nil)
	AddIssueFinding(report, Issue{
		Name:       "Cross-site scripting (reflected)",
		Severity:   "high",
		Confidence: "certain",
		Origin:     "https://example.com",
		Path:       "/search?q=x",
	})

	if report.TotalFindings() != 1 {
		t.Fatalf("got %d findings, expected 1", report.TotalFindings())
	}
	f := report.Findings[0]
	if f.Severity != model.SeverityHigh {
		t.Errorf("Severity = %v, expected high", f.Severity)
	}
	if f.Location != "https://example.com/search?q=x" {
		t.Errorf("Location = %q, expected origin+path", f.Location)
	}
	if report.Stats.HighCount != 1 {
		t.Errorf("HighCount = %d, expected 1", report.Stats.HighCount)
	}
}

// TestScannerScanUnavailable tests graceful degradation when Burp is
// not running.
func TestScannerScanUnavailable(t *testing.T) {
	t.Parallel()

	client, err := NewClient("127.0.0.1:1", "127.0.0.1:2")
	if err != nil {
		t.Fatal(err)
	}

	report := model.NewScanReport("https://example.com", nil)
	s := NewScanner(client)
	if err := s.Scan(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalFindings() != 1 {
		t.Fatalf("got %d findings, expected 1", report.TotalFindings())
	}
	if report.Findings[0].Type != "burp_proxy_unavailable" {
		t.Errorf("Type = %q, expected burp_proxy_unavailable", report.Findings[0].Type)
	}
}
