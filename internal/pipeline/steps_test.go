package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/Banumathkovinda/web-app-security-tester/internal/browser"
	"github.com/Banumathkovinda/web-app-security-tester/internal/burp"
	"github.com/Banumathkovinda/web-app-security-tester/internal/config"
	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
	"github.com/Banumathkovinda/web-app-security-tester/internal/platform"
	"github.com/Banumathkovinda/web-app-security-tester/internal/scanner"
)

// Every scan mode must satisfy the contract the pipeline executes.
var (
	_ scanner.Scanner = (*browser.Scanner)(nil)
	_ scanner.Scanner = (*burp.Scanner)(nil)
)

func fullHost() platform.Capabilities {
	return platform.Capabilities{
		Platform:          "host",
		BrowserAutomation: true,
		PersistentStorage: true,
	}
}

func serverless() platform.Capabilities {
	return platform.Capabilities{
		Serverless: true,
		Platform:   "vercel",
	}
}

// TestBuild tests pipeline assembly from scan types and capabilities.
func TestBuild(t *testing.T) {
	t.Parallel()

	logger := slog.Default()

	t.Run("all modes on a full host", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Targets = []string{"https://example.com"}
		cfg.UseBurp = true

		p, err := Build(cfg, fullHost(), "https://example.com", logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		names := p.StepNames()
		for _, want := range []string{"recon", "exif", "browser", "burp"} {
			if !slices.Contains(names, want) {
				t.Errorf("steps %v missing %q", names, want)
			}
		}
	})

	t.Run("default scan types leave burp off", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Targets = []string{"https://example.com"}

		p, err := Build(cfg, fullHost(), "https://example.com", logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		names := p.StepNames()
		if slices.Contains(names, "burp") {
			t.Errorf("steps %v must not include burp without an explicit request", names)
		}
		for _, want := range []string{"recon", "exif", "browser"} {
			if !slices.Contains(names, want) {
				t.Errorf("steps %v missing %q", names, want)
			}
		}
	})

	t.Run("explicit burp scan type enables burp", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Targets = []string{"https://example.com"}
		cfg.ScanTypes = []string{config.ScanTypeRecon, config.ScanTypeBurp}

		p, err := Build(cfg, fullHost(), "https://example.com", logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Contains(p.StepNames(), "burp") {
			t.Errorf("steps %v missing burp", p.StepNames())
		}
	})

	t.Run("recon only", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Targets = []string{"https://example.com"}
		cfg.ScanTypes = []string{config.ScanTypeRecon}

		p, err := Build(cfg, fullHost(), "https://example.com", logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		names := p.StepNames()
		if slices.Contains(names, "browser") {
			t.Errorf("steps %v should not include browser", names)
		}
		if slices.Contains(names, "burp") {
			t.Errorf("steps %v should not include burp", names)
		}
	})

	t.Run("explicit browser request rejected on serverless", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Targets = []string{"https://example.com"}
		cfg.ScanTypes = []string{config.ScanTypeBrowser}

		if _, err := Build(cfg, serverless(), "https://example.com", logger); !errors.Is(err, ErrBrowserUnavailable) {
			t.Errorf("got %v, expected ErrBrowserUnavailable", err)
		}
	})

	t.Run("implicit browser degrades to a skip marker on serverless", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Targets = []string{"https://example.com"}

		p, err := Build(cfg, serverless(), "https://example.com", logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Contains(p.StepNames(), "browser") {
			t.Fatalf("steps %v missing the browser skip marker", p.StepNames())
		}
	})

	t.Run("site config can disable browser checks", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Targets = []string{"https://example.com"}
		cfg.SiteConfigs = &config.File{
			Sites: map[string]config.SiteConfig{
				"example.com": {SkipBrowser: true},
			},
		}

		p, err := Build(cfg, fullHost(), "https://example.com", logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if slices.Contains(p.StepNames(), "browser") {
			t.Errorf("steps %v should not include browser", p.StepNames())
		}
	})
}

// TestDefaultScanReachesTarget runs a default-configuration pipeline
// against a local server and checks the traffic goes straight to the
// target instead of through a Burp proxy nobody asked for.
func TestDefaultScanReachesTarget(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title>ok</title></head><body></body></html>"))
	}))
	defer srv.Close()

	cfg := config.NewConfig()
	cfg.Targets = []string{srv.URL}

	p, err := Build(cfg, serverless(), srv.URL, slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report := model.NewScanReport(srv.URL, nil)
	if err := p.Execute(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hits.Load() == 0 {
		t.Fatal("the target was never requested")
	}
	for _, f := range report.Findings {
		if f.Type == "connection_error" {
			t.Errorf("default scan failed to connect: %s", f.Description)
		}
	}
}

// TestSkippedBrowserStep tests the skip marker's report output.
func TestSkippedBrowserStep(t *testing.T) {
	t.Parallel()

	report := model.NewScanReport("https://example.com", nil)
	step := &skippedBrowserStep{}
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.BrowserScanSkipped {
		t.Error("expected BrowserScanSkipped to be set")
	}
	if report.TotalFindings() != 1 || report.Findings[0].Type != "browser_unavailable" {
		t.Errorf("expected a browser_unavailable finding, got %v", report.Findings)
	}
}
