package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Banumathkovinda/web-app-security-tester/internal/config"
	"github.com/Banumathkovinda/web-app-security-tester/internal/database"
	"github.com/Banumathkovinda/web-app-security-tester/internal/log"
	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
	"github.com/Banumathkovinda/web-app-security-tester/internal/pipeline"
	"github.com/Banumathkovinda/web-app-security-tester/internal/platform"
	"github.com/Banumathkovinda/web-app-security-tester/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Scan web applications for security issues",
		Long: `Scan performs security testing of web applications.

It fetches the target and analyzes it for:
- Missing or weak security headers (HSTS, CSP, X-Frame-Options)
- Cookie flag problems (Secure, HttpOnly, SameSite)
- Insecure forms and password field issues
- DOM-based XSS, mixed content, and sensitive client-side storage
  (browser mode, requires a host that can launch Chrome)
- Image metadata leaks (EXIF GPS coordinates, author tags)
- Burp Suite issues when a Burp instance is available

Examples:
  # Scan a single application
  webscan scan https://example.com

  # Scan multiple applications concurrently
  webscan scan https://a.example https://b.example

  # Reconnaissance checks only
  webscan scan --scan-type recon https://example.com

  # Route traffic through Burp Suite and pull its issues
  webscan scan --burp https://example.com

  # Markdown report to a file
  webscan scan --format markdown -o report.md https://example.com

Configuration file (.webscan.yaml) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
    fragile.example:
      skipBrowser: true`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Scan behavior flags
	cmd.Flags().StringSliceP("scan-type", "s", nil,
		"Scan modes to run: recon, browser, burp, all (default all)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().Duration("browser-timeout", config.DefaultBrowserTimeout,
		"Per-page budget for browser-automation checks")

	// Burp integration flags
	cmd.Flags().Bool("burp", false,
		"Route traffic through Burp Suite and pull issues from its REST API")
	cmd.Flags().String("burp-proxy", config.DefaultBurpProxyAddress,
		"Burp proxy listener address")
	cmd.Flags().String("burp-api", config.DefaultBurpAPIAddress,
		"Burp REST API address")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent scans")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .webscan.yaml in current or home directory)")

	// Report flags
	cmd.Flags().StringP("format", "F", "simple",
		"Report format: simple, json, markdown, html, pdf")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-db", false,
		"Skip saving scan results to the history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ScanTypes, err = cmd.Flags().GetStringSlice("scan-type")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.BrowserTimeout, err = cmd.Flags().GetDuration("browser-timeout")
	if err != nil {
		return nil, err
	}

	cfg.UseBurp, err = cmd.Flags().GetBool("burp")
	if err != nil {
		return nil, err
	}

	cfg.BurpProxyAddress, err = cmd.Flags().GetString("burp-proxy")
	if err != nil {
		return nil, err
	}

	cfg.BurpAPIAddress, err = cmd.Flags().GetString("burp-api")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from the config file.
	// An explicitly specified file must exist; the implicit search may
	// come up empty without it being an error.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case explicitConfigPath:
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.ReportFormat, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	if !noDB {
		cfg.SaveToDB = true
		cfg.DBDir = config.XDGDataDir()
	}

	// Positional arguments are the target URLs
	cfg.Targets = args

	return cfg, nil
}

// runScan executes the scan for all configured targets.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	caps := platform.Detect()

	logger.Info("starting scan",
		"targets", cfg.Targets,
		"scanTypes", cfg.ScanTypes,
		"platform", caps.Platform,
		"batchSize", cfg.BatchSize,
	)

	// Persistence follows the platform: serverless filesystems are
	// read-only outside /tmp, so history saving is disabled there.
	var db *database.ScanDB
	if cfg.SaveToDB && caps.PersistentStorage {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
	}

	factory := func(target string) (*pipeline.Pipeline, error) {
		return pipeline.Build(cfg, caps, target, logger)
	}

	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, factory, db, logger)
	}
	return runSequentialScan(ctx, cfg, factory, db, logger)
}

// runSequentialScan scans targets one at a time.
func runSequentialScan(ctx context.Context, cfg *config.Config, factory func(string) (*pipeline.Pipeline, error), db *database.ScanDB, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p, err := factory(target)
		if err != nil {
			if errors.Is(err, pipeline.ErrBrowserUnavailable) {
				return fmt.Errorf("cannot scan %s: %w", target, err)
			}
			return fmt.Errorf("failed to prepare scan for %s: %w", target, err)
		}

		scanReport := model.NewScanReport(target, cfg.ScanTypes)

		fmt.Printf("Scanning %s...\n", target)
		startTime := time.Now()

		if err := p.Execute(ctx, scanReport); err != nil {
			scanReport.Fail(err)
			logger.Error("scan failed", "target", target, "error", err.Error())
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", target, err)
		} else {
			scanReport.Complete()
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", target, "error", err.Error())
		}

		if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
			logger.Error("failed to save scan report", "target", target, "error", err.Error())
		}
	}

	return nil
}

// runBatchScan scans multiple targets concurrently using BatchProcessor.
// The per-target factory applies site-specific settings (cookies,
// headers, skipBrowser) to each pipeline.
func runBatchScan(ctx context.Context, cfg *config.Config, factory func(string) (*pipeline.Pipeline, error), db *database.ScanDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch scan of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithScanTypes(cfg.ScanTypes),
		pipeline.WithBatchLogger(logger),
	)

	reports, err := bp.ProcessBatch(ctx, cfg.Targets)
	if err != nil {
		return err
	}

	for i, scanReport := range reports {
		fmt.Printf("[%d/%d] Scan finished: %s (%s)\n",
			i+1, len(reports), scanReport.TargetURL, scanReport.Status)

		if reportErr := outputReport(cfg, scanReport); reportErr != nil {
			logger.Error("report failed", "target", scanReport.TargetURL, "error", reportErr.Error())
		}

		if saveErr := saveScanReport(ctx, db, scanReport, logger); saveErr != nil {
			logger.Error("failed to save scan report", "target", scanReport.TargetURL, "error", saveErr.Error())
		}
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch scan completed in %s\n", elapsed.Round(time.Millisecond))

	return nil
}

// outputReport outputs the scan report in the requested format.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may contain session cookies and internal URLs, so the
		// file is created owner-readable only.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	writer, err := report.NewWriter(cfg.ReportFormat, output)
	if err != nil {
		return err
	}

	_, err = writer.Write(scanReport)
	return err
}

// saveScanReport saves the scan report to the database if enabled.
// If db is nil, this function is a no-op.
func saveScanReport(ctx context.Context, db *database.ScanDB, scanReport *model.ScanReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	if err := db.SaveScanReport(ctx, scanReport); err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	logger.Info("scan report saved to database", "target", scanReport.TargetURL, "scan_id", scanReport.ScanID)
	return nil
}
