package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Banumathkovinda/web-app-security-tester/internal/config"
	"github.com/Banumathkovinda/web-app-security-tester/internal/database"
	"github.com/Banumathkovinda/web-app-security-tester/internal/log"
	"github.com/Banumathkovinda/web-app-security-tester/internal/platform"
	"github.com/Banumathkovinda/web-app-security-tester/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scan API server",
		Long: `Serve starts the HTTP API for launching and inspecting scans.

Endpoints:
  POST /api/scan              Launch a scan ({"url": "...", "scan_types": [...]})
  GET  /api/scan/status/{id}  Poll scan status
  GET  /api/report/{id}       Fetch a finished report (?format=json|html|markdown|simple|pdf)
  GET  /api/history           List previous scans
  GET  /healthz               Health and capability probe
  GET  /metrics               Prometheus metrics

When the SECRET_KEY environment variable is set, the /api endpoints
require an "Authorization: Bearer <key>" header.

On serverless platforms scans run synchronously inside the request and
the finished report is returned inline, because the instance may be
frozen as soon as the response is sent.`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("address", "a", config.DefaultServerAddress,
		"Address to listen on (host:port)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each scan request")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .webscan.yaml in current or home directory)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()

	var err error
	cfg.ServerAddress, err = cmd.Flags().GetString("address")
	if err != nil {
		return err
	}
	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case explicitConfigPath:
		return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	logger := log.NewSecureJSONLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	caps := platform.Detect()

	var opts []server.ManagerOption
	if caps.PersistentStorage {
		db, dbErr := database.Open(config.XDGDataDir(), database.DefaultOptions())
		if dbErr != nil {
			logger.Warn("history database unavailable, continuing without persistence",
				"error", dbErr.Error())
		} else {
			defer db.Close()
			opts = append(opts, server.WithDatabase(db))
		}
	}

	srv := server.New(cfg, caps, logger, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, stopping server...")
		cancel()
	}()

	logger.Info("starting API server",
		"address", cfg.ServerAddress,
		"platform", caps.Platform,
		"serverless", caps.Serverless,
		"browserAutomation", caps.BrowserAutomation,
		"authenticated", cfg.SecretKey != "",
	)

	return srv.ListenAndServe(ctx)
}
