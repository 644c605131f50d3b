package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen based on typical public-web response
// characteristics and the needs of the individual scan modes.
const (
	// DefaultTimeout is set to 30 seconds because most public web servers
	// respond well within that window. A shorter timeout would cause false
	// connection_error findings on slow shared hosting.
	DefaultTimeout = 30 * time.Second

	// DefaultBrowserTimeout is the per-page budget for browser-automation
	// checks. DOM XSS probing navigates the target several times with
	// different payloads, so this must be generous.
	DefaultBrowserTimeout = 60 * time.Second

	// DefaultBurpProxyAddress is the standard Burp Suite proxy listener.
	// Port 8080 is Burp's out-of-the-box default. We use 127.0.0.1 instead
	// of localhost to avoid DNS resolution overhead and potential issues
	// with IPv6 resolution on some systems.
	DefaultBurpProxyAddress = "127.0.0.1:8080"

	// DefaultBurpAPIAddress is the Burp Suite REST API listener.
	// Port 1337 is Burp's default for the REST API.
	DefaultBurpAPIAddress = "127.0.0.1:1337"

	// DefaultBatchSize of 5 concurrent scans balances throughput with
	// resource usage. Browser-automation scans each hold a Chrome process,
	// so higher values quickly exhaust memory on small hosts.
	DefaultBatchSize = 5

	// AppName is the application name used for XDG directory paths.
	AppName = "webscan"

	// DefaultUserAgent identifies webscan in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify scanner traffic in their logs.
	DefaultUserAgent = "webscan/1.0 (+https://github.com/Banumathkovinda/web-app-security-tester)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultServerAddress is the address the API server listens on.
	DefaultServerAddress = ":8000"

	// DefaultServerlessScanBudget caps scan duration on serverless
	// platforms, where the hosting environment kills requests that run
	// longer than its gateway timeout. 50 seconds leaves headroom under
	// the common 60 second limit.
	DefaultServerlessScanBudget = 50 * time.Second
)

// Valid scan type identifiers accepted by the CLI and the HTTP API.
const (
	// ScanTypeAll runs every scan mode the environment supports.
	ScanTypeAll = "all"

	// ScanTypeRecon runs HTTP reconnaissance: liveness, security headers,
	// cookie flags, and form discovery.
	ScanTypeRecon = "recon"

	// ScanTypeBrowser runs browser-automation checks: DOM XSS, mixed
	// content, insecure forms, and client-side storage inspection.
	ScanTypeBrowser = "browser"

	// ScanTypeBurp routes traffic through a Burp Suite proxy and pulls
	// issues from its REST API.
	ScanTypeBurp = "burp"
)

// Config holds all configuration options for webscan.
// This struct is designed to be populated from CLI flags, environment
// variables, and the optional config file, then passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ScanConfig, ServerConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Targets is the list of URLs to scan.
	// Must contain at least one http:// or https:// URL.
	Targets []string

	// ScanTypes lists the scan modes to run ("recon", "browser", "burp",
	// or "all"). Empty means all.
	ScanTypes []string

	// Timeout is the connection timeout for each HTTP request.
	// This applies to individual requests, not the overall scan duration.
	Timeout time.Duration

	// BrowserTimeout is the per-page budget for browser-automation checks.
	BrowserTimeout time.Duration

	// UseBurp routes scan traffic through the Burp Suite proxy and queries
	// its REST API for issues.
	UseBurp bool

	// BurpProxyAddress is the Burp proxy listener in "host:port" format.
	BurpProxyAddress string

	// BurpAPIAddress is the Burp REST API listener in "host:port" format.
	BurpAPIAddress string

	// BurpAPIKey authenticates against the Burp REST API.
	// Loaded from the BURP_API_KEY environment variable when empty.
	BurpAPIKey string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info and above are logged.
	Verbose bool

	// BatchSize is the number of concurrent scans when processing multiple
	// targets. Higher values increase throughput but may exhaust memory
	// when browser scans are enabled.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .webscan.yaml in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-target configurations loaded from the config file.
	// This is populated by LoadConfigFile and used during scanning.
	SiteConfigs *File

	// ReportFormat selects the report output format: "simple", "json",
	// "markdown", "html", or "pdf". Defaults to simple.
	ReportFormat string

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// DBDir is the directory path for storing the SQLite database.
	// When set, scan results are saved to the database for historical
	// comparison. When empty, scan results are not persisted.
	// Defaults to XDG data directory (~/.local/share/webscan on Linux).
	DBDir string

	// SaveToDB indicates whether to save scan results to the database.
	// This is automatically set to true when DBDir is configured.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	// A descriptive User-Agent helps site operators identify scanner
	// traffic in their logs.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// ServerAddress is the address the API server listens on.
	ServerAddress string

	// SecretKey protects the scan-launching API endpoints with bearer
	// authentication. Loaded from the SECRET_KEY environment variable when
	// empty. When unset, the API is open.
	SecretKey string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, addresses).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:          DefaultTimeout,
		BrowserTimeout:   DefaultBrowserTimeout,
		BurpProxyAddress: DefaultBurpProxyAddress,
		BurpAPIAddress:   DefaultBurpAPIAddress,
		BurpAPIKey:       os.Getenv("BURP_API_KEY"),
		BatchSize:        DefaultBatchSize,
		UserAgent:        DefaultUserAgent,
		MaxBodySize:      DefaultMaxBodySize,
		ServerAddress:    DefaultServerAddress,
		SecretKey:        os.Getenv("SECRET_KEY"),
	}
}

// XDGDataDir returns the XDG data directory for webscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/webscan
// On macOS: ~/Library/Application Support/webscan
// On Windows: %LOCALAPPDATA%\webscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for webscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/webscan
// On macOS: ~/Library/Application Support/webscan
// On Windows: %APPDATA%\webscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for webscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/webscan
// On macOS: ~/Library/Caches/webscan
// On Windows: %LOCALAPPDATA%\webscan\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one target to scan
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// BatchSize must be positive; zero would mean no scanning
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// Report format must be one of the supported identifiers
	switch c.ReportFormat {
	case "", "simple", "json", "markdown", "html", "pdf":
	default:
		return ErrInvalidReportFormat
	}

	// Scan types must be recognized identifiers
	for _, st := range c.ScanTypes {
		switch st {
		case ScanTypeAll, ScanTypeRecon, ScanTypeBrowser, ScanTypeBurp:
		default:
			return ErrInvalidScanType
		}
	}

	// MaxBodySize must be non-negative; 0 means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

// WantsScanType reports whether the given scan mode was requested.
// An empty scan type list or an explicit "all" selects every mode.
// Burp mode is the exception: it needs a running proxy, so it is
// gated on UseBurp or a literal "burp" entry, never on this method.
func (c *Config) WantsScanType(scanType string) bool {
	if len(c.ScanTypes) == 0 {
		return true
	}
	for _, st := range c.ScanTypes {
		if st == ScanTypeAll || st == scanType {
			return true
		}
	}
	return false
}
