package platform

import (
	"os"
	"time"
)

// Capabilities describes what the current execution environment can do.
// The scan pipeline and the API server consult this to decide which scan
// modes to offer and how to store results.
//
// Design decision: We detect capabilities once at startup and pass the
// result through dependency injection rather than sprinkling os.Getenv
// calls across the codebase. This keeps the degradation rules in one
// place and makes them testable.
type Capabilities struct {
	// Serverless is true when running on a serverless platform
	// (Vercel, AWS Lambda). Serverless platforms have read-only
	// filesystems outside /tmp and kill long-running requests.
	Serverless bool

	// Platform names the detected platform ("vercel", "aws-lambda",
	// or "host").
	Platform string

	// BrowserAutomation is true when browser-automation scans can run.
	// Serverless platforms cannot launch a Chrome process, so requests
	// for browser scans must be rejected explicitly rather than
	// silently skipped.
	BrowserAutomation bool

	// PersistentStorage is true when scan history and reports can be
	// written to durable storage. When false, reports go to the
	// ephemeral temp directory and history is kept in memory only.
	PersistentStorage bool

	// MaxScanDuration bounds a single scan. Zero means unbounded.
	// On serverless platforms this stays under the gateway timeout so
	// the scan can return a partial report instead of being killed.
	MaxScanDuration time.Duration
}

// Environment variables that identify serverless platforms.
const (
	envVercel = "VERCEL"
	envLambda = "AWS_LAMBDA_FUNCTION_NAME"
)

// serverlessScanBudget caps scan duration on serverless platforms.
// 50 seconds leaves headroom under the common 60 second gateway timeout.
const serverlessScanBudget = 50 * time.Second

// Detect inspects the environment and returns the capabilities of the
// current platform. On a regular host everything is enabled and scans
// are unbounded.
func Detect() Capabilities {
	switch {
	case os.Getenv(envVercel) != "":
		return Capabilities{
			Serverless:        true,
			Platform:          "vercel",
			BrowserAutomation: false,
			PersistentStorage: false,
			MaxScanDuration:   serverlessScanBudget,
		}
	case os.Getenv(envLambda) != "":
		return Capabilities{
			Serverless:        true,
			Platform:          "aws-lambda",
			BrowserAutomation: false,
			PersistentStorage: false,
			MaxScanDuration:   serverlessScanBudget,
		}
	default:
		return Capabilities{
			Serverless:        false,
			Platform:          "host",
			BrowserAutomation: true,
			PersistentStorage: true,
			MaxScanDuration:   0,
		}
	}
}

// TempDir returns the writable temp directory for the platform.
// Serverless platforms only allow writes under /tmp.
func (c Capabilities) TempDir() string {
	return os.TempDir()
}
