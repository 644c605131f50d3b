package scanner

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/url"
	"time"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// Scanner defines the interface for scan-mode implementations.
// Each scan mode must provide this interface to be used in the
// scanning pipeline.
//
// Design decision: We use an interface rather than a concrete type because:
//  1. Different scan modes require vastly different implementations
//  2. Allows for easy mocking in tests
//  3. Pipeline can treat all modes uniformly
type Scanner interface {
	// Scan runs the checks for this mode against the target URL and
	// records findings on the report.
	//
	// The context should be used for cancellation and timeouts.
	// Implementations must respect context cancellation.
	Scan(ctx context.Context, report *model.ScanReport) error

	// Name returns the scan mode name (e.g., "recon", "browser").
	Name() string
}

var (
	_ Scanner = (*ReconScanner)(nil)
	_ Scanner = (*EXIFScanner)(nil)
)

// NewHTTPClient builds an http.Client for scan traffic.
// When proxyAddress is non-empty, all requests are routed through the
// proxy and certificate verification is relaxed so an intercepting
// proxy's CA does not break the scan.
//
// Design decision: We build clients through a single constructor rather
// than scattering transport configuration across scanners because:
//  1. Proxy configuration must be consistent across modes
//  2. Connection pooling works better with a shared client
//  3. Easier to test with mock transport
func NewHTTPClient(timeout time.Duration, proxyAddress string) (*http.Client, error) {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if proxyAddress != "" {
		proxyURL, err := url.Parse("http://" + proxyAddress)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		transport.TLSClientConfig = insecureTLSConfig()
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

// insecureTLSConfig disables certificate verification.
// Only used when traffic is deliberately routed through an intercepting
// proxy whose CA is not in the system trust store.
func insecureTLSConfig() *tls.Config {
	return &tls.Config{InsecureSkipVerify: true} //nolint:gosec // Intercepting proxy requires this
}
