package burp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// checkProxyTimeout is the timeout for checking if the Burp proxy is
// available. We use a short timeout here because this is just a
// connectivity check, not an actual request through the proxy.
const checkProxyTimeout = 2 * time.Second

// Burp connectivity errors.
//
// Design decision: We define specific error types rather than wrapping all
// errors generically. This allows callers to handle different failure modes
// appropriately (e.g., retry on timeout, but fail fast on wrong proxy type).
var (
	// ErrProxyNotBurp is returned when the configured proxy address responds
	// but does not look like a Burp Suite proxy listener.
	ErrProxyNotBurp = errors.New("proxy is not a Burp Suite proxy")

	// ErrProxyCannotConnect is returned when we cannot establish a TCP
	// connection to the proxy address. This usually means Burp is not
	// running or the address is incorrect.
	ErrProxyCannotConnect = errors.New("cannot connect to Burp proxy")

	// ErrProxyTimeout is returned when the connection to the proxy times out.
	ErrProxyTimeout = errors.New("timeout connecting to Burp proxy")

	// ErrInvalidProxyAddress is returned when the proxy address format is
	// invalid. Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrAPIUnavailable is returned when the Burp REST API does not respond.
	ErrAPIUnavailable = errors.New("Burp REST API is not reachable")
)

// ProxyStatus represents the result of checking the Burp proxy connection.
type ProxyStatus int

const (
	// ProxyStatusOK indicates the proxy is a working Burp listener.
	ProxyStatusOK ProxyStatus = iota

	// ProxyStatusWrongType indicates something answered that is not Burp.
	ProxyStatusWrongType

	// ProxyStatusCannotConnect indicates we could not establish a connection.
	ProxyStatusCannotConnect

	// ProxyStatusTimeout indicates the connection attempt timed out.
	ProxyStatusTimeout
)

// String returns a human-readable description of the proxy status.
func (s ProxyStatus) String() string {
	switch s {
	case ProxyStatusOK:
		return "OK"
	case ProxyStatusWrongType:
		return "wrong type (not Burp)"
	case ProxyStatusCannotConnect:
		return "cannot connect"
	case ProxyStatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error returns the appropriate error for this status, or nil if OK.
func (s ProxyStatus) Error() error {
	switch s {
	case ProxyStatusOK:
		return nil
	case ProxyStatusWrongType:
		return ErrProxyNotBurp
	case ProxyStatusCannotConnect:
		return ErrProxyCannotConnect
	case ProxyStatusTimeout:
		return ErrProxyTimeout
	default:
		return errors.New("unknown proxy status")
	}
}

// Client talks to a local Burp Suite instance: its intercepting proxy
// listener and its REST API.
//
// Design decision: We separate the proxy listener address from the REST
// API address because Burp exposes them on different ports (8080 and
// 1337 by default) and users frequently move one without the other.
type Client struct {
	// proxyAddress is the Burp proxy listener in "host:port" format.
	proxyAddress string

	// apiAddress is the Burp REST API listener in "host:port" format.
	apiAddress string

	// apiKey authenticates REST API requests. Optional; Burp can run
	// the API without a key.
	apiKey string

	// httpClient is used for REST API requests. This talks directly to
	// the API, not through the proxy.
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the REST API key.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the API HTTP client. Used in tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a Burp client for the given proxy and API addresses.
//
// This function validates the address formats but does not verify that
// Burp is actually running. Call CheckProxy() to verify.
//
// Design decision: We don't connect in the constructor because:
// 1. It allows creating the client even when Burp isn't running yet
// 2. It separates object creation from network operations
// 3. It allows for better testing with mock servers
func NewClient(proxyAddress, apiAddress string, opts ...Option) (*Client, error) {
	if !isValidAddress(proxyAddress) || !isValidAddress(apiAddress) {
		return nil, ErrInvalidProxyAddress
	}

	c := &Client{
		proxyAddress: proxyAddress,
		apiAddress:   apiAddress,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ProxyAddress returns the proxy listener address.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// isValidAddress checks if the address is in valid "host:port" format.
// We use a simple check rather than a full URL parser because the format
// is very specific (no scheme, no path, just host and port).
func isValidAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return false
	}
	if host == "" || port == "" {
		return false
	}
	portNum := 0
	for _, r := range port {
		if r < '0' || r > '9' {
			return false
		}
		portNum = portNum*10 + int(r-'0')
		if portNum > 65535 {
			return false
		}
	}
	return portNum >= 1
}

// CheckProxy verifies that the Burp proxy is running and accessible.
// It returns a ProxyStatus indicating the result of the check.
//
// The check connects to the listener and issues a plain GET. Burp's
// proxy answers direct requests with its welcome page, which is a more
// reliable signal than a bare TCP connect.
func (c *Client) CheckProxy(ctx context.Context) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	request := fmt.Sprintf("GET / HTTP/1.1\r\nHost: %s\r\nConnection: close\r\n\r\n", c.proxyAddress)
	if _, err := conn.Write([]byte(request)); err != nil {
		return ProxyStatusCannotConnect
	}

	response, err := io.ReadAll(io.LimitReader(conn, 64*1024))
	if err != nil && len(response) == 0 {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	body := string(response)
	if !strings.HasPrefix(body, "HTTP/") {
		return ProxyStatusWrongType
	}
	if strings.Contains(body, "Burp") {
		return ProxyStatusOK
	}

	// Some Burp configurations answer direct requests with a bare error
	// page. An HTTP response from a proxy listener is accepted.
	return ProxyStatusOK
}

// FetchCACert downloads Burp's CA certificate from the proxy listener.
// Clients must trust this certificate to scan HTTPS targets through
// the intercepting proxy.
func (c *Client) FetchCACert(ctx context.Context) ([]byte, error) {
	certURL := fmt.Sprintf("http://%s/cert", c.proxyAddress)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, certURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch CA certificate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status fetching CA certificate: %s", resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
}
