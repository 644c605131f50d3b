// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard
// slog package.
//
// A security scanner handles secrets constantly: site session cookies
// from configuration, Authorization headers observed in responses, the
// Burp REST API key, and the API server's own bearer token. The
// SecureHandler masks these before they reach log output, even in
// verbose mode, so logs can be shared or attached to bug reports
// without leaking credentials.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("request sent",
//	    "cookie", "session=abc123",  // masked
//	    "url", "https://example.com",
//	)
//
//	slog.SetDefault(logger)
package log
