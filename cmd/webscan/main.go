// Package main provides the entry point for the webscan CLI.
//
// Webscan is a security testing tool for web applications. It checks
// security headers, cookie flags, forms, DOM XSS sinks, and image
// metadata, and integrates with Burp Suite for active scanning.
//
// Usage:
//
//	webscan scan https://example.com
//	webscan serve
//
// See --help for all available options.
package main

// main is the entry point for webscan.
func main() {
	Execute()
}
