// Package server exposes scanning over an HTTP API.
// It launches scans, reports their progress, renders stored reports in
// multiple formats, and serves scan history and Prometheus metrics.
//
// The server adapts to platform capabilities: on a regular host scans
// run asynchronously and results persist to SQLite, while on serverless
// platforms scans run synchronously within the request budget and
// history is kept in memory for the life of the instance.
package server
