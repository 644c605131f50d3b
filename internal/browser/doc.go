// Package browser runs security checks inside headless Chrome.
// It probes DOM-based XSS sinks via URL fragments, detects mixed
// content, inspects rendered forms, and audits client-side storage
// for secrets.
package browser
