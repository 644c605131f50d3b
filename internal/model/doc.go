// Package model defines the core data structures for webscan.
// It contains the scan report, findings, severity levels, and page
// representations shared by the scanner, pipeline, report, and server
// packages.
package model
