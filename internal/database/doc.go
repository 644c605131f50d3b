// Package database provides SQLite-based persistence for scan history.
// Complete reports are stored as JSON with indexed metadata columns for
// efficient history listings and target comparisons.
package database
