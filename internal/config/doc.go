// Package config provides configuration structures and utilities for webscan.
// It defines the main configuration options for scanning web applications,
// Burp Suite integration, report generation, and the API server.
package config
