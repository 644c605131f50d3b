// Package scanner implements the HTTP reconnaissance scan mode.
// It checks target liveness, audits security headers and cookie flags,
// parses pages for forms and embedded resources, and inspects published
// images for EXIF metadata leaks.
package scanner
