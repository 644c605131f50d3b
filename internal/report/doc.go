// Package report renders scan reports in multiple output formats.
// It provides terminal, JSON, Markdown, HTML, and PDF writers behind a
// common Writer interface, plus file persistence that adapts to the
// storage capabilities of the runtime platform.
package report
