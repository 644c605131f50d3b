package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Banumathkovinda/web-app-security-tester/internal/config"
	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
	"github.com/Banumathkovinda/web-app-security-tester/internal/platform"
)

// Store persists rendered reports to the filesystem.
// The storage location depends on platform capabilities: durable XDG data
// directories on a regular host, the ephemeral temp directory on
// serverless platforms where nothing else is writable.
type Store struct {
	// dir is the directory reports are written to.
	dir string

	// ephemeral is true when the directory does not survive the process.
	ephemeral bool
}

// NewStore creates a report store appropriate for the platform.
func NewStore(caps platform.Capabilities) *Store {
	if !caps.PersistentStorage {
		return &Store{
			dir:       filepath.Join(caps.TempDir(), config.AppName, "reports"),
			ephemeral: true,
		}
	}
	return &Store{
		dir: filepath.Join(config.XDGDataDir(), "reports"),
	}
}

// NewStoreAt creates a report store rooted at an explicit directory.
// This is used when the user passes an output directory flag.
func NewStoreAt(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory reports are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Ephemeral reports whether stored files survive the process.
// Callers should warn users when reports land in ephemeral storage.
func (s *Store) Ephemeral() bool {
	return s.ephemeral
}

// Save renders the report in the given format and writes it to a file
// named after the scan ID. Returns the path of the written file.
// Reports may contain internal URLs and session cookies from site
// configuration, so files are created owner-readable only.
func (s *Store) Save(report *model.ScanReport, format string) (string, error) {
	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(s.dir, report.ScanID+extensionFor(format))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}

	writer, err := NewWriter(format, f)
	if err != nil {
		_ = f.Close()
		return "", err
	}

	if _, err := writer.Write(report); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}

	return path, nil
}

// NewWriter returns the Writer for a report format name.
// Supported formats are simple, json, markdown, html, and pdf.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch strings.ToLower(format) {
	case "simple", "":
		return NewSimpleWriter(output), nil
	case "json":
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case "markdown", "md":
		return NewMarkdownWriter(output), nil
	case "html":
		return NewHTMLWriter(output), nil
	case "pdf":
		return NewPDFWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidReportFormat, format)
	}
}

// extensionFor maps a format name to a file extension.
func extensionFor(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return ".json"
	case "markdown", "md":
		return ".md"
	case "html":
		return ".html"
	case "pdf":
		return ".pdf"
	default:
		return ".txt"
	}
}
