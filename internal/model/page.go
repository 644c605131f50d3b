package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Page represents a fetched web page with all extracted information.
// This structure holds both the raw response data and parsed content.
//
// Design decision: We store both raw bytes and parsed content because:
// 1. Raw bytes are needed for binary analysis (EXIF, etc.)
// 2. Parsed content is needed for the security checks
// 3. The hash allows deduplication and change detection
type Page struct {
	// URL is the full URL of the page.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// Headers contains all HTTP response headers.
	// Keys are header names (canonicalized), values are slices of header values.
	Headers map[string][]string `json:"headers"`

	// ContentType is the MIME type of the response.
	// Extracted from Content-Type header for convenience.
	ContentType string `json:"content_type"`

	// ContentLength is the number of body bytes read.
	ContentLength int `json:"content_length"`

	// ResponseTime is the request round-trip time in seconds.
	ResponseTime float64 `json:"response_time"`

	// Title is the page title extracted from the <title> tag.
	// Empty for non-HTML content.
	Title string `json:"title,omitempty"`

	// Forms contains all HTML forms found on the page.
	Forms []Form `json:"forms,omitempty"`

	// Scripts contains external script source URLs.
	Scripts []string `json:"scripts,omitempty"`

	// Images contains image source URLs.
	Images []string `json:"images,omitempty"`

	// Stylesheets contains stylesheet URLs from <link rel="stylesheet">.
	Stylesheets []string `json:"stylesheets,omitempty"`

	// Iframes contains iframe source URLs.
	Iframes []string `json:"iframes,omitempty"`

	// Raw contains the raw response body bytes.
	// Limited to MaxPageSize bytes.
	Raw []byte `json:"-"` // Excluded from JSON to reduce report size

	// Hash is the SHA-256 hash of the raw content.
	// Used for deduplication and change detection.
	Hash string `json:"hash,omitempty"`
}

// MaxPageSize is the maximum size of raw page content to store.
// Larger pages are truncated to this size.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// Form represents an HTML form element.
type Form struct {
	// Action is the form's action URL, resolved against the page URL.
	Action string `json:"action"`

	// Method is the HTTP method (GET, POST, etc.).
	// Defaults to GET if not specified in HTML.
	Method string `json:"method"`

	// Inputs contains the form's input fields.
	Inputs []FormInput `json:"inputs,omitempty"`
}

// FormInput represents an input field in a form.
type FormInput struct {
	// Type is the input type (text, password, hidden, etc.).
	Type string `json:"type"`

	// Name is the input's name attribute.
	Name string `json:"name"`

	// Autocomplete is the input's autocomplete attribute, if set.
	Autocomplete string `json:"autocomplete,omitempty"`
}

// HasPasswordInput reports whether the form contains a password field.
// Forms with password fields get stricter transport checks.
func (f *Form) HasPasswordInput() bool {
	for _, in := range f.Inputs {
		if in.Type == "password" {
			return true
		}
	}
	return false
}

// ComputeHash calculates and sets the SHA-256 hash of the page's raw content.
// This should be called after setting the Raw field.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}

	hash := sha256.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(hash[:])
}

// GetHeader returns the first value of the specified header.
// Returns empty string if the header is not present.
func (p *Page) GetHeader(name string) string {
	if values, ok := p.Headers[name]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// IsHTML returns true if the page content type indicates HTML.
func (p *Page) IsHTML() bool {
	return strings.HasPrefix(p.ContentType, "text/html") ||
		strings.HasPrefix(p.ContentType, "application/xhtml+xml")
}

// IsImage returns true if the page content type indicates an image.
func (p *Page) IsImage() bool {
	return strings.HasPrefix(p.ContentType, "image/")
}

// TruncateRaw ensures the raw content doesn't exceed MaxPageSize.
// Call this after setting Raw to enforce the size limit.
func (p *Page) TruncateRaw() {
	if len(p.Raw) > MaxPageSize {
		p.Raw = p.Raw[:MaxPageSize]
	}
}
