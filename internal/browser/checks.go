package browser

import (
	"fmt"
	"strings"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// sensitiveStorageKeys are substrings that mark a client storage key as
// likely holding secrets. Matching is case-insensitive.
var sensitiveStorageKeys = []string{
	"token", "jwt", "auth", "session", "password", "secret", "api_key", "apikey", "credential",
}

// AnalyzeMixedContent flags plain-HTTP subresources loaded by an HTTPS
// page. Browsers block some mixed content, but passive mixed content
// (images, media) still loads and can be tampered with in transit.
func AnalyzeMixedContent(report *model.ScanReport, pageURL string, resourceURLs []string) {
	if !strings.HasPrefix(pageURL, "https://") {
		return
	}

	for _, res := range resourceURLs {
		if strings.HasPrefix(res, "http://") {
			report.AddFinding(model.NewFinding(
				"mixed_content",
				"Mixed Content Resource",
				"An HTTPS page loads a subresource over plain HTTP.",
				res,
				pageURL,
			))
		}
	}
}

// AnalyzeForms checks rendered forms for insecure submission targets
// and password fields without autocomplete protection. Running this on
// the live DOM also catches forms injected by JavaScript.
func AnalyzeForms(report *model.ScanReport, pageURL string, forms []DOMForm) {
	for _, form := range forms {
		if form.HasPassword && strings.HasPrefix(form.Action, "http://") {
			report.AddFinding(model.NewFinding(
				"insecure_form",
				"Password Form Submits Over HTTP",
				"A form containing a password field submits to an unencrypted HTTP endpoint.",
				form.Action,
				pageURL,
			))
		}

		if form.HasPassword && !form.AutocompleteOff {
			report.AddFinding(model.NewFinding(
				"password_autocomplete",
				"Password Field Allows Autocomplete",
				fmt.Sprintf("The password field %q does not disable autocomplete.", form.PasswordField),
				form.PasswordField,
				pageURL,
			))
		}
	}
}

// AnalyzeStorage inspects localStorage and sessionStorage for keys that
// suggest secrets are kept client-side, where any XSS can read them.
func AnalyzeStorage(report *model.ScanReport, pageURL string, storage StorageSnapshot) {
	analyzeStorageArea(report, pageURL, "localStorage", storage.Local)
	analyzeStorageArea(report, pageURL, "sessionStorage", storage.Session)
}

func analyzeStorageArea(report *model.ScanReport, pageURL, area string, entries map[string]string) {
	if len(entries) == 0 {
		return
	}

	report.AddFinding(model.NewFinding(
		"client_storage",
		fmt.Sprintf("%s In Use", area),
		fmt.Sprintf("The page stores %d key(s) in %s.", len(entries), area),
		fmt.Sprintf("%d keys", len(entries)),
		pageURL,
	))

	for key := range entries {
		if isSensitiveKey(key) {
			report.AddFinding(model.NewFinding(
				"client_storage_sensitive",
				fmt.Sprintf("Sensitive Data in %s", area),
				fmt.Sprintf("The %s key %q suggests credentials or tokens are stored client-side.", area, key),
				key,
				pageURL,
			))
		}
	}
}

// AnalyzeFrameability records a clickjacking advisory when the document
// response carried no frame restrictions. This is advisory because
// frame-busting scripts may still protect the page.
func AnalyzeFrameability(report *model.ScanReport, pageURL string, framable bool) {
	if !framable {
		return
	}

	report.AddFinding(model.NewFinding(
		"clickjacking",
		"Page May Be Framable",
		"The document response carried neither X-Frame-Options nor a CSP frame-ancestors directive, so the page can be embedded by another site.",
		"",
		pageURL,
	))
}

// isSensitiveKey reports whether a storage key name suggests a secret.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, marker := range sensitiveStorageKeys {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
