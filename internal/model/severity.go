package model

// Severity represents the risk level of a security finding.
// This allows categorizing findings by their potential impact on the
// scanned application and its users.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational findings with no direct security impact.
	// Examples: detected forms, present security headers, scan diagnostics.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues with limited impact.
	// Examples: missing X-Content-Type-Options, password autocomplete enabled.
	SeverityLow

	// SeverityMedium indicates moderate issues that warrant attention.
	// Examples: missing CSP or HSTS headers, mixed content, cookies without
	// the Secure flag.
	SeverityMedium

	// SeverityHigh indicates serious issues that expose users to attack.
	// Examples: forms submitting credentials over plain HTTP, targets that
	// cannot be reached for verification.
	SeverityHigh

	// SeverityCritical indicates severe issues that are directly exploitable.
	// Examples: DOM-based XSS with confirmed script execution, GPS
	// coordinates embedded in published images.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a lowercase severity string (as used by external
// tools such as Burp Suite) to a Severity. Unknown strings map to
// SeverityInfo so external data can never inflate the risk summary.
func ParseSeverity(s string) Severity {
	switch s {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// FindingInfo contains metadata about a finding type including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity    Severity
	Impact      string
	Remediation string
}

// findingInfoMapping maps finding types to their metadata.
// This centralized mapping ensures consistent risk assessment across the
// application.
//
// Design decision: We use a map rather than embedding severity in each
// finding type because:
// 1. It allows updating risk assessments without modifying type definitions
// 2. It provides a single source of truth for risk levels
// 3. It makes it easy to generate severity documentation
var findingInfoMapping = map[string]FindingInfo{
	// CRITICAL - directly exploitable
	"dom_xss": {
		Severity:    SeverityCritical,
		Impact:      "JavaScript supplied in the URL executed inside the page, allowing session theft and content manipulation.",
		Remediation: "Sanitize all user input before inserting it into the DOM. Use textContent instead of innerHTML.",
	},
	"dom_xss_hash": {
		Severity:    SeverityCritical,
		Impact:      "A payload placed in location.hash executed as script, so any link to the page can carry attacker code.",
		Remediation: "Validate and sanitize location.hash before using it in DOM operations.",
	},
	"exif_gps": {
		Severity:    SeverityCritical,
		Impact:      "A published image embeds GPS coordinates, revealing the physical location where it was taken.",
		Remediation: "Strip EXIF metadata from all images before publishing.",
	},

	// HIGH - serious exposure
	"insecure_form": {
		Severity:    SeverityHigh,
		Impact:      "Form data, potentially including credentials, is submitted over unencrypted HTTP and can be intercepted.",
		Remediation: "Ensure all forms submit to HTTPS endpoints.",
	},
	"connection_error": {
		Severity:    SeverityHigh,
		Impact:      "The target could not be reached, so none of its security posture could be verified.",
		Remediation: "Confirm the target URL is correct and the service is reachable from the scanner.",
	},

	// MEDIUM - warrants attention
	"missing_hsts": {
		Severity:    SeverityMedium,
		Impact:      "Without Strict-Transport-Security, clients can be downgraded to plain HTTP by an active attacker.",
		Remediation: "Send Strict-Transport-Security with a max-age of at least one year.",
	},
	"missing_csp": {
		Severity:    SeverityMedium,
		Impact:      "Without Content-Security-Policy, injected scripts execute unrestricted, increasing the XSS attack surface.",
		Remediation: "Deploy a Content-Security-Policy that restricts script sources.",
	},
	"missing_x_frame_options": {
		Severity:    SeverityMedium,
		Impact:      "The page can be embedded in a hostile frame, enabling clickjacking attacks.",
		Remediation: "Add X-Frame-Options: DENY or SAMEORIGIN, or the CSP frame-ancestors directive.",
	},
	"mixed_content": {
		Severity:    SeverityMedium,
		Impact:      "HTTP resources on an HTTPS page can be tampered with in transit, undermining the page's integrity.",
		Remediation: "Load all resources over HTTPS or use protocol-relative URLs.",
	},
	"cookie_missing_secure": {
		Severity:    SeverityMedium,
		Impact:      "A cookie without the Secure flag is sent over plain HTTP and can be captured on the network.",
		Remediation: "Set the Secure attribute on all cookies served over HTTPS.",
	},
	"cookie_missing_httponly": {
		Severity:    SeverityMedium,
		Impact:      "A cookie readable from JavaScript can be exfiltrated by any successful XSS payload.",
		Remediation: "Set the HttpOnly attribute on session cookies.",
	},
	"client_storage_sensitive": {
		Severity:    SeverityMedium,
		Impact:      "Web Storage keys suggest credentials or tokens are kept client side, where any XSS can read them.",
		Remediation: "Avoid storing secrets in localStorage or sessionStorage; use secure, httpOnly cookies instead.",
	},
	"server_version": {
		Severity:    SeverityMedium,
		Impact:      "The Server header reveals software and version, helping attackers select known exploits.",
		Remediation: "Configure the server to omit version information from response headers.",
	},
	"x_powered_by": {
		Severity:    SeverityMedium,
		Impact:      "The X-Powered-By header reveals the technology stack for targeted attacks.",
		Remediation: "Remove or suppress the X-Powered-By header.",
	},

	// LOW - minor issues
	"missing_x_content_type_options": {
		Severity:    SeverityLow,
		Impact:      "Browsers may MIME-sniff responses, potentially interpreting uploads as executable content.",
		Remediation: "Add X-Content-Type-Options: nosniff.",
	},
	"missing_referrer_policy": {
		Severity:    SeverityLow,
		Impact:      "Full referrer URLs, which may contain identifiers, leak to external destinations.",
		Remediation: "Add a Referrer-Policy such as strict-origin-when-cross-origin.",
	},
	"cookie_missing_samesite": {
		Severity:    SeverityLow,
		Impact:      "Cookies without SameSite are attached to cross-site requests, easing CSRF attacks.",
		Remediation: "Set SameSite=Lax or Strict on cookies.",
	},
	"password_autocomplete": {
		Severity:    SeverityLow,
		Impact:      "Password fields with autocomplete enabled may be cached on shared machines.",
		Remediation: "Set autocomplete=\"new-password\" or \"current-password\" as appropriate.",
	},
	"exif_metadata": {
		Severity:    SeverityLow,
		Impact:      "Image EXIF metadata may contain device, software, or timestamp information.",
		Remediation: "Strip EXIF metadata from images before publishing.",
	},

	// INFO - no direct risk
	"missing_permissions_policy": {
		Severity:    SeverityInfo,
		Impact:      "Browser features such as camera and geolocation are not restricted for embedded content.",
		Remediation: "Add a Permissions-Policy header that disables unused browser features.",
	},
	"header_present": {
		Severity:    SeverityInfo,
		Impact:      "A recommended security header is configured.",
		Remediation: "No action needed.",
	},
	"target_response": {
		Severity:    SeverityInfo,
		Impact:      "Baseline information about the target response.",
		Remediation: "No action needed.",
	},
	"form_detected": {
		Severity:    SeverityInfo,
		Impact:      "Form detected. User input should be properly validated server side.",
		Remediation: "Implement CSRF protection and input validation.",
	},
	"client_storage": {
		Severity:    SeverityInfo,
		Impact:      "The page uses Web Storage. Review what is stored there.",
		Remediation: "Audit client-side storage for sensitive values.",
	},
	"clickjacking": {
		Severity:    SeverityInfo,
		Impact:      "The page loaded without frame restrictions and can be overlaid by a hostile site to hijack clicks.",
		Remediation: "Add X-Frame-Options: DENY or SAMEORIGIN, or a CSP frame-ancestors directive.",
	},
	"browser_unavailable": {
		Severity:    SeverityInfo,
		Impact:      "Browser-automation checks were skipped because the environment cannot run a browser engine.",
		Remediation: "Run the scan on a full host to include DOM-based checks.",
	},
	"burp_proxy_unavailable": {
		Severity:    SeverityInfo,
		Impact:      "The configured Burp Suite proxy could not be reached, so proxy-assisted analysis was skipped.",
		Remediation: "Ensure Burp Suite is running and the proxy listener address is correct.",
	},
	"burp_proxy_connected": {
		Severity:    SeverityInfo,
		Impact:      "Scanner traffic was routed through the Burp Suite proxy for manual analysis.",
		Remediation: "No action needed.",
	},
}

// GetSeverity returns the severity level for a finding type.
// Returns SeverityInfo if the finding type is not in the mapping.
func GetSeverity(findingType string) Severity {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetFindingInfo returns the full finding information for a finding type.
// Returns a default FindingInfo with SeverityInfo if the type is not in
// the mapping.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{
		Severity:    SeverityInfo,
		Impact:      "Unknown finding type. Review manually.",
		Remediation: "Investigate the finding and assess risk.",
	}
}
