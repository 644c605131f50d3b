package config

// SiteConfig holds per-target configuration for a single host.
// This allows customizing scan behavior per web application.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send when scanning this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	// Useful for scanning pages behind a session login.
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// SkipBrowser disables browser-automation checks for this site even
	// when the environment supports them.
	SkipBrowser bool `yaml:"skipBrowser,omitempty"`

	// IgnoreFindings lists finding types to suppress for this site.
	// Useful for accepted risks that would otherwise clutter every report.
	IgnoreFindings []string `yaml:"ignoreFindings,omitempty"`
}

// File represents the structure of the .webscan.yaml configuration file.
type File struct {
	// Sites maps hostnames to their per-target configurations.
	// Keys should be the hostname without the protocol (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific hostname.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
		if siteConfig.SkipBrowser {
			result.SkipBrowser = true
		}
		if len(siteConfig.IgnoreFindings) > 0 {
			result.IgnoreFindings = siteConfig.IgnoreFindings
		}
	}

	return result
}
