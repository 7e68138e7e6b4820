package config

import "strings"

// SiteConfig holds per-site crawl settings.
type SiteConfig struct {
	// Cookie is an HTTP cookie sent to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// PageBudget overrides the global page budget when non-zero.
	PageBudget int `yaml:"pageBudget,omitempty"`

	// KeyTypes overrides the reserved-slot label order.
	KeyTypes []string `yaml:"keyTypes,omitempty"`

	// IgnorePatterns are glob patterns matched against URL paths.
	// Matching links are never verified or fetched.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`
}

// NoiseConfig extends the built-in noise filter rules.
type NoiseConfig struct {
	// Selectors are extra CSS selectors removed from every page.
	Selectors []string `yaml:"selectors,omitempty"`

	// Keywords are extra class/id/role tokens that mark noise.
	Keywords []string `yaml:"keywords,omitempty"`
}

// File represents the structure of the .sitescout configuration file.
type File struct {
	// Sites maps a host name (without scheme) to its configuration.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Noise extends the noise filter.
	Noise NoiseConfig `yaml:"noise,omitempty"`
}

// GetSiteConfig returns the configuration for host merged over the defaults.
// A leading "www." is ignored when looking up the host.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if result.Headers != nil {
		headers := make(map[string]string, len(result.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	host = strings.ToLower(host)
	siteConfig, ok := cf.Sites[host]
	if !ok {
		siteConfig, ok = cf.Sites[strings.TrimPrefix(host, "www.")]
	}
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.PageBudget != 0 {
		result.PageBudget = siteConfig.PageBudget
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range siteConfig.Headers {
			result.Headers[k] = v
		}
	}
	if len(siteConfig.KeyTypes) > 0 {
		result.KeyTypes = siteConfig.KeyTypes
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}

	return result
}
