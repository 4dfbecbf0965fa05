package config

import "strings"

// SiteConfig holds the credentials sent to one documentation host.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Defaults holds the build defaults of the configuration file.
// The embedded SiteConfig applies to every host.
type Defaults struct {
	SiteConfig `yaml:",inline"`

	Project   string `yaml:"project,omitempty"`
	Version   string `yaml:"version,omitempty"`
	Output    string `yaml:"output,omitempty"`
	Format    string `yaml:"format,omitempty"`
	Timeout   string `yaml:"timeout,omitempty"`
	Retries   int    `yaml:"retries,omitempty"`
	Workers   int    `yaml:"workers,omitempty"`
	UserAgent string `yaml:"userAgent,omitempty"`
	Proxy     string `yaml:"proxy,omitempty"`
}

// File represents the structure of the .docepub configuration file.
type File struct {
	// Sites maps host names to their site-specific credentials.
	// Keys are host names without scheme or port, e.g. "docs.spring.io".
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains the build defaults and the credentials applied to
	// all sites unless overridden in Sites.
	Defaults Defaults `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the credentials for host.
// Site headers are merged over the default headers and a site cookie
// replaces the default cookie.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := SiteConfig{Cookie: cf.Defaults.Cookie}
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	site, ok := cf.Sites[strings.ToLower(host)]
	if !ok {
		return result
	}
	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	return result
}
