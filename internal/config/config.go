package config

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "docepub"

	// DefaultProject is the Spring project built when no base URL is given.
	DefaultProject = "spring-framework"

	// DefaultVersion selects the current release of a Spring project.
	DefaultVersion = "latest"

	// DefaultOutputDir receives the images and the rendered book.
	DefaultOutputDir = "output"

	// DefaultFormat is the pandoc writer used for the book.
	DefaultFormat = "epub"

	// DefaultTimeout applies to each request attempt.
	DefaultTimeout = 60 * time.Second

	// DefaultRetries is the number of attempts per request.
	DefaultRetries = 3

	// DefaultUserAgent identifies docepub in HTTP requests.
	DefaultUserAgent = "docepub/1.0 (+https://github.com/nao1215/docepub)"

	// SpringDocsURL is the root of the Spring reference documentation.
	SpringDocsURL = "https://docs.spring.io"
)

// Config holds all options of a build.
// It is populated from the configuration file and CLI flags and passed
// through the application rather than kept in global state.
type Config struct {
	// BaseURL is the documentation root. When empty it is derived from
	// Project and Version.
	BaseURL string

	// Project is the Spring project name, e.g. "spring-boot".
	Project string

	// Version is the project version, or "latest".
	Version string

	// OutputDir receives the image directory and the rendered book.
	OutputDir string

	// Parallel fetches pages on a worker pool instead of one at a time.
	Parallel bool

	// Format is "html" or a pandoc writer name.
	Format string

	// Name is the output file name without extension.
	// When empty it is derived from the source.
	Name string

	// Title is the document title. When empty it is derived from Name.
	Title string

	// Timeout applies to each request attempt.
	Timeout time.Duration

	// Retries is the number of attempts per request.
	Retries int

	// Workers bounds concurrent requests. Zero uses the number of CPUs.
	Workers int

	// ProxyAddress is an optional SOCKS5 proxy in host:port form.
	ProxyAddress string

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit configuration file path.
	ConfigFilePath string

	// SiteConfigs holds the credentials loaded from the configuration file.
	SiteConfigs *File

	// SummaryFile is an optional path for the Markdown build summary.
	SummaryFile string

	// SaveHistory records the build in the history database.
	SaveHistory bool

	// DBDir is the directory of the history database.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Project:     DefaultProject,
		Version:     DefaultVersion,
		OutputDir:   DefaultOutputDir,
		Parallel:    true,
		Format:      DefaultFormat,
		Timeout:     DefaultTimeout,
		Retries:     DefaultRetries,
		UserAgent:   DefaultUserAgent,
		SaveHistory: true,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for docepub.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for docepub.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.BaseURL == "" && c.Project == "" {
		return ErrNoSource
	}
	if _, err := c.ResolveBaseURL(); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Retries < 1 {
		return ErrInvalidRetries
	}
	if c.Workers < 0 {
		return ErrInvalidWorkers
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return ErrEmptyOutputDir
	}
	if strings.TrimSpace(c.Format) == "" {
		return ErrEmptyFormat
	}
	if strings.ContainsAny(c.Name, `/\`) {
		return ErrInvalidName
	}
	return nil
}

// ResolveBaseURL returns the documentation root.
// A base URL without a scheme is taken as a local directory or file and
// turned into a file URL. A local index.html stands for its directory. Without a base URL the Spring reference URL of
// Project and Version is used.
func (c *Config) ResolveBaseURL() (*url.URL, error) {
	raw := c.BaseURL
	if raw == "" {
		raw = SpringURL(c.Project, c.Version)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return nil, fmt.Errorf("%w: %q has no host", ErrInvalidBaseURL, raw)
		}
		return u, nil
	case "file":
		return siteRoot(u), nil
	case "":
		abs, err := filepath.Abs(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
		}
		return siteRoot(&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}), nil
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidBaseURL, u.Scheme)
	}
}

// siteRoot turns a file URL naming a local index.html into its directory.
// Pages are resolved below the base URL, and a directory is read through
// its index.html.
func siteRoot(u *url.URL) *url.URL {
	if path.Base(u.Path) != "index.html" {
		return u
	}
	root := *u
	root.Path = path.Dir(u.Path) + "/"
	root.RawPath = ""
	return &root
}

// SpringURL returns the reference documentation URL of a Spring project.
// The "latest" version, or no version, selects the current release.
func SpringURL(project, version string) string {
	u := SpringDocsURL + "/" + project + "/reference"
	if version != "" && !strings.EqualFold(version, DefaultVersion) {
		u += "/" + version
	}
	return u
}

// OutputName returns the output file name without extension.
func (c *Config) OutputName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.BaseURL == "" && c.Project != "" {
		if c.Version != "" && !strings.EqualFold(c.Version, DefaultVersion) {
			return c.Project + "-" + c.Version
		}
		return c.Project
	}

	u, err := c.ResolveBaseURL()
	if err != nil {
		return "book"
	}
	for _, seg := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if seg != "" && seg != "." {
			return strings.TrimSuffix(seg, path.Ext(seg))
		}
	}
	if u.Hostname() != "" {
		return u.Hostname()
	}
	return "book"
}

// BookTitle returns the document title.
func (c *Config) BookTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return TitleFromName(c.OutputName())
}

// TitleFromName turns a file or project name such as "spring-framework"
// into a title such as "Spring Framework".
func TitleFromName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// Apply copies the non-zero defaults of a configuration file into c.
// It is called before CLI flags are applied so flags take precedence.
func (c *Config) Apply(f *File) error {
	if f == nil {
		return nil
	}
	c.SiteConfigs = f
	d := f.Defaults

	if d.Project != "" {
		c.Project = d.Project
	}
	if d.Version != "" {
		c.Version = d.Version
	}
	if d.Output != "" {
		c.OutputDir = d.Output
	}
	if d.Format != "" {
		c.Format = d.Format
	}
	if d.Timeout != "" {
		timeout, err := time.ParseDuration(d.Timeout)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, d.Timeout)
		}
		c.Timeout = timeout
	}
	if d.Retries != 0 {
		c.Retries = d.Retries
	}
	if d.Workers != 0 {
		c.Workers = d.Workers
	}
	if d.UserAgent != "" {
		c.UserAgent = d.UserAgent
	}
	if d.Proxy != "" {
		c.ProxyAddress = d.Proxy
	}
	return nil
}
