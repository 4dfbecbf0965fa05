package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.Project != "spring-framework" {
		t.Errorf("expected Project to be 'spring-framework', got '%s'", cfg.Project)
	}
	if cfg.Version != "latest" {
		t.Errorf("expected Version to be 'latest', got '%s'", cfg.Version)
	}
	if cfg.OutputDir != "output" {
		t.Errorf("expected OutputDir to be 'output', got '%s'", cfg.OutputDir)
	}
	if cfg.Format != "epub" {
		t.Errorf("expected Format to be 'epub', got '%s'", cfg.Format)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("expected Timeout to be 60s, got %v", cfg.Timeout)
	}
	if cfg.Retries != 3 {
		t.Errorf("expected Retries to be 3, got %d", cfg.Retries)
	}
	if !cfg.Parallel {
		t.Error("expected Parallel to be true")
	}
	if !cfg.SaveHistory {
		t.Error("expected SaveHistory to be true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got %v", err)
	}
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr error
	}{
		{name: "valid http base URL", modify: func(c *Config) { c.BaseURL = "https://docs.example.com/guide" }},
		{name: "valid file base URL", modify: func(c *Config) { c.BaseURL = "file:///tmp/site/index.html" }},
		{name: "local path base URL", modify: func(c *Config) { c.BaseURL = "site/index.html" }},
		{name: "no source", modify: func(c *Config) { c.Project = "" }, wantErr: ErrNoSource},
		{name: "unsupported scheme", modify: func(c *Config) { c.BaseURL = "ftp://docs.example.com/" }, wantErr: ErrInvalidBaseURL},
		{name: "http without host", modify: func(c *Config) { c.BaseURL = "https:///guide" }, wantErr: ErrInvalidBaseURL},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, wantErr: ErrInvalidTimeout},
		{name: "zero retries", modify: func(c *Config) { c.Retries = 0 }, wantErr: ErrInvalidRetries},
		{name: "negative workers", modify: func(c *Config) { c.Workers = -1 }, wantErr: ErrInvalidWorkers},
		{name: "empty output dir", modify: func(c *Config) { c.OutputDir = " " }, wantErr: ErrEmptyOutputDir},
		{name: "empty format", modify: func(c *Config) { c.Format = "" }, wantErr: ErrEmptyFormat},
		{name: "name with separator", modify: func(c *Config) { c.Name = "a/b" }, wantErr: ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestResolveBaseURL tests base URL derivation.
func TestResolveBaseURL(t *testing.T) {
	t.Parallel()

	t.Run("latest version has no version segment", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		u, err := cfg.ResolveBaseURL()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.String() != "https://docs.spring.io/spring-framework/reference" {
			t.Errorf("got %q", u)
		}
	})

	t.Run("explicit version", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Project = "spring-boot"
		cfg.Version = "3.2"
		u, err := cfg.ResolveBaseURL()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.String() != "https://docs.spring.io/spring-boot/reference/3.2" {
			t.Errorf("got %q", u)
		}
	})

	t.Run("base URL wins over project", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.BaseURL = "https://docs.example.com/guide/"
		u, err := cfg.ResolveBaseURL()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.Host != "docs.example.com" {
			t.Errorf("got %q", u)
		}
	})

	t.Run("local path becomes a file URL", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cfg := NewConfig()
		cfg.BaseURL = filepath.Join(dir, "guide.html")
		u, err := cfg.ResolveBaseURL()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.Scheme != "file" || u.Path != filepath.ToSlash(filepath.Join(dir, "guide.html")) {
			t.Errorf("got %q", u)
		}
	})

	t.Run("local index file stands for its directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cfg := NewConfig()
		cfg.BaseURL = filepath.Join(dir, "index.html")
		u, err := cfg.ResolveBaseURL()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := filepath.ToSlash(dir) + "/"; u.Scheme != "file" || u.Path != want {
			t.Errorf("got %q, expected path %q", u, want)
		}
	})

	t.Run("file URL of an index file stands for its directory", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.BaseURL = "file:///srv/site/index.html"
		u, err := cfg.ResolveBaseURL()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.String() != "file:///srv/site/" {
			t.Errorf("got %q", u)
		}
	})
}

// TestOutputNameAndTitle tests the derived output file name and title.
func TestOutputNameAndTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		modify    func(c *Config)
		wantName  string
		wantTitle string
	}{
		{name: "defaults", modify: func(*Config) {}, wantName: "spring-framework", wantTitle: "Spring Framework"},
		{
			name:      "versioned project",
			modify:    func(c *Config) { c.Project = "spring-boot"; c.Version = "3.2" },
			wantName:  "spring-boot-3.2",
			wantTitle: "Spring Boot 3.2",
		},
		{
			name:      "base URL",
			modify:    func(c *Config) { c.BaseURL = "https://docs.example.com/my-guide/reference/" },
			wantName:  "my-guide",
			wantTitle: "My Guide",
		},
		{
			name:      "explicit name and title",
			modify:    func(c *Config) { c.Name = "book"; c.Title = "The Book" },
			wantName:  "book",
			wantTitle: "The Book",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			if got := cfg.OutputName(); got != tt.wantName {
				t.Errorf("OutputName() = %q, expected %q", got, tt.wantName)
			}
			if got := cfg.BookTitle(); got != tt.wantTitle {
				t.Errorf("BookTitle() = %q, expected %q", got, tt.wantTitle)
			}
		})
	}
}

// TestConfigApply tests that file defaults are applied.
func TestConfigApply(t *testing.T) {
	t.Parallel()

	t.Run("copies non-zero defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		err := cfg.Apply(&File{Defaults: Defaults{
			Project: "spring-security",
			Format:  "docx",
			Timeout: "30s",
			Retries: 5,
			Workers: 2,
			Proxy:   "127.0.0.1:1080",
		}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Project != "spring-security" || cfg.Format != "docx" || cfg.Timeout != 30*time.Second ||
			cfg.Retries != 5 || cfg.Workers != 2 || cfg.ProxyAddress != "127.0.0.1:1080" {
			t.Errorf("defaults not applied: %+v", cfg)
		}
		if cfg.OutputDir != DefaultOutputDir {
			t.Errorf("OutputDir = %q, expected the built-in default", cfg.OutputDir)
		}
		if cfg.SiteConfigs == nil {
			t.Error("SiteConfigs not set")
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		t.Parallel()

		err := NewConfig().Apply(&File{Defaults: Defaults{Timeout: "soon"}})
		if !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("nil file", func(t *testing.T) {
		t.Parallel()

		if err := NewConfig().Apply(nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

// TestFileGetSiteConfig tests merging of site credentials.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: Defaults{SiteConfig: SiteConfig{
			Cookie:  "default=1",
			Headers: map[string]string{"Accept-Language": "en", "X-Token": "default"},
		}},
		Sites: map[string]SiteConfig{
			"docs.internal.example.com": {
				Cookie:  "session=abc",
				Headers: map[string]string{"X-Token": "site"},
			},
		},
	}

	t.Run("returns defaults when site not found", func(t *testing.T) {
		t.Parallel()

		sc := cf.GetSiteConfig("docs.spring.io")
		if sc.Cookie != "default=1" || sc.Headers["X-Token"] != "default" {
			t.Errorf("got %+v", sc)
		}
	})

	t.Run("site values override defaults", func(t *testing.T) {
		t.Parallel()

		sc := cf.GetSiteConfig("Docs.Internal.Example.com")
		if sc.Cookie != "session=abc" {
			t.Errorf("Cookie = %q", sc.Cookie)
		}
		if sc.Headers["X-Token"] != "site" || sc.Headers["Accept-Language"] != "en" {
			t.Errorf("Headers = %v", sc.Headers)
		}
	})

	t.Run("does not modify defaults", func(t *testing.T) {
		t.Parallel()

		_ = cf.GetSiteConfig("docs.internal.example.com")
		if cf.Defaults.Headers["X-Token"] != "default" {
			t.Error("defaults were modified")
		}
	})
}

// TestLoadConfigFile tests loading configuration from YAML files.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `defaults:
  project: spring-boot
  version: "3.2"
  format: epub3
  timeout: 90s
  workers: 4
  headers:
    Accept-Language: en
sites:
  Docs.Internal.Example.com:
    cookie: "session=abc"
    headers:
      Authorization: "Bearer secret"
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Defaults.Project != "spring-boot" || cf.Defaults.Version != "3.2" || cf.Defaults.Workers != 4 {
			t.Errorf("Defaults = %+v", cf.Defaults)
		}
		if cf.Defaults.Headers["Accept-Language"] != "en" {
			t.Errorf("default headers = %v", cf.Defaults.Headers)
		}
		site, ok := cf.Sites["docs.internal.example.com"]
		if !ok {
			t.Fatalf("site not found, sites = %v", cf.Sites)
		}
		if site.Cookie != "session=abc" || site.Headers["Authorization"] != "Bearer secret" {
			t.Errorf("site = %+v", site)
		}

		cfg := NewConfig()
		if err := cfg.Apply(cf); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if cfg.Timeout != 90*time.Second {
			t.Errorf("Timeout = %v, expected 90s", cfg.Timeout)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("defaults: [unclosed"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("empty file gives empty sites map", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Sites == nil {
			t.Error("expected non-nil Sites map")
		}
	})
}

// TestFindConfigFile tests configuration file lookup.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("defaults: {}"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile() = %q, expected %q", got, path)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("FindConfigFile() = %q, expected empty", got)
		}
	})
}

// TestXDGDirs tests the XDG directory helpers.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{"data": XDGDataDir(), "config": XDGConfigDir()} {
		if dir == "" || filepath.Base(dir) != AppName {
			t.Errorf("%s dir = %q, expected a path ending in %q", name, dir, AppName)
		}
	}
}
