package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds staging parameters shared by the webstage subcommands.
type Config struct {
	// CDNBaseURL is the base URL under which the editor assets are hosted.
	CDNBaseURL string `yaml:"cdn_base_url"`
	// AppDir is the directory holding the pre-existing application files.
	AppDir string `yaml:"app_dir"`
	// CacheDir is the local directory where fetched CDN assets are cached.
	CacheDir string `yaml:"cache_dir"`
	// OutputDir is the directory into which all artifacts are staged.
	OutputDir string `yaml:"output_dir"`
	// ManifestPath optionally points to a YAML manifest overriding the built-in one.
	ManifestPath string `yaml:"manifest,omitempty"`
	// Timeout is the duration allowed for a single asset download.
	Timeout time.Duration `yaml:"timeout"`
	// Concurrency is the number of parallel asset downloads.
	Concurrency int `yaml:"concurrency"`
}

const (
	// DefaultConfigFilename is the default filename for staging settings.
	DefaultConfigFilename = "webstage-settings.yaml"

	// DefaultCDNBaseURL is the CDN folder hosting the pinned editor release.
	DefaultCDNBaseURL = "https://cdnjs.cloudflare.com/ajax/libs/codemirror/5.65.16"

	// DefaultAppDir is the default application source directory.
	DefaultAppDir = "app"

	// DefaultCacheDir is the default asset cache directory.
	DefaultCacheDir = "cache"

	// DefaultOutputDir is the default staging output directory.
	DefaultOutputDir = "dist"

	// DefaultTimeout is the default duration for a single download.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the default number of parallel downloads.
	DefaultConcurrency = 4

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errCDNBaseURLRequired is returned when the CDN base URL is missing.
	errCDNBaseURLRequired = errors.New("CDN base URL must be provided")
)

// Default returns a configuration populated with the built-in defaults.
func Default() *Config {
	return &Config{
		CDNBaseURL:  DefaultCDNBaseURL,
		AppDir:      DefaultAppDir,
		CacheDir:    DefaultCacheDir,
		OutputDir:   DefaultOutputDir,
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
	}
}

// Load reads configuration from the provided path and validates essential fields.
// A missing file is not an error: defaults are returned instead, so every
// subcommand works out of the box in a fresh checkout.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.CDNBaseURL == "" {
		return errCDNBaseURLRequired
	}

	if _, err := url.ParseRequestURI(cfg.CDNBaseURL); err != nil {
		return fmt.Errorf("invalid CDN base URL: %w", err)
	}

	if cfg.AppDir == "" {
		cfg.AppDir = DefaultAppDir
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	return nil
}
