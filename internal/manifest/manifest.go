package manifest

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/osinin/webstage/internal/config"
)

var (
	errNoTasks              = errors.New("manifest contains no tasks")
	errEmptySource          = errors.New("task source must not be empty")
	errEmptyDestination     = errors.New("task destination must not be empty")
	errDuplicateDestination = errors.New("duplicate task destination")
	errUnsafeDestination    = errors.New("task destination escapes the target directory")
)

// FetchTask describes one CDN asset to cache locally.
type FetchTask struct {
	// URL is the absolute remote locator of the asset.
	URL string `yaml:"url"`
	// Destination is the cache-relative path the asset is stored under.
	Destination string `yaml:"destination"`
	// Checksum is an optional base64-encoded SHA-512 of the expected payload.
	// When present it is verified while the download is applied.
	Checksum string `yaml:"checksum,omitempty"`
}

// CopyTask describes one local file to place into the output directory.
type CopyTask struct {
	// Source is the path of the file to copy.
	Source string `yaml:"source"`
	// Destination is the output-relative path to copy it to.
	Destination string `yaml:"destination"`
}

// Manifest is the static task list consumed by the fetcher and the packager.
// It is constructed once at startup and never mutated afterwards.
type Manifest struct {
	// Assets are the CDN files to ensure in the local cache.
	Assets []FetchTask `yaml:"assets"`
	// Files are the application files to stage alongside the assets.
	Files []CopyTask `yaml:"files"`
}

// editorAssetSuffixes maps CDN path suffixes of the pinned editor release to
// the cache filenames they are stored under.
//
//nolint:gochecknoglobals // Static lookup table for the built-in manifest.
var editorAssetSuffixes = map[string]string{
	"codemirror.min.js":       "codemirror.min.js",
	"codemirror.min.css":      "codemirror.min.css",
	"LICENSE":                 "codemirror.LICENSE",
	"mode/clike/clike.min.js": "clike.min.js",
}

// applicationFiles are the viewer files expected to pre-exist in the app dir.
//
//nolint:gochecknoglobals // Static lookup table for the built-in manifest.
var applicationFiles = []string{
	"index.html",
	"style.css",
	"viewer.js",
}

// Default builds the built-in manifest from the configured CDN base URL.
func Default(cfg *config.Config) (*Manifest, error) {
	m := &Manifest{
		Assets: make([]FetchTask, 0, len(editorAssetSuffixes)),
		Files:  make([]CopyTask, 0, len(applicationFiles)),
	}

	for suffix, destination := range editorAssetSuffixes {
		assetURL, err := joinURL(cfg.CDNBaseURL, suffix)
		if err != nil {
			return nil, err
		}

		m.Assets = append(m.Assets, FetchTask{
			URL:         assetURL,
			Destination: destination,
		})
	}

	for _, name := range applicationFiles {
		m.Files = append(m.Files, CopyTask{
			Source:      name,
			Destination: name,
		})
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Load reads a manifest from a YAML file and validates it.
func Load(path string) (*Manifest, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Resolve returns the manifest to use for the provided configuration:
// the YAML manifest when one is configured, the built-in one otherwise.
func Resolve(cfg *config.Config) (*Manifest, error) {
	if cfg.ManifestPath != "" {
		return Load(cfg.ManifestPath)
	}

	return Default(cfg)
}

// Validate checks that every task is well-formed and that no two tasks,
// fetch or copy, target the same destination.
func (m *Manifest) Validate() error {
	if len(m.Assets) == 0 && len(m.Files) == 0 {
		return errNoTasks
	}

	seen := make(map[string]struct{}, len(m.Assets)+len(m.Files))

	for _, task := range m.Assets {
		if task.URL == "" {
			return fmt.Errorf("asset %q: %w", task.Destination, errEmptySource)
		}

		if err := checkDestination(seen, task.Destination); err != nil {
			return fmt.Errorf("asset %q: %w", task.URL, err)
		}
	}

	for _, task := range m.Files {
		if task.Source == "" {
			return fmt.Errorf("file %q: %w", task.Destination, errEmptySource)
		}

		if err := checkDestination(seen, task.Destination); err != nil {
			return fmt.Errorf("file %q: %w", task.Source, err)
		}
	}

	return nil
}

// StagingPlan resolves the manifest into the ordered copy list the packager
// consumes: every fetched asset read from the cache dir, then every
// application file read from the app dir.
func (m *Manifest) StagingPlan(cfg *config.Config) []CopyTask {
	plan := make([]CopyTask, 0, len(m.Assets)+len(m.Files))

	for _, task := range m.Assets {
		plan = append(plan, CopyTask{
			Source:      filepath.Join(cfg.CacheDir, task.Destination),
			Destination: task.Destination,
		})
	}

	for _, task := range m.Files {
		plan = append(plan, CopyTask{
			Source:      filepath.Join(cfg.AppDir, task.Source),
			Destination: task.Destination,
		})
	}

	return plan
}

// checkDestination enforces non-empty, directory-local, unique destinations.
func checkDestination(seen map[string]struct{}, destination string) error {
	if destination == "" {
		return errEmptyDestination
	}

	if !filepath.IsLocal(destination) {
		return fmt.Errorf("%q: %w", destination, errUnsafeDestination)
	}

	cleaned := filepath.Clean(destination)
	if _, found := seen[cleaned]; found {
		return fmt.Errorf("%q: %w", destination, errDuplicateDestination)
	}

	seen[cleaned] = struct{}{}

	return nil
}

// joinURL appends a suffix to the base URL, normalizing duplicate slashes.
func joinURL(base, suffix string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse CDN base URL: %w", err)
	}

	parsed.Path = path.Join(parsed.Path, suffix)

	return parsed.String(), nil
}
