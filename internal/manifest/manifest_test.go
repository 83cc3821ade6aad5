package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osinin/webstage/internal/config"
)

// TestDefault verifies the built-in manifest composes asset URLs from the CDN base.
func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.CDNBaseURL = "https://cdn.example.test/editor/1.2.3/"

	m, err := Default(cfg)
	require.NoError(t, err)
	require.Len(t, m.Assets, 4)
	require.Len(t, m.Files, 3)

	urls := make(map[string]string, len(m.Assets))
	for _, task := range m.Assets {
		urls[task.Destination] = task.URL
	}

	require.Equal(t, "https://cdn.example.test/editor/1.2.3/codemirror.min.js", urls["codemirror.min.js"])
	require.Equal(t, "https://cdn.example.test/editor/1.2.3/mode/clike/clike.min.js", urls["clike.min.js"])
	require.Equal(t, "https://cdn.example.test/editor/1.2.3/LICENSE", urls["codemirror.LICENSE"])
}

// TestValidate covers destination uniqueness and path-escape rejection.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Empty manifest.
	err := (&Manifest{}).Validate()
	require.Error(t, err)

	// Duplicate destination across asset and file tasks.
	m := &Manifest{
		Assets: []FetchTask{{URL: "https://cdn.example.test/a.js", Destination: "a.js"}},
		Files:  []CopyTask{{Source: "a.js", Destination: "a.js"}},
	}

	err = m.Validate()
	require.ErrorContains(t, err, "duplicate")

	// Destination escaping the target directory.
	m = &Manifest{
		Files: []CopyTask{{Source: "x", Destination: "../x"}},
	}

	err = m.Validate()
	require.ErrorContains(t, err, "escapes")

	// Missing source.
	m = &Manifest{
		Files: []CopyTask{{Destination: "x"}},
	}

	err = m.Validate()
	require.Error(t, err)
}

// TestLoad reads a YAML manifest from disk and validates it.
func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")

	contents := []byte(`assets:
  - url: https://cdn.example.test/lib/editor.min.js
    destination: editor.min.js
files:
  - source: index.html
    destination: index.html
`)
	require.NoError(t, os.WriteFile(path, contents, 0o600))

	m, err := Load(path)
	require.NoError(t, err)
	require.Len(t, m.Assets, 1)
	require.Len(t, m.Files, 1)
	require.Equal(t, "editor.min.js", m.Assets[0].Destination)
}

// TestStagingPlan resolves sources against the cache and app directories.
func TestStagingPlan(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.CacheDir = "cache"
	cfg.AppDir = "app"

	m := &Manifest{
		Assets: []FetchTask{{URL: "https://cdn.example.test/a.js", Destination: "a.js"}},
		Files:  []CopyTask{{Source: "index.html", Destination: "index.html"}},
	}

	plan := m.StagingPlan(cfg)
	require.Len(t, plan, 2)
	require.Equal(t, filepath.Join("cache", "a.js"), plan[0].Source)
	require.Equal(t, "a.js", plan[0].Destination)
	require.Equal(t, filepath.Join("app", "index.html"), plan[1].Source)
	require.Equal(t, "index.html", plan[1].Destination)
}

// TestFileChecksum ensures checksums are stable for identical content.
func TestFileChecksum(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "file.bin")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o600))

	first, err := FileChecksum(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := BytesChecksum([]byte("payload"))
	require.NoError(t, err)
	require.Equal(t, first, second)
}
