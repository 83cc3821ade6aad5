package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/osinin/webstage/internal/config"
	"github.com/osinin/webstage/internal/manifest"
	"github.com/osinin/webstage/internal/service/fetcher"
	"github.com/osinin/webstage/internal/service/packager"
)

// writeTestManifest persists a manifest with one asset and one app file.
func writeTestManifest(t *testing.T, assetURL string) {
	t.Helper()

	m := &manifest.Manifest{
		Assets: []manifest.FetchTask{
			{URL: assetURL, Destination: "editor.min.js"},
		},
		Files: []manifest.CopyTask{
			{Source: "index.html", Destination: "index.html"},
		},
	}

	manifestBytes, err := yaml.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile("manifest.yaml", manifestBytes, 0o600))
}

// TestFetchThenPackage exercises the two subcommand entry points in sequence.
func TestFetchThenPackage(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("editor-code"))
	}))
	defer ts.Close()

	require.NoError(t, os.MkdirAll("app", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("app", "index.html"), []byte("<html/>"), 0o644))

	writeTestManifest(t, ts.URL+"/editor.min.js")

	cfgPath := filepath.Join(dir, config.DefaultConfigFilename)
	cfg := config.Default()
	cfg.ManifestPath = "manifest.yaml"

	require.NoError(t, config.Save(cfgPath, cfg))

	require.NoError(t, fetcher.Run(context.Background(), &fetcher.Options{ConfigPath: cfgPath}))
	require.NoError(t, packager.Run(context.Background(), &packager.Options{ConfigPath: cfgPath}))

	contents, err := os.ReadFile(filepath.Join(cfg.OutputDir, "editor.min.js"))
	require.NoError(t, err)
	require.Equal(t, "editor-code", string(contents))

	// Clean removes the output but keeps the cache by default.
	require.NoError(t, packager.RunClean(context.Background(), &packager.CleanOptions{ConfigPath: cfgPath}))

	_, err = os.Stat(cfg.OutputDir)
	require.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(cfg.CacheDir, "editor.min.js"))
	require.NoError(t, err)

	// Clean with the cache flag drops the cache too.
	cleanOptions := &packager.CleanOptions{ConfigPath: cfgPath, IncludeCache: true}
	require.NoError(t, packager.RunClean(context.Background(), cleanOptions))

	_, err = os.Stat(cfg.CacheDir)
	require.True(t, os.IsNotExist(err))
}

// TestPackage_WithoutFetchFailsOnMissingSource ensures packaging before any
// fetch surfaces the absent cached asset.
func TestPackage_WithoutFetchFailsOnMissingSource(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.MkdirAll("app", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("app", "index.html"), []byte("<html/>"), 0o644))

	writeTestManifest(t, "https://cdn.example.test/editor.min.js")

	cfgPath := filepath.Join(dir, config.DefaultConfigFilename)
	cfg := config.Default()
	cfg.ManifestPath = "manifest.yaml"

	require.NoError(t, config.Save(cfgPath, cfg))

	err := packager.Run(context.Background(), &packager.Options{ConfigPath: cfgPath})
	require.ErrorIs(t, err, packager.ErrSourceMissing)
	require.ErrorContains(t, err, "editor.min.js")
}
