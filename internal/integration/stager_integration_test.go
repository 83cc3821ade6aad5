package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/osinin/webstage/internal/config"
	"github.com/osinin/webstage/internal/manifest"
	"github.com/osinin/webstage/internal/repository/report"
	"github.com/osinin/webstage/internal/service/stager"
)

// TestStager_Run_FetchesPackagesAndReports drives the full pipeline against a
// local HTTP server and verifies output, report and fetch idempotence.
//
//nolint:funlen // Integration test requires comprehensive setup and verification.
func TestStager_Run_FetchesPackagesAndReports(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	// Serve two assets, counting requests to prove caching works.
	var requests atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/editor.min.js", func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte("editor-code"))
	})
	mux.HandleFunc("/editor.min.css", func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte("editor-style"))
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	// Application file expected to pre-exist.
	require.NoError(t, os.MkdirAll("app", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("app", "index.html"), []byte("<html/>"), 0o644))

	// Manifest pointing at the test server.
	m := &manifest.Manifest{
		Assets: []manifest.FetchTask{
			{URL: ts.URL + "/editor.min.js", Destination: "editor.min.js"},
			{URL: ts.URL + "/editor.min.css", Destination: "editor.min.css"},
		},
		Files: []manifest.CopyTask{
			{Source: "index.html", Destination: "index.html"},
		},
	}

	manifestBytes, err := yaml.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile("manifest.yaml", manifestBytes, 0o600))

	cfgPath := filepath.Join(dir, config.DefaultConfigFilename)
	cfg := config.Default()
	cfg.ManifestPath = "manifest.yaml"

	require.NoError(t, config.Save(cfgPath, cfg))

	// First run stages everything.
	require.NoError(t, stager.Run(context.Background(), &stager.Options{ConfigPath: cfgPath}))
	require.EqualValues(t, 2, requests.Load())

	for name, want := range map[string]string{
		"editor.min.js":  "editor-code",
		"editor.min.css": "editor-style",
		"index.html":     "<html/>",
	} {
		contents, readErr := os.ReadFile(filepath.Join(cfg.OutputDir, name))
		require.NoError(t, readErr)
		require.Equal(t, want, string(contents))
	}

	// Report lists every staged file.
	repo := report.NewFileRepository(filepath.Join(cfg.OutputDir, report.DefaultFilename))

	rep, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Files, 3)
	require.Equal(t, cfg.OutputDir, rep.OutputDir)

	// Second run re-packages but performs no network I/O.
	require.NoError(t, stager.Run(context.Background(), &stager.Options{ConfigPath: cfgPath}))
	require.EqualValues(t, 2, requests.Load())
}

// TestStager_Run_RefusesParallelRuns verifies the run marker blocks a second stager.
func TestStager_Run_RefusesParallelRuns(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	marker, err := os.Create(stager.MarkerFilename)
	require.NoError(t, err)
	require.NoError(t, marker.Close())

	err = stager.Run(context.Background(), &stager.Options{ConfigPath: filepath.Join(dir, "settings.yaml")})
	require.ErrorContains(t, err, "in progress")
}
