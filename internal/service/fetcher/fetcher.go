package fetcher

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/osinin/webstage/internal/config"
	"github.com/osinin/webstage/internal/logger"
	"github.com/osinin/webstage/internal/manifest"
)

// ErrTransportFailure indicates the asset could not be retrieved from the CDN.
var ErrTransportFailure = errors.New("asset retrieval failed")

// DefaultAssetMode is the file mode for cached assets.
const DefaultAssetMode os.FileMode = 0o644

// defaultDirMode is the mode for created cache directories.
const defaultDirMode os.FileMode = 0o755

// Fetcher ensures CDN assets are present in the local cache directory.
// The cache is keyed by destination path: an existing file is never
// re-fetched, so repeated runs perform network I/O at most once per asset.
type Fetcher struct {
	// cfg holds the cache directory, timeout and concurrency settings.
	cfg *config.Config
	// client performs the HTTP retrievals. Proxy settings are honored via
	// the default transport's environment handling.
	client *http.Client
}

// New creates a Fetcher for the provided configuration.
func New(cfg *config.Config) *Fetcher {
	return &Fetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Ensure makes the task's asset available in the cache directory.
// If the destination file already exists the call is a no-op; otherwise the
// asset is downloaded and applied atomically, so a failed retrieval never
// leaves a partial file at the destination.
func (f *Fetcher) Ensure(ctx context.Context, task manifest.FetchTask) error {
	destination := filepath.Join(f.cfg.CacheDir, task.Destination)

	if _, err := os.Stat(destination); err == nil {
		logger.InfoKV(ctx, "Asset already cached, skipping", "path", destination)
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", destination, err)
	}

	if err := os.MkdirAll(filepath.Dir(destination), defaultDirMode); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	logger.InfoKV(ctx, "Downloading asset", "url", task.URL)

	data, err := f.download(ctx, task.URL)
	if err != nil {
		return err
	}

	if err = f.apply(destination, task.Checksum, data); err != nil {
		return fmt.Errorf("apply %s: %w", destination, err)
	}

	logger.InfoKV(ctx, "Cached asset", "path", destination, "size", len(data))

	return nil
}

// FetchAll runs all fetch tasks through a bounded worker pool.
// Tasks are mutually independent; the first error aborts the run.
func (f *Fetcher) FetchAll(ctx context.Context, tasks []manifest.FetchTask) error {
	if len(tasks) == 0 {
		return nil
	}

	workers := f.cfg.Concurrency
	if workers > len(tasks) {
		workers = len(tasks)
	}

	var (
		taskChannel  = make(chan manifest.FetchTask)
		errorChannel = make(chan error, len(tasks))
		wg           sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for task := range taskChannel {
				if err := f.Ensure(ctx, task); err != nil {
					errorChannel <- fmt.Errorf("ensure %s: %w", task.URL, err)
				}
			}
		}()
	}

feed:
	for _, task := range tasks {
		select {
		case <-ctx.Done():
			break feed
		case taskChannel <- task:
		}
	}

	close(taskChannel)
	wg.Wait()
	close(errorChannel)

	for err := range errorChannel {
		return err
	}

	return ctx.Err()
}

// download retrieves the asset body, mapping every transport problem and
// non-success status to ErrTransportFailure.
func (f *Fetcher) download(ctx context.Context, assetURL string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", assetURL, err)
	}

	response, err := f.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", assetURL, err, ErrTransportFailure)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", assetURL, response.Status, ErrTransportFailure)
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", assetURL, err, ErrTransportFailure)
	}

	return data, nil
}

// apply writes the payload to the destination atomically, verifying the
// optional checksum. The destination is removed again on failure because it
// did not exist before the call.
func (f *Fetcher) apply(destination, checksumBase64 string, data []byte) error {
	options := goupdate.Options{
		TargetPath: destination,
		TargetMode: DefaultAssetMode,
	}

	if checksumBase64 != "" {
		checksum, err := base64.StdEncoding.DecodeString(checksumBase64)
		if err != nil {
			return fmt.Errorf("decode checksum: %w", err)
		}

		options.Checksum = checksum
		options.Hash = manifest.DefaultChecksumFunction
	}

	// go-update replaces an existing target, so seed an empty one.
	seed, err := os.Create(destination)
	if err != nil {
		return err
	}

	if err = seed.Close(); err != nil {
		return err
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		_ = os.Remove(destination)
		return err
	}

	// go-update keeps the replaced file around; drop the leftover.
	oldDestination := destination + ".old"
	if _, err = os.Stat(oldDestination); err == nil {
		_ = os.Remove(oldDestination)
	}

	return nil
}
