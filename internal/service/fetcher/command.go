package fetcher

import (
	"context"
	"fmt"

	"github.com/osinin/webstage/internal/config"
	"github.com/osinin/webstage/internal/logger"
	"github.com/osinin/webstage/internal/manifest"
)

// Options contains inputs for the fetch entry point.
type Options struct {
	// ConfigPath is an optional path to the settings YAML file.
	ConfigPath string
}

// Run ensures every manifest asset is present in the local cache.
// It is the entry point behind the `webstage fetch` subcommand.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "webstage-fetch")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	m, err := manifest.Resolve(cfg)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Ensuring CDN assets", "count", len(m.Assets), "cache_dir", cfg.CacheDir)

	if err = New(cfg).FetchAll(ctx, m.Assets); err != nil {
		return fmt.Errorf("fetch assets: %w", err)
	}

	logger.Info(ctx, "All assets are cached")

	return nil
}
