package packager

import (
	"context"
	"fmt"

	"github.com/osinin/webstage/internal/config"
	"github.com/osinin/webstage/internal/logger"
	"github.com/osinin/webstage/internal/manifest"
)

// Options contains inputs for the package entry point.
type Options struct {
	// ConfigPath is an optional path to the settings YAML file.
	ConfigPath string
}

// CleanOptions contains inputs for the clean entry point.
type CleanOptions struct {
	// ConfigPath is an optional path to the settings YAML file.
	ConfigPath string
	// IncludeCache also removes the asset cache directory.
	IncludeCache bool
}

// Run assembles the output directory from the manifest's staging plan.
// It is the entry point behind the `webstage package` subcommand.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "webstage-package")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	m, err := manifest.Resolve(cfg)
	if err != nil {
		return err
	}

	plan := m.StagingPlan(cfg)

	logger.InfoKV(ctx, "Assembling output directory", "count", len(plan), "output_dir", cfg.OutputDir)

	if err = Package(ctx, plan, cfg.OutputDir); err != nil {
		return fmt.Errorf("package files: %w", err)
	}

	logger.Info(ctx, "Packaging completed successfully")

	return nil
}

// RunClean removes all build output, optionally including the asset cache.
// It is the entry point behind the `webstage clean` subcommand.
func RunClean(ctx context.Context, opts *CleanOptions) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "webstage-clean")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if err = Clean(ctx, cfg.OutputDir); err != nil {
		return err
	}

	if opts.IncludeCache {
		if err = Clean(ctx, cfg.CacheDir); err != nil {
			return err
		}
	}

	logger.Info(ctx, "Clean completed successfully")

	return nil
}
