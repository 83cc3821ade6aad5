package stager

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/osinin/webstage/internal/config"
	"github.com/osinin/webstage/internal/domain/staging"
	"github.com/osinin/webstage/internal/logger"
	"github.com/osinin/webstage/internal/manifest"
	"github.com/osinin/webstage/internal/repository/report"
	"github.com/osinin/webstage/internal/service/fetcher"
	"github.com/osinin/webstage/internal/service/packager"
	"github.com/osinin/webstage/internal/version"
)

// errStagerRunning indicates that another staging run is already in progress.
var errStagerRunning = errors.New("another staging run is in progress")

// Options contains inputs for the stage entry point.
type Options struct {
	// ConfigPath is an optional path to persist staging settings.
	ConfigPath string
}

// stager executes the two-phase staging pipeline: cache every CDN asset,
// then assemble the output directory and write the staging report.
// It is unexported; callers should use Run, which encapsulates setup.
type stager struct {
	// cfg holds the directories, CDN base URL and download knobs.
	cfg *config.Config
	// m is the resolved task manifest for this run.
	m *manifest.Manifest
}

// Run executes the full staging workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "webstage-stage")

	if IsStagerRunningNow(ctx) {
		return errStagerRunning
	}

	if err := writeMarker(); err != nil {
		return fmt.Errorf("write run marker: %w", err)
	}

	defer removeMarker()

	s, err := newStager(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("initialize stager: %w", err)
	}

	if err = s.Run(ctx); err != nil {
		return fmt.Errorf("staging failed: %w", err)
	}

	logger.Info(ctx, "Staging completed successfully")

	return nil
}

// newStager loads settings, persists the effective configuration and
// resolves the manifest.
func newStager(configPath string) (*stager, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err = config.Save(configPath, cfg); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	m, err := manifest.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	return &stager{cfg: cfg, m: m}, nil
}

// Run drives the fetch phase, the package phase and the report.
// Packaging starts only after every asset fetch has completed.
func (s *stager) Run(ctx context.Context) error {
	logger.InfoKV(ctx, "Caching CDN assets", "count", len(s.m.Assets))

	if err := fetcher.New(s.cfg).FetchAll(ctx, s.m.Assets); err != nil {
		return fmt.Errorf("fetch assets: %w", err)
	}

	plan := s.m.StagingPlan(s.cfg)

	logger.InfoKV(ctx, "Assembling output directory", "count", len(plan), "output_dir", s.cfg.OutputDir)

	if err := packager.Package(ctx, plan, s.cfg.OutputDir); err != nil {
		return fmt.Errorf("package files: %w", err)
	}

	if err := s.writeReport(ctx, plan); err != nil {
		return fmt.Errorf("write staging report: %w", err)
	}

	return nil
}

// writeReport records the inventory of staged artifacts next to them.
func (s *stager) writeReport(ctx context.Context, plan []manifest.CopyTask) error {
	rep := staging.NewReport(version.Short(), s.cfg.OutputDir, len(plan))

	for _, task := range plan {
		stagedPath := filepath.Join(s.cfg.OutputDir, task.Destination)

		info, err := os.Stat(stagedPath)
		if err != nil {
			return err
		}

		checksum, err := manifest.FileChecksum(stagedPath)
		if err != nil {
			return err
		}

		rep.Files = append(rep.Files, staging.FileEntry{
			Name:     task.Destination,
			Size:     info.Size(),
			Checksum: base64.StdEncoding.EncodeToString(checksum),
		})
	}

	reportPath := filepath.Join(s.cfg.OutputDir, report.DefaultFilename)
	if err := report.NewFileRepository(reportPath).Save(ctx, rep); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Saved staging report", "path", reportPath)

	return nil
}
