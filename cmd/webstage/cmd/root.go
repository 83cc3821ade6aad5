package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/osinin/webstage/internal/config"
	"github.com/osinin/webstage/internal/logger"
	"github.com/osinin/webstage/internal/service/fetcher"
	"github.com/osinin/webstage/internal/service/packager"
	"github.com/osinin/webstage/internal/service/stager"
	"github.com/osinin/webstage/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// logLevel selects the minimum level for console output.
	logLevel string

	// cleanCache also removes the asset cache during `clean`.
	cleanCache bool

	// rootCmd represents the base command for staging web assets.
	rootCmd = &cobra.Command{
		Use:   "webstage",
		Short: "Stage CDN editor assets and viewer files for distribution",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}
		},
	}

	// fetchCmd ensures every CDN asset is present in the local cache.
	fetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Download missing CDN assets into the local cache",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := newSignalContext()
			defer stop()

			return fetcher.Run(ctx, &fetcher.Options{ConfigPath: configPath})
		},
	}

	// packageCmd assembles the output directory from cached assets and app files.
	packageCmd = &cobra.Command{
		Use:   "package",
		Short: "Assemble the output directory from cached assets and app files",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := newSignalContext()
			defer stop()

			return packager.Run(ctx, &packager.Options{ConfigPath: configPath})
		},
	}

	// stageCmd runs the full pipeline: fetch, package, report.
	stageCmd = &cobra.Command{
		Use:   "stage",
		Short: "Fetch assets and assemble the output directory in one run",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := newSignalContext()
			defer stop()

			return stager.Run(ctx, &stager.Options{ConfigPath: configPath})
		},
	}

	// cleanCmd removes build output and optionally the asset cache.
	cleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Remove the output directory (and optionally the asset cache)",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := newSignalContext()
			defer stop()

			options := &packager.CleanOptions{
				ConfigPath:   configPath,
				IncludeCache: cleanCache,
			}

			return packager.RunClean(ctx, options)
		},
	}
)

// newSignalContext sets up graceful shutdown handling.
func newSignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// Execute runs the webstage CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	cleanCmd.Flags().BoolVar(&cleanCache, "cache", false, "also remove the asset cache directory")

	rootCmd.AddCommand(fetchCmd, packageCmd, stageCmd, cleanCmd)
}
