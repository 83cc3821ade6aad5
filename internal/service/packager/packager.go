package packager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/osinin/webstage/internal/logger"
	"github.com/osinin/webstage/internal/manifest"
)

var (
	// ErrSourceMissing indicates a copy task whose source file does not exist.
	ErrSourceMissing = errors.New("source file is missing")
	// ErrWriteFailure indicates a filesystem error while producing output.
	ErrWriteFailure = errors.New("write to output failed")
	// ErrDirectoryCreate indicates the output directory could not be created.
	ErrDirectoryCreate = errors.New("output directory creation failed")
)

// defaultDirMode is the mode for created output directories.
const defaultDirMode os.FileMode = 0o755

// Package copies every task's source file into the output directory,
// creating it (and any parents) first. Copies always overwrite, so the
// output reflects the current source tree on every run. The first failure
// aborts the sequence; files copied before it remain in place.
func Package(ctx context.Context, tasks []manifest.CopyTask, outputDir string) error {
	if err := os.MkdirAll(outputDir, defaultDirMode); err != nil {
		return fmt.Errorf("%s: %v: %w", outputDir, err, ErrDirectoryCreate)
	}

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := copyFile(task, outputDir); err != nil {
			return err
		}

		logger.InfoKV(ctx, "Staged file", "source", task.Source, "destination", task.Destination)
	}

	return nil
}

// Clean removes the provided directory tree. A non-existent directory is
// not an error.
func Clean(ctx context.Context, dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}

	logger.InfoKV(ctx, "Removed directory", "path", dir)

	return nil
}

// copyFile copies a single task's bytes verbatim into the output directory.
func copyFile(task manifest.CopyTask, outputDir string) error {
	source, err := os.Open(filepath.Clean(task.Source))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", task.Source, ErrSourceMissing)
		}

		return fmt.Errorf("open %s: %w", task.Source, err)
	}

	defer func() {
		_ = source.Close()
	}()

	destination := filepath.Join(outputDir, task.Destination)

	if err = os.MkdirAll(filepath.Dir(destination), defaultDirMode); err != nil {
		return fmt.Errorf("%s: %v: %w", filepath.Dir(destination), err, ErrDirectoryCreate)
	}

	output, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", destination, err, ErrWriteFailure)
	}

	if _, err = io.Copy(output, source); err != nil {
		_ = output.Close()

		return fmt.Errorf("%s: %v: %w", destination, err, ErrWriteFailure)
	}

	if err = output.Close(); err != nil {
		return fmt.Errorf("%s: %v: %w", destination, err, ErrWriteFailure)
	}

	return nil
}
