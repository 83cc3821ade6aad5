package stager

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/osinin/webstage/internal/logger"
)

const (
	// MarkerFilename marks that a staging run is in progress to avoid parallel execution.
	MarkerFilename = "webstage-marker.bin"

	// markerLifetime is the period after which a marker is considered stale.
	markerLifetime = 5 * time.Minute

	// stagerProcessPrefix identifies webstage processes during stale-marker recovery.
	stagerProcessPrefix = "webstage"
)

// IsStagerRunningNow checks presence of the run marker and attempts recovery
// when it looks stale. A stale marker is removed only after a process scan
// confirms no other webstage process is alive.
func IsStagerRunningNow(ctx context.Context) bool {
	fileInfo, err := os.Stat(MarkerFilename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The run marker is stale, checking for a live process")

		running, scanErr := anotherStagerAlive()
		if scanErr != nil || running {
			return true
		}

		if err = os.Remove(MarkerFilename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	logger.Infof(ctx, "Unable to read run marker: %v", err)

	return false
}

// writeMarker creates the run marker file.
func writeMarker() error {
	marker, err := os.Create(MarkerFilename)
	if err != nil {
		return err
	}

	return marker.Close()
}

// removeMarker drops the run marker if it is present.
func removeMarker() {
	if _, err := os.Stat(MarkerFilename); err == nil {
		_ = os.Remove(MarkerFilename)
	}
}

// anotherStagerAlive scans the process table for a webstage process other
// than the current one.
func anotherStagerAlive() (bool, error) {
	processList, err := ps.Processes()
	if err != nil {
		return false, err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if strings.HasPrefix(process.Executable(), stagerProcessPrefix) {
			return true, nil
		}
	}

	return false, nil
}
