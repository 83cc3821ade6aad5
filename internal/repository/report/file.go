package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/osinin/webstage/internal/config"
	"github.com/osinin/webstage/internal/domain/staging"
)

// DefaultFilename is the report filename written into the output directory.
const DefaultFilename = "webstage-report.json"

// ErrNotFound is returned when the report file does not exist yet.
var ErrNotFound = errors.New("report not found")

// Repository defines persistence operations for staging reports.
type Repository interface {
	Load(ctx context.Context) (*staging.Report, error)
	Save(ctx context.Context, report *staging.Report) error
}

// FileRepository persists the staging report to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON report file.
	path string
	// mu protects concurrent access to the report file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the report from disk.
func (r *FileRepository) Load(_ context.Context) (*staging.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read report file: %w", err)
	}

	var rep staging.Report
	if err = json.Unmarshal(contents, &rep); err != nil {
		return nil, fmt.Errorf("decode report file: %w", err)
	}

	return &rep, nil
}

// Save writes the report to disk using an indented JSON representation.
func (r *FileRepository) Save(_ context.Context, report *staging.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}

	return nil
}
