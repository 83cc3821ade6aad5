package staging

import "time"

// Report is the inventory of one completed staging run.
type Report struct {
	// Version is the webstage build that produced the output.
	Version string `json:"version"`
	// GeneratedAt is when the staging run finished.
	GeneratedAt time.Time `json:"generated_at"`
	// OutputDir is the directory the artifacts were staged into.
	OutputDir string `json:"output_dir"`
	// Files lists every staged artifact.
	Files []FileEntry `json:"files"`
}

// FileEntry describes one staged artifact.
type FileEntry struct {
	// Name is the output-relative path of the artifact.
	Name string `json:"name"`
	// Size is the artifact size in bytes.
	Size int64 `json:"size"`
	// Checksum is the base64-encoded SHA-512 of the artifact contents.
	Checksum string `json:"checksum"`
}

// NewReport returns a report stamped with the current time.
func NewReport(version, outputDir string, capacity int) *Report {
	return &Report{
		Version:     version,
		GeneratedAt: time.Now().UTC(),
		OutputDir:   outputDir,
		Files:       make([]FileEntry, 0, capacity),
	}
}
