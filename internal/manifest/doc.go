// Package manifest defines the static task lists driving a staging run.
//
// A Manifest enumerates the CDN assets to cache (FetchTask) and the local
// application files to place into the output directory (CopyTask). The
// built-in manifest covers the pinned editor release plus the viewer files;
// a YAML manifest file can replace it. Destinations are validated to be
// unique and directory-local before any task executes.
package manifest
