// Package stager orchestrates a full staging run.
//
// The pipeline has two phases with an explicit barrier between them: every
// CDN asset is cached first, then assets and application files are copied
// into the output directory and a JSON report of the result is written. A
// run marker file keeps concurrent staging runs from stepping on each other.
package stager
