// Package report persists the staging report produced at the end of a run.
//
// The report is stored as JSON next to the staged artifacts so external
// packaging steps can verify what was produced.
package report
