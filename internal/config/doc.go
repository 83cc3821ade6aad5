// Package config defines staging settings used by the webstage subcommands
// and provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the CDN base URL, the application, cache and output
// directories, and the download timeout and concurrency knobs.
package config
