// Package packager assembles the distributable output directory.
//
// It copies cached CDN assets and application files into one flat directory,
// always overwriting so the output reflects the current sources. A missing
// source aborts the run immediately; files staged before the failure are
// left in place.
package packager
