// Package staging holds the domain model describing a completed staging run.
package staging
