// Package fetcher caches CDN assets on the local filesystem.
//
// Each asset is fetched only when its destination file is absent, downloaded
// with a bounded timeout, and applied atomically so failed retrievals never
// leave partial files behind. Independent assets are fetched through a
// bounded worker pool.
package fetcher
