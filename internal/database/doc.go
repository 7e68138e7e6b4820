// Package database provides SQLite-based storage for crawl results.
//
// ResultDB keeps one row per seed URL. Saving a seed again replaces the
// earlier result, so the store always holds the latest crawl of a site.
// The full ScrapeResult is stored as JSON next to the columns used for
// listing and searching.
//
// The driver is modernc.org/sqlite, a CGO-free implementation, so the
// binary cross-compiles without a C toolchain.
package database
