// Package pipeline runs a crawl as a sequence of steps over a
// model.CrawlSession:
//
//	seed -> verify -> classify -> prioritize -> fetch_pages -> aggregate
//
// The seed step fetches the seed page, extracts its generic content and
// discovers its links. A seed failure is the only fatal error. Every
// later failure degrades the result: a dead link is dropped, a page that
// cannot be fetched leaves its slot empty, and a failing extractor only
// loses its own entities. Aggregation is a finally step, so a crawl
// interrupted by its deadline still returns a partial result.
//
// Crawl is the entry point for a single seed; BatchProcessor crawls
// several seeds concurrently with errgroup.
package pipeline
