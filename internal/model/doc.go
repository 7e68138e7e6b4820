// Package model defines the core data structures shared by the sitescout
// crawl pipeline.
//
// This package contains the following main types:
//   - SeedRequest: The validated entry point of a crawl
//   - FetchedPage: A successfully fetched HTML response
//   - LinkCandidate: A discovered internal link plus its anchor context
//   - Label: One of the recognised page types (about, team, ...)
//   - ExtractionResult: Everything extracted from one fetched page
//   - ScrapeResult: The aggregated output returned to callers
//   - CrawlSession: Mutable state threaded through pipeline steps
//
// Models live in their own package because crawler, classify, extract,
// pipeline, database and report all exchange them.
package model
