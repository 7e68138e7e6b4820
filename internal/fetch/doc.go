// Package fetch implements the HTTP client used by the crawl pipeline.
//
// The Client sends a fixed identity header, retries 5xx and 429 responses
// with exponential backoff (RetryTransport), returns only 2xx HTML
// documents and offers a cheap existence check (HEAD, falling back to
// GET). Politeness between content fetches is expressed by the Limiter
// interface, and an optional RobotsChecker honours robots.txt.
//
// Failures are reported as *FetchError values whose Kind tells network,
// status, content-type and robots failures apart:
//
//	page, err := client.Fetch(ctx, "https://acme.io/about", 15*time.Second)
//	if errors.Is(err, fetch.ErrNotHTML) {
//		// skip
//	}
package fetch
