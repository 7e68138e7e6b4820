// Package monitoring exposes crawl telemetry as Prometheus metrics.
//
// Metrics implements both fetch.Recorder and pipeline.Recorder, so a
// single value passed to the fetch client and the crawler covers the
// whole crawl. Metrics are registered on a caller-supplied registry.
package monitoring
