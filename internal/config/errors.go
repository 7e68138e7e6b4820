package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is.
var (
	// ErrNoTarget is returned when no seed URL is given.
	ErrNoTarget = errors.New("no target specified: provide at least one seed url")

	// ErrInvalidTimeout is returned when a request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidPageBudget is returned when a page budget is outside
	// 1..MaxPageBudget.
	ErrInvalidPageBudget = errors.New("invalid page budget: must be between 1 and 50")

	// ErrInvalidConcurrency is returned when the verification pool size
	// is outside 1..8.
	ErrInvalidConcurrency = errors.New("invalid verify concurrency: must be between 1 and 8")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxAttempts is returned when fewer than one attempt is allowed.
	ErrInvalidMaxAttempts = errors.New("invalid max attempts: must be at least 1")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidDeadline is returned when the crawl deadline is negative.
	ErrInvalidDeadline = errors.New("invalid deadline: must be non-negative")

	// ErrInvalidKeyTypes is returned when key types contain an unknown
	// or repeated label.
	ErrInvalidKeyTypes = errors.New("invalid key types: use about, team, products, contact, news or careers once each")
)
