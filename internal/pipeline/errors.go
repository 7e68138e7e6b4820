package pipeline

import (
	"errors"
	"fmt"
)

// ErrSeedFetch is matched by every SeedError.
var ErrSeedFetch = errors.New("seed page could not be fetched")

// SeedError reports that the seed page could not be fetched or parsed.
// It is the only error that makes a crawl fail.
type SeedError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *SeedError) Error() string {
	return fmt.Sprintf("seed %s: %v", e.URL, e.Err)
}

// Unwrap returns ErrSeedFetch and the underlying error.
func (e *SeedError) Unwrap() []error {
	return []error{ErrSeedFetch, e.Err}
}

// Fatal stops the pipeline regardless of its error policy.
func (e *SeedError) Fatal() bool {
	return true
}
