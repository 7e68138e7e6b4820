package extract

import (
	"errors"
	"fmt"
)

// ErrPanic is wrapped by an ExtractionError recovered from a panic.
var ErrPanic = errors.New("extractor panicked")

// ExtractionError reports a failed entity extractor. The page keeps the
// results of the other extractors.
type ExtractionError struct {
	// Extractor is the extractor name (contact, team, products, news).
	Extractor string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s extraction failed: %v", e.Extractor, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// guard runs fn and converts a returned error or a panic into an
// *ExtractionError. On failure the zero value of T is returned.
func guard[T any](name string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = &ExtractionError{Extractor: name, Err: fmt.Errorf("%w: %v", ErrPanic, r)}
		}
	}()

	result, err = fn()
	if err != nil {
		var zero T
		return zero, &ExtractionError{Extractor: name, Err: err}
	}
	return result, nil
}
