package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies why a fetch failed.
type Kind int

const (
	// KindNetwork covers DNS, connection, TLS and timeout failures.
	KindNetwork Kind = iota
	// KindStatus is a non-2xx response after retries.
	KindStatus
	// KindContentType is a 2xx response that is not HTML.
	KindContentType
	// KindRobots is a URL disallowed by robots.txt.
	KindRobots
)

// String returns the kind name used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindContentType:
		return "content_type"
	case KindRobots:
		return "robots"
	default:
		return "unknown"
	}
}

// Sentinel errors matched by FetchError.Is.
var (
	ErrNetwork     = errors.New("network error")
	ErrStatus      = errors.New("unexpected status")
	ErrNotHTML     = errors.New("content is not html")
	ErrDisallowed  = errors.New("disallowed by robots.txt")
	errUnknownKind = errors.New("fetch failed")
)

// FetchError describes a failed fetch. It is non-fatal for every page
// except the seed.
type FetchError struct {
	URL         string
	Kind        Kind
	StatusCode  int
	ContentType string
	Err         error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	case KindContentType:
		return fmt.Sprintf("fetch %s: content type %q is not html", e.URL, e.ContentType)
	case KindRobots:
		return fmt.Sprintf("fetch %s: disallowed by robots.txt", e.URL)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

// Unwrap returns the underlying transport error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error for the failure kind.
func (e *FetchError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *FetchError) sentinel() error {
	switch e.Kind {
	case KindNetwork:
		return ErrNetwork
	case KindStatus:
		return ErrStatus
	case KindContentType:
		return ErrNotHTML
	case KindRobots:
		return ErrDisallowed
	default:
		return errUnknownKind
	}
}
