package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidSeed is returned when a seed URL cannot be turned into an
// absolute http(s) URL with a host.
var ErrInvalidSeed = errors.New("invalid seed url")

// ErrInvalidBudget is returned when the page budget is less than one.
var ErrInvalidBudget = errors.New("invalid page budget: must be at least 1")

// SeedRequest is the validated input of a crawl.
type SeedRequest struct {
	// URL is the absolute seed URL. A missing scheme defaults to https.
	URL string `json:"url"`

	// PageBudget is the total number of pages that may be fetched,
	// including the seed itself.
	PageBudget int `json:"page_budget"`
}

// NewSeedRequest validates raw and budget and returns a SeedRequest.
// "example.com" becomes "https://example.com".
func NewSeedRequest(raw string, budget int) (SeedRequest, error) {
	if budget < 1 {
		return SeedRequest{}, ErrInvalidBudget
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SeedRequest{}, fmt.Errorf("%w: empty", ErrInvalidSeed)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return SeedRequest{}, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return SeedRequest{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidSeed, u.Scheme)
	}
	if u.Host == "" {
		return SeedRequest{}, fmt.Errorf("%w: missing host", ErrInvalidSeed)
	}

	return SeedRequest{URL: u.String(), PageBudget: budget}, nil
}

// FetchedPage is a successfully fetched response.
// Only 2xx responses with an HTML content type are represented.
type FetchedPage struct {
	// URL is the final URL after redirects.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the media type of the response without parameters.
	ContentType string `json:"content_type"`

	// Headers contains the response headers.
	Headers map[string][]string `json:"headers,omitempty"`

	// Body is the raw response body, limited by the fetch client's
	// maximum body size.
	Body []byte `json:"-"`
}

// IsHTML reports whether the content type indicates HTML.
func (p *FetchedPage) IsHTML() bool {
	return IsHTMLContentType(p.ContentType)
}

// IsHTMLContentType reports whether a Content-Type value denotes an HTML
// document. Parameters such as charset are ignored.
func IsHTMLContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct == "text/html" || ct == "application/xhtml+xml"
}
