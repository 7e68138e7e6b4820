package crawler

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"

	"github.com/nao1215/sitescout/internal/model"
)

// ErrNotHTTP is returned for references that do not resolve to an
// absolute http(s) URL.
var ErrNotHTTP = errors.New("not an absolute http(s) url")

// CanonicalURL is a normalized absolute URL. Two URLs are the same page
// iff their keys are equal.
type CanonicalURL struct {
	u *url.URL
}

// String returns the normalized URL, query included.
func (c CanonicalURL) String() string {
	if c.u == nil {
		return ""
	}
	return c.u.String()
}

// Key returns the identity of the page: host plus path without the
// trailing slash. Query strings and fragments are not part of it.
func (c CanonicalURL) Key() string {
	if c.u == nil {
		return ""
	}
	return c.u.Host + strings.TrimSuffix(c.u.EscapedPath(), "/")
}

// Host returns the lowercased host without port.
func (c CanonicalURL) Host() string {
	if c.u == nil {
		return ""
	}
	return c.u.Hostname()
}

// Path returns the normalized path.
func (c CanonicalURL) Path() string {
	if c.u == nil {
		return ""
	}
	return c.u.Path
}

// Canonicalize resolves raw against base and normalizes the result:
// the fragment is removed, scheme and host are lowercased, default
// ports are dropped and a single trailing slash is stripped from
// non-root paths. A path ending in an empty segment ("//") is kept as
// is. Percent-encoded octets keep their encoding, so %2F is not a
// path separator. base may be empty when raw is absolute. Canonicalize
// is idempotent.
func Canonicalize(raw, base string) (CanonicalURL, error) {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return CanonicalURL{}, fmt.Errorf("invalid url %q: %w", raw, err)
	}

	u := ref
	if base != "" {
		b, err := url.Parse(base)
		if err != nil {
			return CanonicalURL{}, fmt.Errorf("invalid base url %q: %w", base, err)
		}
		u = b.ResolveReference(ref)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return CanonicalURL{}, fmt.Errorf("%w: %q", ErrNotHTTP, raw)
	}

	u.Host = normalizeHost(u.Scheme, u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil

	escaped := upperEscapes(u.EscapedPath())
	if escaped == "" {
		escaped = "/"
	}
	if len(escaped) > 1 && strings.HasSuffix(escaped, "/") && !strings.HasSuffix(escaped, "//") {
		escaped = escaped[:len(escaped)-1]
	}
	path, err := url.PathUnescape(escaped)
	if err != nil {
		return CanonicalURL{}, fmt.Errorf("invalid url path %q: %w", raw, err)
	}
	u.Path = path
	u.RawPath = escaped

	return CanonicalURL{u: u}, nil
}

// upperEscapes uppercases the hex digits of percent-encoded octets.
func upperEscapes(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	b := []byte(s)
	for i := 0; i+2 < len(b); i++ {
		if b[i] == '%' {
			b[i+1] = upperHex(b[i+1])
			b[i+2] = upperHex(b[i+2])
			i += 2
		}
	}
	return string(b)
}

func upperHex(c byte) byte {
	if c >= 'a' && c <= 'f' {
		return c - ('a' - 'A')
	}
	return c
}

// normalizeHost lowercases host and drops the scheme's default port.
func normalizeHost(scheme, host string) string {
	host = strings.ToLower(host)
	h, port, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		if strings.Contains(h, ":") {
			return "[" + h + "]"
		}
		return h
	}
	return host
}

// Key returns the canonical key of raw, or "" when it is not a valid
// absolute http(s) URL.
func Key(raw string) string {
	c, err := Canonicalize(raw, "")
	if err != nil {
		return ""
	}
	return c.Key()
}

// Dedupe keeps the first candidate of each canonical URL, preserving
// order. Candidates that do not canonicalize are dropped.
func Dedupe(candidates []model.LinkCandidate) []model.LinkCandidate {
	seen := NewSeen()
	out := make([]model.LinkCandidate, 0, len(candidates))
	for _, c := range candidates {
		if seen.Add(c.TargetURL) {
			out = append(out, c)
		}
	}
	return out
}

// Seen is a concurrency-safe set of canonical URLs.
type Seen struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewSeen returns an empty set.
func NewSeen() *Seen {
	return &Seen{keys: make(map[string]struct{})}
}

// Add records raw and reports whether it was not present before.
// Invalid URLs are never added.
func (s *Seen) Add(raw string) bool {
	key := Key(raw)
	if key == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Has reports whether an equivalent URL was recorded.
func (s *Seen) Has(raw string) bool {
	key := Key(raw)
	if key == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of recorded URLs.
func (s *Seen) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
