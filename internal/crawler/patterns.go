package crawler

import (
	"path"
	"strings"
)

// PathFilter decides which discovered paths may become candidates.
// Ignore patterns win over follow patterns; an empty follow list allows
// every path that is not ignored.
type PathFilter struct {
	Ignore []string
	Follow []string
}

// Allow reports whether p passes the filter.
func (f PathFilter) Allow(p string) bool {
	if p == "" {
		p = "/"
	}
	for _, pattern := range f.Ignore {
		if matchPattern(pattern, p) {
			return false
		}
	}
	if len(f.Follow) == 0 {
		return true
	}
	for _, pattern := range f.Follow {
		if matchPattern(pattern, p) {
			return true
		}
	}
	return false
}

// matchPattern matches a path against a glob pattern.
//
//   - "/blog/*" matches "/blog" and anything below it
//   - "*.php" matches the extension anywhere
//   - other patterns use path.Match on the whole path, and on the
//     last segment when the pattern has no slash
func matchPattern(pattern, p string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") && strings.HasSuffix(p, strings.TrimPrefix(pattern, "*")) {
		return true
	}

	if matched, err := path.Match(pattern, p); err == nil && matched {
		return true
	}

	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := path.Match(pattern, path.Base(p)); err == nil && matched {
			return true
		}
	}
	return false
}
