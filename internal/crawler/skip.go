package crawler

import (
	"net/url"
	"path"
	"strings"
)

// skipExtensions are file types that never hold page content.
var skipExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".zip": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".ico": true,
	".webp": true, ".css": true, ".js": true, ".xml": true, ".json": true, ".rss": true,
	".mp4": true, ".mp3": true,
}

// skipPaths are account, commerce and legal areas.
var skipPaths = []string{
	"/login", "/signin", "/signup", "/register", "/cart", "/checkout",
	"/privacy", "/terms", "/cookie", "/legal", "/wp-admin", "/admin",
	"/dashboard", "/account",
}

// skipDomains are external platforms linked from most sites.
var skipDomains = []string{
	"facebook.com", "twitter.com", "x.com", "linkedin.com", "instagram.com",
	"youtube.com", "google.com", "github.com", "tiktok.com",
}

// homepagePaths are the paths that address the seed page itself.
var homepagePaths = map[string]bool{
	"/": true, "/index.html": true, "/index.htm": true, "/index.php": true, "/home": true,
}

// ShouldSkip reports whether rawURL can never be a content candidate:
// a non-HTML file, an account or legal path, or a known external
// platform. Unparsable URLs are skipped.
func ShouldSkip(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return true
	}

	p := strings.ToLower(u.Path)
	if skipExtensions[path.Ext(p)] {
		return true
	}
	for _, sp := range skipPaths {
		if strings.Contains(p, sp) {
			return true
		}
	}
	return isSkipDomain(strings.ToLower(u.Hostname()))
}

func isSkipDomain(host string) bool {
	for _, d := range skipDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// IsHomepage reports whether c addresses the site root.
func IsHomepage(c CanonicalURL) bool {
	return homepagePaths[strings.ToLower(c.Path())]
}

// sameSite reports whether host belongs to the crawled site. A leading
// "www." is ignored on both sides.
func sameSite(host, siteHost string) bool {
	return strings.EqualFold(strings.TrimPrefix(strings.ToLower(host), "www."),
		strings.TrimPrefix(strings.ToLower(siteHost), "www."))
}
