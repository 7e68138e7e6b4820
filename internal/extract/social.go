package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"

	"github.com/nao1215/sitescout/internal/cleaner"
)

// socialPlatform maps a platform name to its registrable domains.
type socialPlatform struct {
	name    string
	domains []string
}

var socialPlatforms = []socialPlatform{
	{name: "twitter", domains: []string{"twitter.com", "x.com"}},
	{name: "linkedin", domains: []string{"linkedin.com"}},
	{name: "facebook", domains: []string{"facebook.com"}},
	{name: "instagram", domains: []string{"instagram.com"}},
	{name: "github", domains: []string{"github.com"}},
	{name: "youtube", domains: []string{"youtube.com"}},
	{name: "tiktok", domains: []string{"tiktok.com"}},
	{name: "discord", domains: []string{"discord.com", "discord.gg"}},
}

// SocialLinks returns the social profile links of doc keyed by platform.
// Links are read from the raw view so footer icons are included. When
// a platform is linked more than once the last link wins. It returns
// nil when no profile is linked.
func SocialLinks(doc *cleaner.Document) map[string]string {
	var links map[string]string
	doc.Raw.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, platform, ok := socialLink(s.AttrOr("href", ""))
		if !ok {
			return
		}
		if links == nil {
			links = make(map[string]string)
		}
		links[platform] = href
	})
	return links
}

// socialLink normalizes href to an absolute https URL and returns the
// platform it belongs to.
func socialLink(href string) (string, string, bool) {
	href = strings.ToLower(strings.TrimSpace(href))
	switch {
	case strings.HasPrefix(href, "//"):
		href = "https:" + href
	case strings.HasPrefix(href, "http://"):
		href = "https://" + strings.TrimPrefix(href, "http://")
	case !strings.HasPrefix(href, "https://"):
		return "", "", false
	}

	u, err := url.Parse(href)
	if err != nil || u.Hostname() == "" {
		return "", "", false
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(u.Hostname())
	if err != nil {
		return "", "", false
	}

	for _, p := range socialPlatforms {
		for _, d := range p.domains {
			if domain == d {
				return href, p.name, true
			}
		}
	}
	return "", "", false
}
