package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/sitescout/internal/cleaner"
	"github.com/nao1215/sitescout/internal/model"
)

// Anchor text limits.
const (
	minAnchorText  = 2
	maxContextText = 100
	maxNavItemText = 40
)

// genericAnchors carry no information about the target page.
var genericAnchors = map[string]bool{
	"home": true, "here": true, "click": true, "click here": true,
	"more": true, "read more": true, "»": true, "›": true,
}

// pageKeyword is a page-type word and the slugs synthesized for it.
type pageKeyword struct {
	word    string
	pattern *regexp.Regexp
	slugs   []string
}

func newPageKeyword(word string, slugs ...string) pageKeyword {
	return pageKeyword{
		word:    word,
		pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`),
		slugs:   slugs,
	}
}

// pageKeywords drive path guessing for sites whose menus are not plain
// anchors.
var pageKeywords = []pageKeyword{
	newPageKeyword("about", "about", "about-us"),
	newPageKeyword("team", "team", "our-team"),
	newPageKeyword("leadership", "leadership"),
	newPageKeyword("products", "products"),
	newPageKeyword("services", "services"),
	newPageKeyword("solutions", "solutions"),
	newPageKeyword("contact", "contact", "contact-us"),
	newPageKeyword("news", "news"),
	newPageKeyword("blog", "blog"),
	newPageKeyword("press", "press"),
	newPageKeyword("careers", "careers"),
	newPageKeyword("jobs", "jobs"),
}

// navContainers hold site menus.
const navContainers = "nav, [role=navigation], header, .menu, .nav, .navbar, #menu, #nav"

// Discoverer finds internal link candidates on a page.
type Discoverer struct {
	// base resolves relative references; it is the page URL.
	base *url.URL
	// origin is scheme://host of the site, used for synthesized paths.
	origin string
	// self is the key of the page itself.
	self   string
	filter PathFilter
}

// DiscoverOption configures a Discoverer.
type DiscoverOption func(*Discoverer)

// WithPathFilter restricts candidates by path patterns.
func WithPathFilter(f PathFilter) DiscoverOption {
	return func(d *Discoverer) {
		d.filter = f
	}
}

// NewDiscoverer creates a Discoverer for the page at pageURL.
func NewDiscoverer(pageURL string, opts ...DiscoverOption) (*Discoverer, error) {
	c, err := Canonicalize(pageURL, "")
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}
	base := c.u
	d := &Discoverer{
		base:   base,
		origin: base.Scheme + "://" + base.Host,
		self:   c.Key(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Discover returns the deduplicated candidates of doc in discovery
// order: anchors, data-href elements, menu items without anchors and
// finally page-type keywords in the visible text.
func (d *Discoverer) Discover(doc *cleaner.Document) []model.LinkCandidate {
	var out []model.LinkCandidate
	out = append(out, d.anchors(doc.Raw.Selection)...)
	out = append(out, d.dataHrefs(doc.Raw.Selection)...)
	out = append(out, d.navItems(doc.Raw.Selection)...)
	out = append(out, d.keywords(doc.Raw.Selection)...)
	return Dedupe(out)
}

// Discover is a shortcut for NewDiscoverer(pageURL).Discover(doc).
func Discover(doc *cleaner.Document, pageURL string) ([]model.LinkCandidate, error) {
	d, err := NewDiscoverer(pageURL)
	if err != nil {
		return nil, err
	}
	return d.Discover(doc), nil
}

func (d *Discoverer) anchors(root *goquery.Selection) []model.LinkCandidate {
	var out []model.LinkCandidate
	root.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		target, ok := d.accept(a.AttrOr("href", ""))
		if !ok {
			return
		}

		text := squash(a.Text())
		if text == "" {
			text = squash(a.AttrOr("aria-label", a.AttrOr("title", "")))
		}

		c := model.LinkCandidate{TargetURL: target, Source: model.SourceAnchor}
		switch {
		case text == "":
			c.ContextText = ancestorText(a)
		case isGenericAnchor(text):
		default:
			c.AnchorText = text
		}
		out = append(out, c)
	})
	return out
}

func (d *Discoverer) dataHrefs(root *goquery.Selection) []model.LinkCandidate {
	var out []model.LinkCandidate
	root.Find("[data-href]").Each(func(_ int, s *goquery.Selection) {
		target, ok := d.accept(s.AttrOr("data-href", ""))
		if !ok {
			return
		}
		c := model.LinkCandidate{TargetURL: target, Source: model.SourceDataHref}
		if text := squash(s.Text()); text != "" && !isGenericAnchor(text) {
			c.AnchorText = truncate(text, maxContextText)
		}
		out = append(out, c)
	})
	return out
}

// navItems synthesizes candidates from menu entries that are not
// anchors, such as buttons wired up by JavaScript.
func (d *Discoverer) navItems(root *goquery.Selection) []model.LinkCandidate {
	var out []model.LinkCandidate
	root.Find(navContainers).Find("button, div, span, li").Each(func(_ int, s *goquery.Selection) {
		if s.Find("a").Length() > 0 || s.Closest("a").Length() > 0 {
			return
		}
		text := squash(s.Text())
		if text == "" || runeLen(text) > maxNavItemText {
			return
		}
		lower := strings.ToLower(text)
		for _, kw := range pageKeywords {
			if kw.pattern.MatchString(lower) {
				out = append(out, d.synthesize(kw, text, model.SourceNav)...)
			}
		}
	})
	return out
}

// keywords synthesizes candidates for every page-type word that appears
// in the visible text.
func (d *Discoverer) keywords(root *goquery.Selection) []model.LinkCandidate {
	lower := strings.ToLower(cleaner.Text(root.Find("body")))
	var out []model.LinkCandidate
	for _, kw := range pageKeywords {
		if kw.pattern.MatchString(lower) {
			out = append(out, d.synthesize(kw, kw.word, model.SourceKeyword)...)
		}
	}
	return out
}

func (d *Discoverer) synthesize(kw pageKeyword, context string, source model.LinkSource) []model.LinkCandidate {
	out := make([]model.LinkCandidate, 0, len(kw.slugs))
	for _, slug := range kw.slugs {
		target, ok := d.accept(d.origin + "/" + slug)
		if !ok {
			continue
		}
		out = append(out, model.LinkCandidate{TargetURL: target, ContextText: context, Source: source})
	}
	return out
}

// accept canonicalizes href and reports whether it is an internal
// content candidate.
func (d *Discoverer) accept(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}

	c, err := Canonicalize(href, d.base.String())
	if err != nil {
		return "", false
	}
	if !sameSite(c.Host(), d.base.Hostname()) || c.Key() == d.self || IsHomepage(c) {
		return "", false
	}
	if ShouldSkip(c.String()) || !d.filter.Allow(c.Path()) {
		return "", false
	}
	return c.String(), true
}

// ancestorText returns the text of the nearest ancestor that has any,
// stopping at <body>.
func ancestorText(s *goquery.Selection) string {
	for p := s.Parent(); p.Length() > 0; p = p.Parent() {
		if goquery.NodeName(p) == "body" {
			break
		}
		if text := squash(p.Text()); text != "" {
			return truncate(text, maxContextText)
		}
	}
	return ""
}

func isGenericAnchor(text string) bool {
	return runeLen(text) < minAnchorText || genericAnchors[strings.ToLower(text)]
}

var whitespace = regexp.MustCompile(`\s+`)

func squash(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func runeLen(s string) int {
	return len([]rune(s))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
