package cleaner

import (
	"fmt"
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"
)

// Rules is the immutable configuration of the noise filter. Build
// variants with With; never modify the slices of a shared value.
type Rules struct {
	// StripTags are removed everywhere before any other rule runs.
	StripTags []string

	// BodyStripTags are removed inside <body> only; <head> keeps its
	// <meta> and <link> elements for metadata extraction.
	BodyStripTags []string

	// StructuralSelectors match whole noise regions.
	StructuralSelectors []string

	// NoiseKeywords mark an element as noise when one of the tokens of
	// its class, id or role attribute starts with the keyword. Keywords
	// shorter than three letters must match a token exactly (or its
	// plural) so "ad" does not match "heading".
	NoiseKeywords []string

	// ContentSelectors identify content containers in priority order.
	// Nothing inside or around a content container is removed.
	ContentSelectors []string
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		StripTags:     []string{"script", "style", "noscript", "template"},
		BodyStripTags: []string{"meta", "link", "iframe", "svg", "object", "embed"},
		StructuralSelectors: []string{
			"nav", "header", "footer", "aside",
			"[role=navigation]", "[role=banner]", "[role=contentinfo]", "[role=complementary]",
			".sidebar", "#sidebar",
			".ad", ".ads", ".advert", ".advertisement", ".banner",
			".modal", ".popup", "[aria-modal=true]",
			".cookie-banner", ".cookie-consent", "#cookie-notice", ".consent", ".gdpr",
			".social-share", ".share-buttons", ".sharing",
			"#comments", ".comments", ".comment-section",
			"form[role=search]", "form.search-form", "form[action*=search]",
			"form[action*=login]", ".login-form",
			".breadcrumb", ".breadcrumbs",
		},
		NoiseKeywords: []string{
			"ad", "advert", "banner", "popup", "cookie", "consent",
			"nav", "menu", "header", "footer", "social", "share",
			"sidebar", "breadcrumb", "modal", "newsletter",
		},
		ContentSelectors: []string{
			"main", "[role=main]", "article", ".main-content", "#main-content",
			".content", "#content", ".entry-content", ".post",
		},
	}
}

// With returns a copy of r extended with extra selectors and keywords.
// Blank and duplicate entries are ignored.
func (r Rules) With(selectors, keywords []string) Rules {
	out := r.clone()
	out.StructuralSelectors = appendUnique(out.StructuralSelectors, selectors, false)
	out.NoiseKeywords = appendUnique(out.NoiseKeywords, keywords, true)
	return out
}

// Validate reports the first selector that does not parse.
func (r Rules) Validate() error {
	groups := [][]string{r.StripTags, r.BodyStripTags, r.StructuralSelectors, r.ContentSelectors}
	for _, group := range groups {
		for _, sel := range group {
			if _, err := cascadia.ParseGroup(sel); err != nil {
				return fmt.Errorf("invalid noise selector %q: %w", sel, err)
			}
		}
	}
	return nil
}

func (r Rules) clone() Rules {
	return Rules{
		StripTags:           slices.Clone(r.StripTags),
		BodyStripTags:       slices.Clone(r.BodyStripTags),
		StructuralSelectors: slices.Clone(r.StructuralSelectors),
		NoiseKeywords:       slices.Clone(r.NoiseKeywords),
		ContentSelectors:    slices.Clone(r.ContentSelectors),
	}
}

func appendUnique(dst, add []string, lower bool) []string {
	for _, v := range add {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" || slices.Contains(dst, v) {
			continue
		}
		dst = append(dst, v)
	}
	return dst
}

// matchesKeyword reports whether an attribute value carries a noise token.
func (r Rules) matchesKeyword(attr string) bool {
	if attr == "" {
		return false
	}
	tokens := strings.FieldsFunc(strings.ToLower(attr), func(c rune) bool {
		return (c < 'a' || c > 'z') && (c < '0' || c > '9')
	})
	for _, token := range tokens {
		for _, kw := range r.NoiseKeywords {
			if len(kw) < 3 {
				if token == kw || token == kw+"s" {
					return true
				}
				continue
			}
			if strings.HasPrefix(token, kw) {
				return true
			}
		}
	}
	return false
}
