package classify

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/nao1215/sitescout/internal/model"
)

// Keywords are the signals for one label.
type Keywords struct {
	// URLPatterns are regular expressions matched against the lowercased
	// URL path.
	URLPatterns []string

	// LinkText are substrings matched against the lowercased anchor text.
	LinkText []string

	// ContentIndicators are substrings matched against the lowercased
	// page content.
	ContentIndicators []string
}

// Rules maps every classifier label to its keywords. Treat a Rules value
// as immutable once it is handed to New.
type Rules map[model.Label]Keywords

// DefaultRules returns the built-in keyword tables.
func DefaultRules() Rules {
	return Rules{
		model.LabelAbout: {
			URLPatterns: []string{
				`/about`, `/about-us`, `/about-company`, `/our-story`,
				`/who-we-are`, `/mission`, `/vision`, `/values`,
				`/company`, `/overview`, `/history`,
			},
			LinkText: []string{
				"about", "about us", "about company", "our story",
				"who we are", "mission", "vision", "company", "overview",
			},
			ContentIndicators: []string{
				"founded", "established", "our mission", "our vision",
				"company history", "who we are", "what we do",
			},
		},
		model.LabelProducts: {
			URLPatterns: []string{
				`/products`, `/services`, `/solutions`, `/offerings`,
				`/platform`, `/technology`, `/features`, `/what-we-do`,
				`/portfolio`, `/catalog`,
			},
			LinkText: []string{
				"products", "services", "solutions", "offerings",
				"platform", "technology", "features", "what we do",
				"portfolio", "catalog",
			},
			ContentIndicators: []string{
				"our products", "our services", "what we offer",
				"solutions", "features", "capabilities",
			},
		},
		model.LabelTeam: {
			URLPatterns: []string{
				`/team`, `/our-team`, `/leadership`, `/management`,
				`/founders`, `/people`, `/board`, `/executives`,
				`/staff`, `/directors`,
			},
			LinkText: []string{
				"team", "our team", "leadership", "management",
				"founders", "people", "board", "executives", "staff",
			},
			ContentIndicators: []string{
				"our team", "leadership team", "founders", "executives",
				"management", "board of directors",
			},
		},
		model.LabelContact: {
			URLPatterns: []string{
				`/contact`, `/contact-us`, `/get-in-touch`, `/reach-us`,
				`/locations`, `/offices`, `/support`, `/help`,
			},
			LinkText: []string{
				"contact", "contact us", "get in touch", "reach us",
				"locations", "offices", "support", "help",
			},
			ContentIndicators: []string{
				"contact us", "get in touch", "phone", "email",
				"address", "location", "office",
			},
		},
		model.LabelNews: {
			URLPatterns: []string{
				`/news`, `/blog`, `/press`, `/media`, `/updates`,
				`/insights`, `/resources`, `/articles`, `/announcements`,
			},
			LinkText: []string{
				"news", "blog", "press", "media", "updates",
				"insights", "resources", "articles",
			},
			ContentIndicators: []string{
				"latest news", "blog posts", "press releases",
				"media coverage", "announcements",
			},
		},
		model.LabelCareers: {
			URLPatterns: []string{
				`/careers`, `/jobs`, `/join-us`, `/work-with-us`,
				`/opportunities`, `/positions`, `/hiring`,
			},
			LinkText: []string{
				"careers", "jobs", "join us", "work with us",
				"opportunities", "hiring",
			},
			ContentIndicators: []string{
				"join our team", "career opportunities", "job openings",
				"work with us", "we are hiring",
			},
		},
	}
}

// With returns a copy of r where label carries additional URL patterns
// and link texts. The receiver is not modified.
func (r Rules) With(label model.Label, urlPatterns, linkText []string) Rules {
	out := make(Rules, len(r)+1)
	for l, kw := range r {
		out[l] = Keywords{
			URLPatterns:       slices.Clone(kw.URLPatterns),
			LinkText:          slices.Clone(kw.LinkText),
			ContentIndicators: slices.Clone(kw.ContentIndicators),
		}
	}
	kw := out[label]
	kw.URLPatterns = append(kw.URLPatterns, urlPatterns...)
	kw.LinkText = append(kw.LinkText, linkText...)
	out[label] = kw
	return out
}

// Validate reports the first unknown label or URL pattern that does not
// compile.
func (r Rules) Validate() error {
	_, err := r.compile()
	return err
}

// compiledKeywords is Keywords with the URL patterns compiled.
type compiledKeywords struct {
	label             model.Label
	urlPatterns       []*regexp.Regexp
	linkText          []string
	contentIndicators []string
}

// compile returns the rules in canonical label order.
func (r Rules) compile() ([]compiledKeywords, error) {
	for l := range r {
		if !slices.Contains(model.AllLabels(), l) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, l)
		}
	}

	out := make([]compiledKeywords, 0, len(r))
	for _, label := range model.AllLabels() {
		kw, ok := r[label]
		if !ok {
			continue
		}
		ck := compiledKeywords{
			label:             label,
			linkText:          kw.LinkText,
			contentIndicators: kw.ContentIndicators,
		}
		for _, p := range kw.URLPatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("invalid url pattern %q for %s: %w", p, label, err)
			}
			ck.urlPatterns = append(ck.urlPatterns, re)
		}
		out = append(out, ck)
	}
	return out, nil
}
