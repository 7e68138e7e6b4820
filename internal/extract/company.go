package extract

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/sitescout/internal/cleaner"
)

// maxCompanyNameLength rejects longer candidates as marketing copy.
const maxCompanyNameLength = 60

// titleSeparators are tried in order; only the first one present splits
// the title.
var titleSeparators = []string{"|", "-", "–", ":", "•"}

// marketingKeywords are substring-matched against a lowercased candidate.
// Two or more hits mark the candidate as a tagline.
var marketingKeywords = []string{
	// actions
	"get", "start", "try", "buy", "learn", "discover", "create", "build", "make",
	"grow", "boost", "increase", "improve", "transform", "convert", "deliver",
	"drive", "scale", "automate", "connect", "helps", "help",
	// descriptive
	"best", "top", "leading", "ultimate", "perfect", "easy", "simple", "fast",
	"smart", "powerful", "advanced", "revolutionary", "cutting-edge",
	// tagline fragments
	"that", "which", "for your", "your business", "solution", "platform",
	"software", "service", "tool", "system", "technology",
}

var taglinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bthat\s+\w+`),
	regexp.MustCompile(`\bfor\s+\w+`),
	regexp.MustCompile(`\bto\s+\w+`),
	regexp.MustCompile(`\byour\s+\w+`),
	regexp.MustCompile(`\bhelps?\s+\w+`),
}

// CompanyName returns the company name advertised by doc, or a name
// derived from the domain of seedURL when every candidate from the
// title, og:site_name and application-name looks like marketing copy.
func CompanyName(doc *cleaner.Document, seedURL string) string {
	var candidates []string

	if title := squash(doc.Title()); title != "" {
		for _, sep := range titleSeparators {
			if !strings.Contains(title, sep) {
				continue
			}
			for _, part := range strings.Split(title, sep) {
				part = strings.TrimSpace(part)
				if part != "" && !LooksLikeMarketing(part) {
					candidates = append(candidates, part)
				}
			}
			break
		}
		if len(candidates) == 0 && !LooksLikeMarketing(title) {
			candidates = append(candidates, title)
		}
	}

	for _, key := range []string{"og:site_name", "application-name"} {
		if name := squash(doc.Meta(key)); name != "" && !LooksLikeMarketing(name) {
			candidates = append(candidates, name)
		}
	}

	if len(candidates) > 0 {
		return candidates[0]
	}
	return NameFromDomain(seedURL)
}

// LooksLikeMarketing reports whether text reads like a tagline rather
// than a name.
func LooksLikeMarketing(text string) bool {
	if text == "" || runeLen(text) > maxCompanyNameLength {
		return true
	}

	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range marketingKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	if hits >= 2 {
		return true
	}

	for _, p := range taglinePatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// NameFromDomain turns "https://www.my-company.io" into "My Company".
func NameFromDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	label, _, _ := strings.Cut(host, ".")
	label = strings.NewReplacer("-", " ", "_", " ").Replace(label)

	caser := cases.Title(language.Und)
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
