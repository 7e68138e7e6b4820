package classify

import (
	"net/url"
	"strings"

	"github.com/nao1215/sitescout/internal/model"
)

// Signal weights. A label is assigned when its score reaches Threshold,
// so a URL match alone or anchor text alone is enough, while page
// content only ever supports another signal.
const (
	URLWeight     = 4
	AnchorWeight  = 2
	ContentWeight = 1
	Threshold     = 2
)

// Classifier assigns page-type labels from a URL, its anchor text and
// optionally the page content. It is safe for concurrent use.
type Classifier struct {
	rules []compiledKeywords
}

// New compiles rules into a Classifier.
func New(rules Rules) (*Classifier, error) {
	compiled, err := rules.compile()
	if err != nil {
		return nil, err
	}
	return &Classifier{rules: compiled}, nil
}

// Default returns a Classifier over DefaultRules.
func Default() *Classifier {
	c, err := New(DefaultRules())
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns every label whose score reaches Threshold, in
// canonical label order. Each signal counts at most once per label.
func (c *Classifier) Classify(rawURL, anchorText, content string) []model.Label {
	path := urlPath(rawURL)
	anchor := strings.ToLower(anchorText)
	body := strings.ToLower(content)

	var labels []model.Label
	for _, kw := range c.rules {
		if kw.score(path, anchor, body) >= Threshold {
			labels = append(labels, kw.label)
		}
	}
	return labels
}

// ClassifyAll labels every candidate by URL and anchor context.
func (c *Classifier) ClassifyAll(candidates []model.LinkCandidate) []model.PageClassification {
	out := make([]model.PageClassification, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, model.PageClassification{
			Candidate: cand,
			Labels:    c.Classify(cand.TargetURL, cand.Context(), ""),
		})
	}
	return out
}

func (kw compiledKeywords) score(path, anchor, content string) int {
	score := 0
	for _, re := range kw.urlPatterns {
		if re.MatchString(path) {
			score += URLWeight
			break
		}
	}
	if anchor != "" {
		for _, text := range kw.linkText {
			if strings.Contains(anchor, text) {
				score += AnchorWeight
				break
			}
		}
	}
	if content != "" {
		for _, ind := range kw.contentIndicators {
			if strings.Contains(content, ind) {
				score += ContentWeight
				break
			}
		}
	}
	return score
}

// urlPath returns the lowercased path of rawURL. The host is ignored so
// a subdomain such as about.acme.io carries no signal.
func urlPath(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	if u.Host == "" && !strings.HasPrefix(u.Path, "/") {
		return ""
	}
	return strings.ToLower(u.Path)
}
