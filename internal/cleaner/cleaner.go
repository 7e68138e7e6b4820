package cleaner

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Cleaner strips navigational and advertising noise from HTML documents.
// A Cleaner is safe for concurrent use; its rules are never modified.
type Cleaner struct {
	rules      Rules
	contentSel string
	noiseSel   string
}

// New creates a Cleaner for rules. Invalid selectors are reported by
// Rules.Validate; New does not check them.
func New(rules Rules) *Cleaner {
	return &Cleaner{
		rules:      rules.clone(),
		contentSel: strings.Join(rules.ContentSelectors, ", "),
		noiseSel:   strings.Join(rules.StructuralSelectors, ", "),
	}
}

// Default returns a Cleaner using DefaultRules.
func Default() *Cleaner {
	return New(DefaultRules())
}

// Rules returns a copy of the rules in use.
func (c *Cleaner) Rules() Rules {
	return c.rules.clone()
}

// Clean parses body and returns its raw and noise-free views. Malformed
// HTML never fails; the parser recovers and an empty input yields an
// empty document.
func (c *Cleaner) Clean(body []byte) (*Document, error) {
	raw, err := c.parse(body)
	if err != nil {
		return nil, err
	}
	content, err := c.parse(body)
	if err != nil {
		return nil, err
	}

	c.stripNoise(content)

	return &Document{
		Raw:              raw,
		Content:          content,
		contentSelectors: c.rules.ContentSelectors,
	}, nil
}

// parse builds a goquery document without comments or StripTags elements.
func (c *Cleaner) parse(body []byte) (*goquery.Document, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	removeComments(root)

	doc := goquery.NewDocumentFromNode(root)
	for _, tag := range c.rules.StripTags {
		doc.Find(tag).Remove()
	}
	return doc, nil
}

func (c *Cleaner) stripNoise(doc *goquery.Document) {
	body := doc.Find("body")
	for _, tag := range c.rules.BodyStripTags {
		body.Find(tag).Remove()
	}

	if c.noiseSel != "" {
		body.Find(c.noiseSel).Each(func(_ int, s *goquery.Selection) {
			c.removeUnlessProtected(s)
		})
	}

	if len(c.rules.NoiseKeywords) == 0 {
		return
	}
	body.Find("[class], [id], [role]").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"class", "id", "role"} {
			if c.rules.matchesKeyword(s.AttrOr(attr, "")) {
				c.removeUnlessProtected(s)
				return
			}
		}
	})
}

// removeUnlessProtected removes s unless it is a content container, sits
// inside one or wraps one.
func (c *Cleaner) removeUnlessProtected(s *goquery.Selection) {
	switch goquery.NodeName(s) {
	case "html", "head", "body":
		return
	}
	if c.contentSel != "" {
		if s.Is(c.contentSel) ||
			s.ParentsFiltered(c.contentSel).Length() > 0 ||
			s.Find(c.contentSel).Length() > 0 {
			return
		}
	}
	s.Remove()
}

func removeComments(n *html.Node) {
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		if child.Type == html.CommentNode {
			n.RemoveChild(child)
		} else {
			removeComments(child)
		}
		child = next
	}
}
