package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/sitescout/internal/cleaner"
)

// Description length rules.
const (
	minParagraphDescription = 50
	maxDescription          = 300
)

// ContentResult is the generic content of a page.
type ContentResult struct {
	Title       string
	Text        string
	Description string
	SocialLinks map[string]string
}

// Content extracts the title, cleaned main text, description and social
// profile links of doc.
func Content(doc *cleaner.Document) ContentResult {
	return ContentResult{
		Title:       doc.Title(),
		Text:        doc.MainText(),
		Description: Description(doc),
		SocialLinks: SocialLinks(doc),
	}
}

// Description returns the site description. It falls back through the
// meta description, the Open Graph description, the first paragraph
// when it is long enough, and the paragraph following the first <h1>.
// It returns "" when nothing is found.
func Description(doc *cleaner.Document) string {
	if d := doc.Meta("description"); d != "" {
		return squash(d)
	}
	if d := doc.Meta("og:description"); d != "" {
		return squash(d)
	}

	body := doc.Content.Find("body")
	if p := selText(body.Find("p").First()); runeLen(p) >= minParagraphDescription {
		return truncate(p, maxDescription)
	}

	h1 := body.Find("h1").First()
	if h1.Length() == 0 {
		return ""
	}
	if p := paragraphAfter(h1); p != "" {
		return truncate(p, maxDescription)
	}
	return ""
}

// paragraphAfter returns the text of the first <p> that follows sel in
// document order.
func paragraphAfter(sel *goquery.Selection) string {
	for cur := sel; cur.Length() > 0 && goquery.NodeName(cur) != "body"; cur = cur.Parent() {
		var found *goquery.Selection
		cur.NextAll().EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if goquery.NodeName(s) == "p" {
				found = s
			} else if p := s.Find("p").First(); p.Length() > 0 {
				found = p
			}
			return found == nil
		})
		if found != nil {
			return selText(found)
		}
	}
	return ""
}
