package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is a parsed page in two views.
//
// Raw has comments and scripts removed but keeps its structure, so
// navigation menus and footers are still present for link discovery and
// social profile harvesting. Content has every noise region removed and
// feeds text and entity extraction.
type Document struct {
	Raw     *goquery.Document
	Content *goquery.Document

	contentSelectors []string
}

// Title returns the trimmed <title> text.
func (d *Document) Title() string {
	return strings.TrimSpace(d.Raw.Find("head title").First().Text())
}

// Meta returns the content of the first <meta> whose name or property
// equals key (case-insensitive).
func (d *Document) Meta(key string) string {
	key = strings.ToLower(key)
	var value string
	d.Raw.Find("meta[content]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name := strings.ToLower(s.AttrOr("name", s.AttrOr("property", "")))
		if name != key {
			return true
		}
		value = strings.TrimSpace(s.AttrOr("content", ""))
		return value == ""
	})
	return value
}

// Main returns the first content container with visible text, checked
// in priority order, falling back to <body> and then the whole document.
func (d *Document) Main() *goquery.Selection {
	for _, sel := range d.contentSelectors {
		found := d.Content.Find(sel).First()
		if found.Length() > 0 && strings.TrimSpace(found.Text()) != "" {
			return found
		}
	}
	if body := d.Content.Find("body"); body.Length() > 0 {
		return body
	}
	return d.Content.Selection
}

// MainText returns the cleaned text of Main.
func (d *Document) MainText() string {
	return CleanText(Text(d.Main()))
}
