package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/sitescout/internal/cleaner"
	"github.com/nao1215/sitescout/internal/model"
)

// News item field limits.
const (
	minNewsTitle   = 6
	maxNewsTitle   = 300
	maxNewsDate    = 50
	maxNewsContent = 800
)

var (
	newsClassPattern = regexp.MustCompile(`(?i)news|blog|post|article|press|update`)
	newsIDPattern    = regexp.MustCompile(`(?i)news|blog|post|article|press`)
	dateClassPattern = regexp.MustCompile(`(?i)date|time|published`)
)

// News extracts posts from news-like containers: the first heading, an
// optional date and the first paragraph.
func News(doc *cleaner.Document) ([]model.NewsItem, error) {
	return guard("news", func() ([]model.NewsItem, error) {
		var items []model.NewsItem
		seen := make(map[string]bool)

		innermost(containers(doc.Content.Selection, newsClassPattern, newsIDPattern, "")).
			EachWithBreak(func(_ int, s *goquery.Selection) bool {
				title := truncate(selText(s.Find(headings).First()), maxNewsTitle)
				if runeLen(title) < minNewsTitle {
					return true
				}
				item := model.NewsItem{
					Title:   title,
					Date:    truncate(newsDate(s), maxNewsDate),
					Content: truncate(selText(s.Find("p").First()), maxNewsContent),
				}
				if seen[item.Key()] {
					return true
				}
				seen[item.Key()] = true
				items = append(items, item)
				return len(items) < model.MaxEntities
			})
		return items, nil
	})
}

// newsDate prefers a machine readable datetime attribute over visible
// text.
func newsDate(s *goquery.Selection) string {
	if el := s.Find("[datetime]").First(); el.Length() > 0 {
		if v := strings.TrimSpace(el.AttrOr("datetime", "")); v != "" {
			return v
		}
		return selText(el)
	}
	if el := s.Find("time").First(); el.Length() > 0 {
		return selText(el)
	}
	el := s.Find("time, span, div").FilterFunction(func(_ int, e *goquery.Selection) bool {
		return dateClassPattern.MatchString(e.AttrOr("class", ""))
	}).First()
	return selText(el)
}
