package extract

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/sitescout/internal/cleaner"
	"github.com/nao1215/sitescout/internal/model"
)

// Product field limits.
const (
	minProductTitle    = 4
	maxProductTitle    = 200
	maxProductDesc     = 1000
	maxProductFeatures = 10
)

var (
	productClassPattern = regexp.MustCompile(`(?i)product|service|offering|solution|feature`)
	productIDPattern    = regexp.MustCompile(`(?i)product|service|offering|solution`)
)

const headings = "h1, h2, h3, h4, h5, h6"

// Products extracts offerings from product-like containers: the first
// heading, the first paragraph or div, and list items as features.
func Products(doc *cleaner.Document) ([]model.Product, error) {
	return guard("products", func() ([]model.Product, error) {
		var products []model.Product
		seen := make(map[string]bool)

		innermost(containers(doc.Content.Selection, productClassPattern, productIDPattern, "")).
			EachWithBreak(func(_ int, s *goquery.Selection) bool {
				title := truncate(selText(s.Find(headings).First()), maxProductTitle)
				if runeLen(title) < minProductTitle {
					return true
				}
				p := model.Product{
					Title:       title,
					Description: truncate(selText(s.Find("p, div").First()), maxProductDesc),
					Features:    features(s),
				}
				if seen[p.Key()] {
					return true
				}
				seen[p.Key()] = true
				products = append(products, p)
				return len(products) < model.MaxEntities
			})
		return products, nil
	})
}

func features(s *goquery.Selection) []string {
	var out []string
	s.Find("ul li, ol li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		if t := selText(li); t != "" {
			out = append(out, t)
		}
		return len(out) < maxProductFeatures
	})
	return out
}
