package pipeline

import (
	"strings"

	"github.com/nao1215/sitescout/internal/model"
)

// Aggregate merges the seed extraction and the extraction of every
// fetched page into one ScrapeResult. pages is indexed by rank; nil
// slots are pages that were not fetched. Entities are merged by natural
// key with the first occurrence kept, contact values by set union.
//
// Only the fields derived from extractions are set; the caller fills in
// seed-level data such as CompanyName.
func Aggregate(seed *model.ExtractionResult, pages []*model.ExtractionResult) *model.ScrapeResult {
	result := &model.ScrapeResult{}

	var raw strings.Builder
	raw.WriteString("--- MAIN PAGE ---\n")
	if seed != nil {
		raw.WriteString(seed.Text)
		result.PagesScraped = append(result.PagesScraped, pageRecord(seed, model.LabelMain))
	}

	contact := &model.ContactInfo{}
	team := newKeySet()
	products := newKeySet()
	news := newKeySet()

	for _, p := range pages {
		if p == nil {
			continue
		}

		raw.WriteString("\n\n--- ")
		raw.WriteString(p.Label.Upper())
		raw.WriteString(" PAGE: ")
		raw.WriteString(p.URL)
		raw.WriteString(" ---\n")
		raw.WriteString(p.Text)

		result.PagesScraped = append(result.PagesScraped, pageRecord(p, p.Label))

		if p.Label == model.LabelAbout && result.AboutPage == nil && p.Text != "" {
			about := p.Text
			result.AboutPage = &about
		}

		contact.Merge(p.Contact)
		for _, m := range p.Team {
			if team.add(m.Key()) {
				result.TeamInfo = append(result.TeamInfo, m)
			}
		}
		for _, pr := range p.Products {
			if products.add(pr.Key()) {
				result.ProductsServices = append(result.ProductsServices, pr)
			}
		}
		for _, n := range p.News {
			if news.add(n.Key()) {
				result.NewsData = append(result.NewsData, n)
			}
		}
	}

	result.RawText = raw.String()
	if !contact.IsEmpty() {
		result.ContactInfo = contact
	}
	return result
}

func pageRecord(p *model.ExtractionResult, label model.Label) model.PageRecord {
	return model.PageRecord{
		URL:       p.URL,
		Type:      label,
		Title:     p.Title,
		WordCount: p.WordCount,
	}
}

type keySet map[string]struct{}

func newKeySet() keySet {
	return make(keySet)
}

// add reports whether key was new. Empty keys are rejected.
func (s keySet) add(key string) bool {
	if key == "" {
		return false
	}
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}
