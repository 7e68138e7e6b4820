package extract

import (
	"log/slog"
	"slices"

	"github.com/nao1215/sitescout/internal/cleaner"
	"github.com/nao1215/sitescout/internal/model"
)

// Page builds the extraction result of one fetched page. Entity
// extractors run only for the labels the page carries; a failing
// extractor is logged and recorded in Errors while the others proceed.
func Page(doc *cleaner.Document, page model.PrioritizedPage, labels []model.Label, logger *slog.Logger) *model.ExtractionResult {
	if logger == nil {
		logger = slog.Default()
	}

	text := doc.MainText()
	res := &model.ExtractionResult{
		URL:       page.URL,
		Label:     page.Label,
		Rank:      page.Rank,
		Title:     doc.Title(),
		Text:      text,
		WordCount: model.CountWords(text),
	}

	has := func(l model.Label) bool {
		return page.Label == l || slices.Contains(labels, l)
	}
	fail := func(err error) {
		logger.Warn("entity extraction failed", "url", page.URL, "error", err)
		res.Errors = append(res.Errors, err.Error())
	}

	if has(model.LabelContact) {
		if info, err := Contact(doc); err != nil {
			fail(err)
		} else {
			res.Contact = info
		}
	}
	if has(model.LabelTeam) {
		if team, err := Team(doc); err != nil {
			fail(err)
		} else {
			res.Team = team
		}
	}
	if has(model.LabelProducts) {
		if products, err := Products(doc); err != nil {
			fail(err)
		} else {
			res.Products = products
		}
	}
	if has(model.LabelNews) {
		if news, err := News(doc); err != nil {
			fail(err)
		} else {
			res.News = news
		}
	}
	return res
}
