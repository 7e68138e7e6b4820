package pipeline

import (
	"slices"
	"testing"

	"github.com/nao1215/sitescout/internal/model"
)

func TestAggregate(t *testing.T) {
	t.Parallel()

	seed := &model.ExtractionResult{URL: "https://acme.io/", Label: model.LabelMain, Rank: -1, Title: "Acme", Text: "Welcome", WordCount: 1}
	pages := []*model.ExtractionResult{
		{
			URL: "https://acme.io/about", Label: model.LabelAbout, Rank: 0, Title: "About", Text: "We build rockets", WordCount: 3,
			Team: []model.TeamMember{{Name: "Jane Doe", Title: "CEO"}},
		},
		nil,
		{
			URL: "https://acme.io/contact", Label: model.LabelContact, Rank: 2, Text: "Write to us",
			Contact: &model.ContactInfo{Emails: []string{"hi@acme.io"}, Phones: []string{"+1 555 123 4567"}},
		},
		{
			URL: "https://acme.io/company", Label: model.LabelAbout, Rank: 3, Text: "More history",
			Team:    []model.TeamMember{{Name: "jane doe", Title: "Chief"}, {Name: "John Smith"}},
			Contact: &model.ContactInfo{Emails: []string{"HI@acme.io", "sales@acme.io"}},
		},
		{
			URL: "https://acme.io/news", Label: model.LabelNews, Rank: 4, Text: "Launch",
			News:     []model.NewsItem{{Title: "Launch day"}, {Title: "Launch Day"}},
			Products: []model.Product{{Title: "Rocket"}},
		},
	}

	got := Aggregate(seed, pages)

	wantRaw := "--- MAIN PAGE ---\nWelcome" +
		"\n\n--- ABOUT PAGE: https://acme.io/about ---\nWe build rockets" +
		"\n\n--- CONTACT PAGE: https://acme.io/contact ---\nWrite to us" +
		"\n\n--- ABOUT PAGE: https://acme.io/company ---\nMore history" +
		"\n\n--- NEWS PAGE: https://acme.io/news ---\nLaunch"
	if got.RawText != wantRaw {
		t.Errorf("RawText =\n%q\nwant\n%q", got.RawText, wantRaw)
	}

	if got.AboutPage == nil || *got.AboutPage != "We build rockets" {
		t.Errorf("AboutPage = %v", got.AboutPage)
	}

	if len(got.TeamInfo) != 2 || got.TeamInfo[0].Title != "CEO" || got.TeamInfo[1].Name != "John Smith" {
		t.Errorf("TeamInfo = %+v", got.TeamInfo)
	}
	if !slices.Equal(got.ContactInfo.Emails, []string{"hi@acme.io", "sales@acme.io"}) {
		t.Errorf("Emails = %v", got.ContactInfo.Emails)
	}
	if len(got.NewsData) != 1 || len(got.ProductsServices) != 1 {
		t.Errorf("NewsData = %+v, ProductsServices = %+v", got.NewsData, got.ProductsServices)
	}

	var types []model.Label
	for _, p := range got.PagesScraped {
		types = append(types, p.Type)
	}
	wantTypes := []model.Label{model.LabelMain, model.LabelAbout, model.LabelContact, model.LabelAbout, model.LabelNews}
	if !slices.Equal(types, wantTypes) {
		t.Errorf("PagesScraped types = %v, want %v", types, wantTypes)
	}
	if got.PagesScraped[0].Title != "Acme" || got.PagesScraped[1].WordCount != 3 {
		t.Errorf("PagesScraped = %+v", got.PagesScraped)
	}
}

func TestAggregateSeedOnly(t *testing.T) {
	t.Parallel()

	got := Aggregate(&model.ExtractionResult{URL: "https://acme.io/", Text: "Hello"}, nil)

	if got.RawText != "--- MAIN PAGE ---\nHello" {
		t.Errorf("RawText = %q", got.RawText)
	}
	if got.AboutPage != nil || got.ContactInfo != nil || got.TeamInfo != nil || got.NewsData != nil || got.ProductsServices != nil {
		t.Errorf("expected absent optional fields, got %+v", got)
	}
	if got.PageCount() != 1 {
		t.Errorf("PageCount() = %d, want 1", got.PageCount())
	}
}
