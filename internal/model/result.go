package model

import "time"

// PageRecord summarises one fetched page in a ScrapeResult.
type PageRecord struct {
	URL       string `json:"url"`
	Type      Label  `json:"type"`
	Title     string `json:"title,omitempty"`
	WordCount int    `json:"word_count"`
}

// ScrapeResult is the aggregated output of a crawl.
//
// Optional fields use nil to mean "not attempted or not found":
// a nil AboutPage, ContactInfo or TeamInfo is never an error.
type ScrapeResult struct {
	// SeedURL is the normalized seed the crawl started from.
	SeedURL string `json:"seed_url"`

	// CompanyName is the derived organisation name.
	CompanyName string `json:"company_name"`

	// Description is the meta or first-paragraph description of the seed.
	Description string `json:"description,omitempty"`

	// RawText is the cleaned text of every fetched page, seed first,
	// separated by page banners.
	RawText string `json:"raw_text"`

	// AboutPage is the cleaned text of the first about page.
	AboutPage *string `json:"about_page,omitempty"`

	// TeamInfo lists team members deduplicated by name.
	TeamInfo []TeamMember `json:"team_info,omitempty"`

	// SocialLinks maps a platform name to the profile URL.
	SocialLinks map[string]string `json:"social_links,omitempty"`

	// ContactInfo is the merged contact data of all pages.
	ContactInfo *ContactInfo `json:"contact_info,omitempty"`

	// ProductsServices lists offerings deduplicated by title.
	ProductsServices []Product `json:"products_services,omitempty"`

	// NewsData lists news items deduplicated by title.
	NewsData []NewsItem `json:"news_data,omitempty"`

	// PagesScraped lists every fetched page, seed first.
	PagesScraped []PageRecord `json:"pages_scraped"`

	// TotalPagesFound is the number of verified, deduplicated internal links.
	TotalPagesFound int `json:"total_pages_found"`

	// Partial is true when the caller's deadline stopped page fetching early.
	Partial bool `json:"partial,omitempty"`

	// ScrapedAt is the time the crawl finished.
	ScrapedAt time.Time `json:"scraped_at"`
}

// PageCount returns the number of fetched pages, seed included.
func (r *ScrapeResult) PageCount() int {
	return len(r.PagesScraped)
}

// HasEntities reports whether any structured entity was extracted.
func (r *ScrapeResult) HasEntities() bool {
	return len(r.TeamInfo) > 0 || len(r.ProductsServices) > 0 ||
		len(r.NewsData) > 0 || !r.ContactInfo.IsEmpty()
}
