package model

import "strings"

// Caps on the number of contact values kept per result.
const (
	MaxEmails    = 5
	MaxPhones    = 3
	MaxAddresses = 3
)

// MaxEntities caps team members, products and news items per result.
const MaxEntities = 10

// ContactInfo holds contact details found on one or more pages.
// Each list is a value set in first-seen order.
type ContactInfo struct {
	Emails    []string `json:"emails,omitempty"`
	Phones    []string `json:"phones,omitempty"`
	Addresses []string `json:"addresses,omitempty"`
}

// IsEmpty reports whether no contact value is present.
func (c *ContactInfo) IsEmpty() bool {
	return c == nil || (len(c.Emails) == 0 && len(c.Phones) == 0 && len(c.Addresses) == 0)
}

// Merge adds the values from other that are not present yet.
// Caps are applied after merging.
func (c *ContactInfo) Merge(other *ContactInfo) {
	if other == nil {
		return
	}
	c.Emails = mergeValues(c.Emails, other.Emails, MaxEmails)
	c.Phones = mergeValues(c.Phones, other.Phones, MaxPhones)
	c.Addresses = mergeValues(c.Addresses, other.Addresses, MaxAddresses)
}

// mergeValues appends values from add that are not in dst, comparing
// case-insensitively, and truncates to limit.
func mergeValues(dst, add []string, limit int) []string {
	seen := make(map[string]struct{}, len(dst)+len(add))
	out := make([]string, 0, len(dst)+len(add))
	for _, list := range [][]string{dst, add} {
		for _, v := range list {
			key := strings.ToLower(strings.TrimSpace(v))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// TeamMember is a person listed on a team or leadership page.
type TeamMember struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}

// Key returns the natural dedup key.
func (m TeamMember) Key() string {
	return strings.ToLower(strings.TrimSpace(m.Name))
}

// Product is a product or service offering.
type Product struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Features    []string `json:"features,omitempty"`
}

// Key returns the natural dedup key.
func (p Product) Key() string {
	return strings.ToLower(strings.TrimSpace(p.Title))
}

// NewsItem is a news, blog or press entry.
type NewsItem struct {
	Title   string `json:"title"`
	Date    string `json:"date,omitempty"`
	Content string `json:"content,omitempty"`
}

// Key returns the natural dedup key.
func (n NewsItem) Key() string {
	return strings.ToLower(strings.TrimSpace(n.Title))
}

// ExtractionResult is everything extracted from a single fetched page.
type ExtractionResult struct {
	// URL is the page URL.
	URL string `json:"url"`

	// Label is the type the page was fetched for.
	Label Label `json:"label"`

	// Rank is the position of the page in prioritized order. The seed is -1.
	Rank int `json:"rank"`

	// Title is the document title.
	Title string `json:"title,omitempty"`

	// Text is the cleaned main text.
	Text string `json:"text,omitempty"`

	// WordCount is the number of whitespace separated words in Text.
	WordCount int `json:"word_count"`

	Contact  *ContactInfo `json:"contact,omitempty"`
	Team     []TeamMember `json:"team,omitempty"`
	Products []Product    `json:"products,omitempty"`
	News     []NewsItem   `json:"news,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// CountWords returns the number of whitespace separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
