package model

import (
	"fmt"
	"strings"
)

// Label is a page type assigned by the classifier.
type Label string

const (
	// LabelAbout marks company overview, mission and history pages.
	LabelAbout Label = "about"
	// LabelTeam marks team, leadership and founder pages.
	LabelTeam Label = "team"
	// LabelProducts marks product, service and solution pages.
	LabelProducts Label = "products"
	// LabelContact marks contact, location and support pages.
	LabelContact Label = "contact"
	// LabelNews marks news, blog and press pages.
	LabelNews Label = "news"
	// LabelCareers marks job and hiring pages. Careers pages are
	// classified but never chosen by the default prioritization.
	LabelCareers Label = "careers"

	// LabelMain is the pseudo-label used for the seed page in page records.
	LabelMain Label = "main"
	// LabelGeneral is assigned to fill-in pages that carry no label.
	LabelGeneral Label = "general"
)

// AllLabels returns the classifier labels in canonical order.
func AllLabels() []Label {
	return []Label{LabelAbout, LabelTeam, LabelProducts, LabelContact, LabelNews, LabelCareers}
}

// DefaultKeyTypes returns the labels that get a reserved crawl slot,
// in priority order.
func DefaultKeyTypes() []Label {
	return []Label{LabelAbout, LabelTeam, LabelProducts, LabelContact, LabelNews}
}

// String returns the label as a plain string.
func (l Label) String() string {
	return string(l)
}

// Upper returns the label in upper case, used for raw text banners.
func (l Label) Upper() string {
	return strings.ToUpper(string(l))
}

// ParseLabel parses a classifier label. Matching is case-insensitive.
func ParseLabel(s string) (Label, error) {
	candidate := Label(strings.ToLower(strings.TrimSpace(s)))
	for _, l := range AllLabels() {
		if l == candidate {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown page label %q", s)
}

// ParseLabels parses a list of labels, failing on the first unknown entry.
func ParseLabels(values []string) ([]Label, error) {
	labels := make([]Label, 0, len(values))
	for _, v := range values {
		l, err := ParseLabel(v)
		if err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, nil
}
