package model

// LinkSource records how a link candidate was discovered.
type LinkSource string

const (
	// SourceAnchor is an <a href> element.
	SourceAnchor LinkSource = "anchor"
	// SourceDataHref is an element carrying a data-href attribute.
	SourceDataHref LinkSource = "data-href"
	// SourceKeyword is a URL synthesized from a page-type keyword in the
	// visible text.
	SourceKeyword LinkSource = "keyword"
	// SourceNav is a URL synthesized from a navigation item without an anchor.
	SourceNav LinkSource = "nav"
	// SourceProbe is a conventional path confirmed by an existence check.
	SourceProbe LinkSource = "probe"
)

// LinkCandidate is a discovered internal link.
type LinkCandidate struct {
	// TargetURL is the absolute URL of the link.
	TargetURL string `json:"target_url"`

	// AnchorText is the link text, empty when it was too short or generic.
	AnchorText string `json:"anchor_text,omitempty"`

	// ContextText is nearby text used when the anchor has no text of its own.
	ContextText string `json:"context_text,omitempty"`

	// Source records how the link was found.
	Source LinkSource `json:"source"`
}

// Context returns the text the classifier should treat as anchor text.
func (c LinkCandidate) Context() string {
	if c.AnchorText != "" {
		return c.AnchorText
	}
	return c.ContextText
}

// PageClassification is a candidate together with the labels it scored.
type PageClassification struct {
	Candidate LinkCandidate `json:"candidate"`
	Labels    []Label       `json:"labels,omitempty"`
}

// URL returns the candidate's target URL.
func (c PageClassification) URL() string {
	return c.Candidate.TargetURL
}

// Has reports whether the classification carries label.
func (c PageClassification) Has(label Label) bool {
	for _, l := range c.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// PrimaryLabel returns the first assigned label, or LabelGeneral.
func (c PageClassification) PrimaryLabel() Label {
	if len(c.Labels) == 0 {
		return LabelGeneral
	}
	return c.Labels[0]
}

// PrioritizedPage is a URL chosen for fetching.
type PrioritizedPage struct {
	// URL is the page to fetch.
	URL string `json:"url"`

	// Label is the type the page was selected for. Fill-in pages
	// use their first label or LabelGeneral.
	Label Label `json:"label"`

	// Rank is the zero-based position in fetch order.
	Rank int `json:"rank"`

	// Context is the anchor or context text the page was discovered with.
	Context string `json:"context,omitempty"`
}
