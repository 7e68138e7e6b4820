package model

import "time"

// CrawlSession carries the state of one crawl through the pipeline steps.
// Each step reads what earlier steps produced and adds its own output.
// A session is owned by a single goroutine.
type CrawlSession struct {
	// Seed is the validated crawl input.
	Seed SeedRequest

	// StartedAt is when the session was created.
	StartedAt time.Time

	// SeedPage is the fetched seed response.
	SeedPage *FetchedPage

	// SeedExtraction is the extraction of the seed page.
	SeedExtraction *ExtractionResult

	// CompanyName and Description are derived from the seed page.
	CompanyName string
	Description string

	// SocialLinks are collected from the seed page.
	SocialLinks map[string]string

	// Candidates are the discovered, deduplicated link candidates.
	Candidates []LinkCandidate

	// Verified are the candidates that passed the existence check,
	// in discovery order.
	Verified []LinkCandidate

	// Classifications hold the labels of every verified candidate.
	Classifications []PageClassification

	// Prioritized is the bounded fetch list.
	Prioritized []PrioritizedPage

	// Extractions holds one slot per prioritized page, indexed by rank.
	// A nil slot means the page was not fetched or failed.
	Extractions []*ExtractionResult

	// Result is set by the aggregation step.
	Result *ScrapeResult

	// TimedOut is set when the caller's deadline interrupted the crawl.
	TimedOut bool

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string

	// StepErrors records non-fatal step failures.
	StepErrors []string
}

// NewCrawlSession creates a session for seed.
func NewCrawlSession(seed SeedRequest) *CrawlSession {
	return &CrawlSession{
		Seed:        seed,
		StartedAt:   time.Now(),
		SocialLinks: make(map[string]string),
	}
}
