package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"slices"
	"time"

	"github.com/nao1215/sitescout/internal/classify"
	"github.com/nao1215/sitescout/internal/cleaner"
	"github.com/nao1215/sitescout/internal/crawler"
	"github.com/nao1215/sitescout/internal/extract"
	"github.com/nao1215/sitescout/internal/fetch"
	"github.com/nao1215/sitescout/internal/model"
)

// Fetcher retrieves pages and checks links. fetch.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (*model.FetchedPage, error)
	crawler.Checker
}

// Recorder receives crawl telemetry. The monitoring package provides a
// Prometheus implementation.
type Recorder interface {
	ObserveLinks(kept, dropped int)
	ObservePage(label model.Label, ok bool)
	ObserveCrawl(outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLinks(int, int)              {}
func (nopRecorder) ObservePage(model.Label, bool)      {}
func (nopRecorder) ObserveCrawl(string, time.Duration) {}

// Step names.
const (
	StepSeed       = "seed"
	StepVerify     = "verify"
	StepClassify   = "classify"
	StepPrioritize = "prioritize"
	StepFetchPages = "fetch_pages"
	StepAggregate  = "aggregate"
)

// SeedStep fetches and cleans the seed page, extracts its generic
// content and discovers its internal links. Failure is fatal.
type SeedStep struct {
	fetcher Fetcher
	cleaner *cleaner.Cleaner
	filter  crawler.PathFilter
	timeout time.Duration
	logger  *slog.Logger
}

// NewSeedStep creates the seed step.
func NewSeedStep(fetcher Fetcher, c *cleaner.Cleaner, filter crawler.PathFilter, timeout time.Duration, logger *slog.Logger) *SeedStep {
	return &SeedStep{fetcher: fetcher, cleaner: c, filter: filter, timeout: timeout, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *SeedStep) Name() string { return StepSeed }

// Do executes the seed step.
func (s *SeedStep) Do(ctx context.Context, session *model.CrawlSession) error {
	seedURL := session.Seed.URL

	page, err := s.fetcher.Fetch(ctx, seedURL, s.timeout)
	if err != nil {
		return &SeedError{URL: seedURL, Err: err}
	}
	doc, err := s.cleaner.Clean(page.Body)
	if err != nil {
		return &SeedError{URL: seedURL, Err: err}
	}

	content := extract.Content(doc)
	session.SeedPage = page
	session.CompanyName = extract.CompanyName(doc, page.URL)
	session.Description = content.Description
	for platform, link := range content.SocialLinks {
		session.SocialLinks[platform] = link
	}
	session.SeedExtraction = &model.ExtractionResult{
		URL:       page.URL,
		Label:     model.LabelMain,
		Rank:      -1,
		Title:     content.Title,
		Text:      content.Text,
		WordCount: model.CountWords(content.Text),
	}

	d, err := crawler.NewDiscoverer(page.URL, crawler.WithPathFilter(s.filter))
	if err != nil {
		return &SeedError{URL: seedURL, Err: err}
	}
	session.Candidates = d.Discover(doc)

	s.logger.Debug("seed page processed",
		"url", page.URL,
		"company", session.CompanyName,
		"candidates", len(session.Candidates),
	)
	return nil
}

// VerifyStep keeps the candidates that exist and probes conventional
// paths when too few remain.
type VerifyStep struct {
	verifier *crawler.Verifier
	filter   crawler.PathFilter
	recorder Recorder
	logger   *slog.Logger
}

// NewVerifyStep creates the verify step. Probed paths rejected by filter
// are dropped like discovered ones.
func NewVerifyStep(checker crawler.Checker, concurrency int, filter crawler.PathFilter, recorder Recorder, logger *slog.Logger) *VerifyStep {
	logger = orDefault(logger)
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &VerifyStep{
		verifier: crawler.NewVerifier(checker, concurrency, logger),
		filter:   filter,
		recorder: recorder,
		logger:   logger,
	}
}

// Name returns the step name.
func (s *VerifyStep) Name() string { return StepVerify }

// Do executes the verify step.
func (s *VerifyStep) Do(ctx context.Context, session *model.CrawlSession) error {
	verified := s.verifier.Verify(ctx, session.Candidates)
	s.recorder.ObserveLinks(len(verified), len(session.Candidates)-len(verified))

	if len(verified) < crawler.ProbeThreshold && session.SeedPage != nil {
		known := crawler.NewSeen()
		known.Add(session.SeedPage.URL)
		for _, c := range session.Candidates {
			known.Add(c.TargetURL)
		}
		probes := s.verifier.Probe(ctx, origin(session.SeedPage.URL), known)
		s.logger.Debug("probed conventional paths", "seed", session.Seed.URL, "found", len(probes))
		for _, c := range probes {
			if s.filter.Allow(pathOf(c.TargetURL)) {
				verified = append(verified, c)
			}
		}
	}

	session.Verified = crawler.Dedupe(verified)
	return nil
}

// ClassifyStep labels every verified candidate.
type ClassifyStep struct {
	classifier *classify.Classifier
}

// NewClassifyStep creates the classify step.
func NewClassifyStep(classifier *classify.Classifier) *ClassifyStep {
	return &ClassifyStep{classifier: classifier}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string { return StepClassify }

// Do executes the classify step.
func (s *ClassifyStep) Do(_ context.Context, session *model.CrawlSession) error {
	session.Classifications = s.classifier.ClassifyAll(session.Verified)
	return nil
}

// PrioritizeStep selects the pages to fetch within the budget.
type PrioritizeStep struct {
	opts classify.PriorityOptions
}

// NewPrioritizeStep creates the prioritize step.
func NewPrioritizeStep(opts classify.PriorityOptions) *PrioritizeStep {
	return &PrioritizeStep{opts: opts}
}

// Name returns the step name.
func (s *PrioritizeStep) Name() string { return StepPrioritize }

// Do executes the prioritize step.
func (s *PrioritizeStep) Do(_ context.Context, session *model.CrawlSession) error {
	session.Prioritized = classify.Prioritize(session.Classifications, session.Seed.PageBudget, s.opts)
	session.Extractions = make([]*model.ExtractionResult, len(session.Prioritized))
	return nil
}

// FetchPagesStep fetches the prioritized pages in rank order through the
// politeness limiter and runs the entity extractors on each. A failed
// page leaves its slot empty; a done context stops issuing fetches.
type FetchPagesStep struct {
	fetcher    Fetcher
	cleaner    *cleaner.Cleaner
	classifier *classify.Classifier
	limiter    fetch.Limiter
	timeout    time.Duration
	recorder   Recorder
	logger     *slog.Logger
}

// FetchPagesConfig carries the dependencies of FetchPagesStep.
type FetchPagesConfig struct {
	Fetcher    Fetcher
	Cleaner    *cleaner.Cleaner
	Classifier *classify.Classifier
	Limiter    fetch.Limiter
	Timeout    time.Duration
	Recorder   Recorder
	Logger     *slog.Logger
}

// NewFetchPagesStep creates the fetch_pages step.
func NewFetchPagesStep(cfg FetchPagesConfig) *FetchPagesStep {
	s := &FetchPagesStep{
		fetcher:    cfg.Fetcher,
		cleaner:    cfg.Cleaner,
		classifier: cfg.Classifier,
		limiter:    cfg.Limiter,
		timeout:    cfg.Timeout,
		recorder:   cfg.Recorder,
		logger:     orDefault(cfg.Logger),
	}
	if s.limiter == nil {
		s.limiter = fetch.NopLimiter{}
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	return s
}

// Name returns the step name.
func (s *FetchPagesStep) Name() string { return StepFetchPages }

// Do executes the fetch_pages step.
func (s *FetchPagesStep) Do(ctx context.Context, session *model.CrawlSession) error {
	if len(session.Extractions) != len(session.Prioritized) {
		session.Extractions = make([]*model.ExtractionResult, len(session.Prioritized))
	}

	fetched := crawler.NewSeen()
	fetched.Add(session.Seed.URL)
	if session.SeedPage != nil {
		fetched.Add(session.SeedPage.URL)
	}

	for _, page := range session.Prioritized {
		if !fetched.Add(page.URL) {
			continue
		}
		if err := s.limiter.Wait(ctx); err != nil {
			session.TimedOut = true
			s.logger.Warn("page fetching stopped", "seed", session.Seed.URL, "next_rank", page.Rank, "reason", err)
			return nil
		}

		res, err := s.fetchPage(ctx, page, labelsFor(session.Classifications, page.URL))
		if err != nil {
			s.recorder.ObservePage(page.Label, false)
			s.logger.Warn("page fetch failed", "url", page.URL, "label", page.Label.String(), "error", err)
			session.StepErrors = append(session.StepErrors, StepFetchPages+": "+err.Error())
			if ctx.Err() != nil {
				session.TimedOut = true
				return nil
			}
			continue
		}
		s.recorder.ObservePage(page.Label, true)
		session.Extractions[page.Rank] = res
	}
	return nil
}

func (s *FetchPagesStep) fetchPage(ctx context.Context, page model.PrioritizedPage, labels []model.Label) (*model.ExtractionResult, error) {
	fp, err := s.fetcher.Fetch(ctx, page.URL, s.timeout)
	if err != nil {
		return nil, err
	}
	doc, err := s.cleaner.Clean(fp.Body)
	if err != nil {
		return nil, err
	}

	// The fetched content adds a signal the link alone could not give.
	for _, l := range s.classifier.Classify(page.URL, page.Context, doc.MainText()) {
		if !slices.Contains(labels, l) {
			labels = append(labels, l)
		}
	}
	return extract.Page(doc, page, labels, s.logger), nil
}

// AggregateStep builds the ScrapeResult. It runs as a finally step so a
// crawl cut short by its deadline still returns what was fetched.
type AggregateStep struct {
	now func() time.Time
}

// NewAggregateStep creates the aggregate step.
func NewAggregateStep() *AggregateStep {
	return &AggregateStep{now: time.Now}
}

// Name returns the step name.
func (s *AggregateStep) Name() string { return StepAggregate }

// Do executes the aggregate step. Without a seed extraction there is
// nothing to aggregate and Result stays nil.
func (s *AggregateStep) Do(_ context.Context, session *model.CrawlSession) error {
	if session.SeedExtraction == nil {
		return nil
	}

	result := Aggregate(session.SeedExtraction, session.Extractions)
	result.SeedURL = session.Seed.URL
	result.CompanyName = session.CompanyName
	result.Description = session.Description
	if len(session.SocialLinks) > 0 {
		result.SocialLinks = session.SocialLinks
	}
	result.TotalPagesFound = len(session.Verified)
	result.Partial = session.TimedOut
	result.ScrapedAt = s.now()

	session.Result = result
	return nil
}

// labelsFor returns the classification labels of url. The returned
// slice is a copy.
func labelsFor(classifications []model.PageClassification, pageURL string) []model.Label {
	for _, c := range classifications {
		if c.URL() == pageURL {
			return slices.Clone(c.Labels)
		}
	}
	return nil
}

// origin returns scheme://host of rawURL.
func origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}

// pathOf returns the path of rawURL, or "" when it does not parse.
func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Path
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
