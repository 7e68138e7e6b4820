package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/nao1215/sitescout/internal/classify"
	"github.com/nao1215/sitescout/internal/cleaner"
	"github.com/nao1215/sitescout/internal/config"
	"github.com/nao1215/sitescout/internal/crawler"
	"github.com/nao1215/sitescout/internal/fetch"
	"github.com/nao1215/sitescout/internal/model"
)

// Crawl outcomes reported to the Recorder.
const (
	OutcomeOK      = "ok"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
	OutcomeInvalid = "invalid"
)

// errStoppedBeforeSeed is the seed error cause when the context was
// done before the seed page was requested.
var errStoppedBeforeSeed = errors.New("crawl stopped before the seed page was fetched")

// Crawler runs crawls with a fixed configuration. It is safe for
// concurrent use; every crawl builds its own pipeline, fetch client and
// politeness limiter.
type Crawler struct {
	cfg           *config.Config
	fetcher       Fetcher
	cleaner       *cleaner.Cleaner
	classifier    *classify.Classifier
	logger        *slog.Logger
	recorder      Recorder
	fetchRecorder fetch.Recorder
}

// CrawlOption configures a Crawler.
type CrawlOption func(*Crawler)

// WithConfig sets the runtime configuration. Without it config.NewConfig
// defaults apply.
func WithConfig(cfg *config.Config) CrawlOption {
	return func(c *Crawler) {
		c.cfg = cfg
	}
}

// WithFetcher replaces the fetch client built from the configuration.
func WithFetcher(f Fetcher) CrawlOption {
	return func(c *Crawler) {
		c.fetcher = f
	}
}

// WithCleaner sets the noise filter.
func WithCleaner(cl *cleaner.Cleaner) CrawlOption {
	return func(c *Crawler) {
		c.cleaner = cl
	}
}

// WithClassifier sets the page classifier.
func WithClassifier(cl *classify.Classifier) CrawlOption {
	return func(c *Crawler) {
		c.classifier = cl
	}
}

// WithCrawlLogger sets the logger shared by every component of a crawl.
func WithCrawlLogger(logger *slog.Logger) CrawlOption {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithRecorder sets the crawl telemetry recorder.
func WithRecorder(r Recorder) CrawlOption {
	return func(c *Crawler) {
		c.recorder = r
	}
}

// WithFetchRecorder sets the telemetry recorder of the fetch client.
func WithFetchRecorder(r fetch.Recorder) CrawlOption {
	return func(c *Crawler) {
		c.fetchRecorder = r
	}
}

// NewCrawler creates a Crawler. A nil config means defaults. The noise
// filter is extended with the selectors and keywords of the config file.
func NewCrawler(opts ...CrawlOption) *Crawler {
	c := &Crawler{}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg == nil {
		c.cfg = config.NewConfig()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}
	if c.cleaner == nil {
		rules := cleaner.DefaultRules()
		if f := c.cfg.SiteConfigs; f != nil {
			rules = rules.With(f.Noise.Selectors, f.Noise.Keywords)
		}
		c.cleaner = cleaner.New(rules)
	}
	if c.classifier == nil {
		c.classifier = classify.Default()
	}
	return c
}

// Crawl crawls seedURL with the default Crawler configuration.
// See Crawler.Crawl.
func Crawl(ctx context.Context, seedURL string, pageBudget int, opts ...CrawlOption) (*model.ScrapeResult, error) {
	return NewCrawler(opts...).Crawl(ctx, seedURL, pageBudget)
}

// Crawl fetches the seed, discovers and verifies its internal links,
// fetches up to pageBudget-1 prioritized pages and returns the
// aggregated result.
//
// Only an invalid request or a seed page that cannot be fetched is an
// error; match the latter with errors.Is(err, ErrSeedFetch). When ctx is
// done, or the configured deadline passes, after the seed was fetched
// the result holds what was gathered so far and Partial is set.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, pageBudget int) (*model.ScrapeResult, error) {
	start := time.Now()

	seed, err := model.NewSeedRequest(seedURL, pageBudget)
	if err != nil {
		c.recorder.ObserveCrawl(OutcomeInvalid, time.Since(start))
		return nil, err
	}
	p, err := c.Pipeline(seed)
	if err != nil {
		c.recorder.ObserveCrawl(OutcomeInvalid, time.Since(start))
		return nil, err
	}

	if c.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Deadline)
		defer cancel()
	}

	session := model.NewCrawlSession(seed)
	if err := p.Execute(ctx, session); err != nil {
		c.recorder.ObserveCrawl(OutcomeFailed, time.Since(start))
		return nil, err
	}
	if session.Result == nil {
		c.recorder.ObserveCrawl(OutcomeFailed, time.Since(start))
		cause := ctx.Err()
		if cause == nil {
			cause = errStoppedBeforeSeed
		}
		return nil, &SeedError{URL: seed.URL, Err: cause}
	}

	outcome := OutcomeOK
	if session.Result.Partial {
		outcome = OutcomePartial
	}
	c.recorder.ObserveCrawl(outcome, time.Since(start))

	c.logger.Info("crawl complete",
		"seed", seed.URL,
		"pages", session.Result.PageCount(),
		"found", session.Result.TotalPagesFound,
		"partial", session.Result.Partial,
		"elapsed", time.Since(start),
	)
	return session.Result, nil
}

// Pipeline builds the step sequence for seed, applying the site
// settings of the config file.
func (c *Crawler) Pipeline(seed model.SeedRequest) (*Pipeline, error) {
	site := c.cfg.SiteFor(hostOf(seed.URL))

	keyTypes, err := model.ParseLabels(keyTypesFor(site, c.cfg))
	if err != nil {
		return nil, err
	}
	priority := classify.PriorityOptions{KeyTypes: keyTypes}
	if err := priority.Validate(); err != nil {
		return nil, err
	}

	filter := crawler.PathFilter{Ignore: site.IgnorePatterns}

	fetcher := c.fetcher
	if fetcher == nil {
		fetcher = c.newClient(site)
	}

	p := New(WithLogger(c.logger), WithContinueOnError(true))
	p.AddSteps(
		NewSeedStep(fetcher, c.cleaner, filter, c.cfg.SeedTimeout, c.logger),
		NewVerifyStep(fetcher, c.cfg.VerifyConcurrency, filter, c.recorder, c.logger),
		NewClassifyStep(c.classifier),
		NewPrioritizeStep(priority),
		NewFetchPagesStep(FetchPagesConfig{
			Fetcher:    fetcher,
			Cleaner:    c.cleaner,
			Classifier: c.classifier,
			Limiter:    fetch.NewIntervalLimiter(c.cfg.CrawlDelay),
			Timeout:    c.cfg.PageTimeout,
			Recorder:   c.recorder,
			Logger:     c.logger,
		}),
	)
	p.AddFinally(NewAggregateStep())
	return p, nil
}

func (c *Crawler) newClient(site config.SiteConfig) *fetch.Client {
	opts := []fetch.Option{
		fetch.WithUserAgent(c.cfg.UserAgent),
		fetch.WithHeaders(site.Headers),
		fetch.WithCookie(site.Cookie),
		fetch.WithMaxBodySize(c.cfg.MaxBodySize),
		fetch.WithExistsTimeout(c.cfg.ExistsTimeout),
		fetch.WithRetry(c.cfg.MaxAttempts, c.cfg.RetryBackoff),
		fetch.WithRobots(c.cfg.RespectRobots),
		fetch.WithLogger(c.logger),
	}
	if c.fetchRecorder != nil {
		opts = append(opts, fetch.WithRecorder(c.fetchRecorder))
	}
	return fetch.New(opts...)
}

// BudgetFor returns the page budget for seedURL: the site override of
// the config file when set, otherwise the configured budget.
func (c *Crawler) BudgetFor(seedURL string) int {
	if site := c.cfg.SiteFor(hostOf(seedURL)); site.PageBudget > 0 {
		return site.PageBudget
	}
	return c.cfg.PageBudget
}

func keyTypesFor(site config.SiteConfig, cfg *config.Config) []string {
	if len(site.KeyTypes) > 0 {
		return site.KeyTypes
	}
	return cfg.KeyTypes
}

// hostOf returns the host of rawURL, accepting seeds without a scheme.
func hostOf(rawURL string) string {
	if seed, err := model.NewSeedRequest(rawURL, 1); err == nil {
		rawURL = seed.URL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
