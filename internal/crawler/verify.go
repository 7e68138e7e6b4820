package crawler

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitescout/internal/model"
)

// Verification pool bounds.
const (
	DefaultVerifyConcurrency = 6
	MinVerifyConcurrency     = 1
	MaxVerifyConcurrency     = 8
)

// ProbeThreshold is the number of verified links below which
// conventional paths are probed.
const ProbeThreshold = 3

// conventionalSlugs are probed on link-poor sites.
var conventionalSlugs = []string{
	"about", "about-us", "our-team", "team", "products",
	"services", "contact", "contact-us", "news", "blog",
}

// Checker reports whether a URL exists. fetch.Client implements it.
type Checker interface {
	Exists(ctx context.Context, url string) bool
}

// Verifier checks candidates with a bounded worker pool. Results do not
// depend on completion order: kept candidates stay in discovery order.
type Verifier struct {
	checker     Checker
	concurrency int
	logger      *slog.Logger
}

// NewVerifier creates a Verifier. concurrency is clamped to 1..8.
func NewVerifier(checker Checker, concurrency int, logger *slog.Logger) *Verifier {
	if concurrency < MinVerifyConcurrency {
		concurrency = DefaultVerifyConcurrency
	}
	if concurrency > MaxVerifyConcurrency {
		concurrency = MaxVerifyConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{checker: checker, concurrency: concurrency, logger: logger}
}

// Verify returns the candidates that exist, in input order. Candidates
// not checked before ctx is done are dropped.
func (v *Verifier) Verify(ctx context.Context, candidates []model.LinkCandidate) []model.LinkCandidate {
	alive := make([]bool, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, c := range candidates {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			alive[i] = v.checker.Exists(gctx, c.TargetURL)
			if !alive[i] {
				v.logger.Debug("dropping dead link", "url", c.TargetURL, "source", string(c.Source))
			}
			return nil
		})
	}
	_ = g.Wait()

	kept := make([]model.LinkCandidate, 0, len(candidates))
	for i, c := range candidates {
		if alive[i] {
			kept = append(kept, c)
		}
	}
	return kept
}

// Probe checks the conventional slugs below origin that are not in
// known yet and returns the ones that exist as candidates.
func (v *Verifier) Probe(ctx context.Context, origin string, known *Seen) []model.LinkCandidate {
	origin = strings.TrimRight(origin, "/")

	var probes []model.LinkCandidate
	for _, slug := range conventionalSlugs {
		target := origin + "/" + slug
		c, err := Canonicalize(target, "")
		if err != nil || known.Has(c.String()) {
			continue
		}
		probes = append(probes, model.LinkCandidate{
			TargetURL:   c.String(),
			ContextText: strings.ReplaceAll(slug, "-", " "),
			Source:      model.SourceProbe,
		})
	}
	return v.Verify(ctx, probes)
}
