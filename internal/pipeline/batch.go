package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitescout/internal/model"
)

// BatchResult is the outcome of one seed in a batch.
type BatchResult struct {
	// Seed is the seed URL as given.
	Seed string

	// Result is nil when Err is set.
	Result *model.ScrapeResult

	// Err is the crawl error, if any.
	Err error
}

// BatchProcessor crawls several seeds concurrently. Every crawl is
// independent; one failing seed does not affect the others.
type BatchProcessor struct {
	crawler     *Crawler
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent crawls.
// Default is 2 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor that runs crawls with c.
func NewBatchProcessor(c *Crawler, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		crawler:     c,
		concurrency: 2,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch crawls every seed and returns one BatchResult per seed in
// input order. Each seed uses the budget returned by Crawler.BudgetFor.
// The error is non-nil only when ctx was done before every crawl
// started; the seeds that never ran carry the context error.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, seeds []string) ([]BatchResult, error) {
	results := make([]BatchResult, len(seeds))
	err := bp.ProcessBatchWithCallback(ctx, seeds, func(r BatchResult, index int) {
		results[index] = r
	})
	return results, err
}

// ProcessBatchWithCallback crawls every seed and calls callback with the
// result and the seed's index as each crawl finishes. callback is called
// from the crawling goroutine and must be safe for concurrent use when
// it touches shared state other than distinct slice indexes.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	seeds []string,
	callback func(result BatchResult, index int),
) error {
	bp.logger.Info("starting batch crawl",
		"total_seeds", len(seeds),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				callback(BatchResult{Seed: seed, Err: err}, i)
				return err
			}

			result, err := bp.crawler.Crawl(gctx, seed, bp.crawler.BudgetFor(seed))
			if err != nil {
				bp.logger.Warn("crawl failed", "seed", seed, "error", err)
			}
			callback(BatchResult{Seed: seed, Result: result, Err: err}, i)

			// A failed seed must not cancel its siblings.
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch crawl complete",
		"total_seeds", len(seeds),
		"elapsed", time.Since(startTime),
	)
	return err
}
