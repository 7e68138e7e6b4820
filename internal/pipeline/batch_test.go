package pipeline

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewBatchProcessor(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(NewCrawler())
		if bp.concurrency != 2 {
			t.Errorf("expected default concurrency 2, got %d", bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		if bp := NewBatchProcessor(NewCrawler(), WithConcurrency(0)); bp.concurrency != 2 {
			t.Errorf("concurrency = %d, want 2", bp.concurrency)
		}
		if bp := NewBatchProcessor(NewCrawler(), WithConcurrency(5)); bp.concurrency != 5 {
			t.Errorf("concurrency = %d, want 5", bp.concurrency)
		}
	})
}

func TestProcessBatch(t *testing.T) {
	t.Parallel()

	good := newSite(t, cleanSitePages(), map[string]http.HandlerFunc{"/gone": gone})
	broken := newSite(t, nil, map[string]http.HandlerFunc{
		"/": func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) },
	})

	c := NewCrawler(WithConfig(testConfig()), WithCrawlLogger(quietLogger()))
	bp := NewBatchProcessor(c, WithConcurrency(2), WithBatchLogger(quietLogger()))

	seeds := []string{good.URL, broken.URL, good.URL + "/"}
	results, err := bp.ProcessBatch(context.Background(), seeds)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if len(results) != len(seeds) {
		t.Fatalf("got %d results, want %d", len(results), len(seeds))
	}

	for i, r := range results {
		if r.Seed != seeds[i] {
			t.Errorf("result %d has seed %s, want %s", i, r.Seed, seeds[i])
		}
	}
	if results[0].Err != nil || results[0].Result == nil || results[0].Result.PageCount() != 4 {
		t.Errorf("first seed: %+v", results[0])
	}
	if !errors.Is(results[1].Err, ErrSeedFetch) || results[1].Result != nil {
		t.Errorf("broken seed: %+v", results[1])
	}
	if results[2].Err != nil || results[2].Result == nil {
		t.Errorf("third seed must not be affected by the broken one: %+v", results[2])
	}
}

func TestProcessBatchRespectsConcurrency(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	slowHome := func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Acme</title></head><body><p>Hello.</p></body></html>`))
	}
	server := newSite(t, nil, map[string]http.HandlerFunc{"/": slowHome})

	cfg := testConfig()
	cfg.PageBudget = 1
	c := NewCrawler(WithConfig(cfg), WithCrawlLogger(quietLogger()))
	bp := NewBatchProcessor(c, WithConcurrency(2), WithBatchLogger(quietLogger()))

	seeds := make([]string, 6)
	for i := range seeds {
		seeds[i] = server.URL
	}

	var mu sync.Mutex
	var done []int
	err := bp.ProcessBatchWithCallback(context.Background(), seeds, func(r BatchResult, index int) {
		mu.Lock()
		defer mu.Unlock()
		if r.Err != nil {
			t.Errorf("seed %d: %v", index, r.Err)
		}
		done = append(done, index)
	})
	if err != nil {
		t.Fatalf("ProcessBatchWithCallback() error = %v", err)
	}
	if len(done) != len(seeds) {
		t.Errorf("callback called %d times, want %d", len(done), len(seeds))
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrent seed fetches = %d, want at most 2", p)
	}
}

func TestProcessBatchCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bp := NewBatchProcessor(NewCrawler(WithConfig(testConfig()), WithCrawlLogger(quietLogger())),
		WithBatchLogger(quietLogger()))

	results, err := bp.ProcessBatch(ctx, []string{"https://acme.io", "https://example.org"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ProcessBatch() error = %v, want context.Canceled", err)
	}
	for i, r := range results {
		if r.Err == nil || r.Result != nil {
			t.Errorf("result %d = %+v, want a context error", i, r)
		}
	}
}
