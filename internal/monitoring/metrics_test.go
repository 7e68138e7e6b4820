package monitoring

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nao1215/sitescout/internal/fetch"
	"github.com/nao1215/sitescout/internal/model"
	"github.com/nao1215/sitescout/internal/pipeline"
)

var (
	_ fetch.Recorder    = (*Metrics)(nil)
	_ pipeline.Recorder = (*Metrics)(nil)
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	t.Run("counts requests and retries", func(t *testing.T) {
		t.Parallel()

		m := NewMetrics(prometheus.NewRegistry())
		m.ObserveRequest("GET", "ok")
		m.ObserveRequest("GET", "ok")
		m.ObserveRequest("HEAD", "status")
		m.ObserveRetry("GET")

		if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "ok")); got != 2 {
			t.Errorf("GET ok = %v, want 2", got)
		}
		if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("HEAD", "status")); got != 1 {
			t.Errorf("HEAD status = %v, want 1", got)
		}
		if got := testutil.ToFloat64(m.RetriesTotal.WithLabelValues("GET")); got != 1 {
			t.Errorf("retries = %v, want 1", got)
		}
	})

	t.Run("counts links and pages", func(t *testing.T) {
		t.Parallel()

		m := NewMetrics(prometheus.NewRegistry())
		m.ObserveLinks(3, 2)
		m.ObserveLinks(1, 0)
		m.ObservePage(model.LabelTeam, true)
		m.ObservePage(model.LabelTeam, false)

		if got := testutil.ToFloat64(m.LinksTotal.WithLabelValues("kept")); got != 4 {
			t.Errorf("kept = %v, want 4", got)
		}
		if got := testutil.ToFloat64(m.LinksTotal.WithLabelValues("dropped")); got != 2 {
			t.Errorf("dropped = %v, want 2", got)
		}
		if got := testutil.ToFloat64(m.PagesTotal.WithLabelValues("team", "failed")); got != 1 {
			t.Errorf("team failed = %v, want 1", got)
		}
	})

	t.Run("records crawl outcome and duration", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		m := NewMetrics(reg)
		m.ObserveCrawl(pipeline.OutcomePartial, 3*time.Second)

		if got := testutil.ToFloat64(m.CrawlsTotal.WithLabelValues("partial")); got != 1 {
			t.Errorf("partial crawls = %v, want 1", got)
		}

		expected := `
# HELP sitescout_crawl_duration_seconds Wall time of a crawl.
# TYPE sitescout_crawl_duration_seconds histogram
sitescout_crawl_duration_seconds_bucket{le="1"} 0
sitescout_crawl_duration_seconds_bucket{le="2.5"} 0
sitescout_crawl_duration_seconds_bucket{le="5"} 1
sitescout_crawl_duration_seconds_bucket{le="10"} 1
sitescout_crawl_duration_seconds_bucket{le="20"} 1
sitescout_crawl_duration_seconds_bucket{le="30"} 1
sitescout_crawl_duration_seconds_bucket{le="60"} 1
sitescout_crawl_duration_seconds_bucket{le="120"} 1
sitescout_crawl_duration_seconds_bucket{le="+Inf"} 1
sitescout_crawl_duration_seconds_sum 3
sitescout_crawl_duration_seconds_count 1
`
		if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "sitescout_crawl_duration_seconds"); err != nil {
			t.Error(err)
		}
	})

	t.Run("registers every collector", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		m := NewMetrics(reg)
		m.ObserveRequest("GET", "ok")
		m.ObserveRetry("GET")
		m.ObserveLinks(1, 1)
		m.ObservePage(model.LabelAbout, true)
		m.ObserveCrawl(pipeline.OutcomeOK, time.Second)

		n, err := testutil.GatherAndCount(reg)
		if err != nil {
			t.Fatal(err)
		}
		// requests 1, retries 1, links 2, pages 1, crawls 1, duration 1
		if n != 7 {
			t.Errorf("gathered %d series, want 7", n)
		}
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		NewMetrics(reg)
		defer func() {
			if recover() == nil {
				t.Error("expected panic on duplicate registration")
			}
		}()
		NewMetrics(reg)
	})
}
