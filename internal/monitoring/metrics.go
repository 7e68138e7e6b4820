package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nao1215/sitescout/internal/model"
)

const namespace = "sitescout"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec
	RetriesTotal  *prometheus.CounterVec
	LinksTotal    *prometheus.CounterVec
	PagesTotal    *prometheus.CounterVec
	CrawlsTotal   *prometheus.CounterVec
	CrawlDuration prometheus.Histogram
}

// NewMetrics creates the metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests sent, by method and outcome.",
		}, []string{"method", "outcome"}),
		RetriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_retries_total",
			Help:      "HTTP requests retried after a 5xx or 429 response.",
		}, []string{"method"}),
		LinksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_verified_total",
			Help:      "Discovered links checked for existence, by result.",
		}, []string{"result"}), // kept, dropped
		PagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Prioritized pages fetched, by label and result.",
		}, []string{"label", "result"}),
		CrawlsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crawls_total",
			Help:      "Crawls finished, by outcome.",
		}, []string{"outcome"}),
		CrawlDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "crawl_duration_seconds",
			Help:      "Wall time of a crawl.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		}),
	}
}

// ObserveRequest implements fetch.Recorder.
func (m *Metrics) ObserveRequest(method, outcome string) {
	m.RequestsTotal.WithLabelValues(method, outcome).Inc()
}

// ObserveRetry implements fetch.Recorder.
func (m *Metrics) ObserveRetry(method string) {
	m.RetriesTotal.WithLabelValues(method).Inc()
}

// ObserveLinks implements pipeline.Recorder.
func (m *Metrics) ObserveLinks(kept, dropped int) {
	m.LinksTotal.WithLabelValues("kept").Add(float64(kept))
	m.LinksTotal.WithLabelValues("dropped").Add(float64(dropped))
}

// ObservePage implements pipeline.Recorder.
func (m *Metrics) ObservePage(label model.Label, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.PagesTotal.WithLabelValues(label.String(), result).Inc()
}

// ObserveCrawl implements pipeline.Recorder.
func (m *Metrics) ObserveCrawl(outcome string, elapsed time.Duration) {
	m.CrawlsTotal.WithLabelValues(outcome).Inc()
	m.CrawlDuration.Observe(elapsed.Seconds())
}
