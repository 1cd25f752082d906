// Package metrics holds Prometheus collectors of the scanner. A nil *Metrics
// is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mm_scanner"

type Metrics struct {
	proxyAcquireWait *prometheus.HistogramVec
	proxyReleases    *prometheus.CounterVec
	apiRequests      *prometheus.CounterVec
	apiDuration      *prometheus.HistogramVec
	pages            *prometheus.CounterVec
	crawlDuration    *prometheus.HistogramVec
	offers           *prometheus.CounterVec
	alerts           *prometheus.CounterVec
	purged           prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		proxyAcquireWait: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "proxy_acquire_wait_seconds",
			Help:      "Time spent waiting for a proxy permit.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"proxy"}),
		proxyReleases: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proxy_releases_total",
			Help:      "Proxy permit releases by outcome.",
		}, []string{"proxy", "outcome"}),
		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Upstream API calls by endpoint and result.",
		}, []string{"endpoint", "result"}),
		apiDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_call_duration_seconds",
			Help:      "Duration of a logical API call including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		pages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Catalog pages by status.",
		}, []string{"job", "status"}),
		crawlDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "crawl_duration_seconds",
			Help:      "Duration of one crawl run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"job"}),
		offers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_total",
			Help:      "Offers seen by the pipeline by status.",
		}, []string{"status"}),
		alerts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Published alerts by channel.",
		}, []string{"channel"}),
		purged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_purged_total",
			Help:      "Offer records removed by retention.",
		}),
	}
}

func (m *Metrics) ObserveAcquire(proxyID string, wait time.Duration) {
	if m == nil {
		return
	}

	m.proxyAcquireWait.WithLabelValues(proxyID).Observe(wait.Seconds())
}

func (m *Metrics) ObserveRelease(proxyID string, outcome string) {
	if m == nil {
		return
	}

	m.proxyReleases.WithLabelValues(proxyID, outcome).Inc()
}

func (m *Metrics) ObserveAPICall(endpoint, result string, d time.Duration) {
	if m == nil {
		return
	}

	m.apiRequests.WithLabelValues(endpoint, result).Inc()
	m.apiDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Metrics) ObservePage(job, status string) {
	if m == nil {
		return
	}

	m.pages.WithLabelValues(job, status).Inc()
}

func (m *Metrics) ObserveCrawl(job string, d time.Duration) {
	if m == nil {
		return
	}

	m.crawlDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *Metrics) ObserveOffer(status string) {
	if m == nil {
		return
	}

	m.offers.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveAlert(channel string) {
	if m == nil {
		return
	}

	m.alerts.WithLabelValues(channel).Inc()
}

func (m *Metrics) ObservePurge(n int64) {
	if m == nil || n <= 0 {
		return
	}

	m.purged.Add(float64(n))
}
