package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	PageRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "inbox_page_requests_total", Help: "Message page requests"},
		[]string{"path", "outcome"},
	)
	CacheResolver = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "inbox_cache_resolver_total", Help: "Cache-aside resolver outcomes"},
		[]string{"result"},
	)
	EnrichFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "inbox_enrich_failures_total", Help: "Enrichment failures by stage"},
		[]string{"stage"},
	)
	BlobFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "inbox_blob_fetch_total", Help: "Content blob fetch outcomes"},
		[]string{"result"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "inbox_http_requests_total", Help: "HTTP requests"},
		[]string{"endpoint", "status"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(PageRequests, CacheResolver, EnrichFailures, BlobFetches, HTTPRequests)
}
