// Package metrics counts what the client does against the backend.
// The Collector interface keeps packages decoupled from prometheus;
// Nop is used in tests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records provider and cache activity
type Collector interface {
	RequestCompleted(operation, outcome string, seconds float64)
	CacheHit(operation string)
	CacheMiss(operation string)
	FallbackServed(operation string)
}

type promCollector struct {
	requests  *prometheus.HistogramVec
	cacheHits *prometheus.CounterVec
	cacheMiss *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
}

// NewPrometheus registers the collectors on reg and returns a Collector
func NewPrometheus(reg prometheus.Registerer) Collector {
	factory := promauto.With(reg)
	return &promCollector{
		requests: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "comicshelf_provider_request_duration_seconds",
			Help:    "Provider operation latency by outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "comicshelf_cache_hits_total",
			Help: "Listing cache hits per operation.",
		}, []string{"operation"}),
		cacheMiss: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "comicshelf_cache_misses_total",
			Help: "Listing cache misses per operation.",
		}, []string{"operation"}),
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "comicshelf_fallback_served_total",
			Help: "Reads answered by the offline catalog after a backend failure.",
		}, []string{"operation"}),
	}
}

func (c *promCollector) RequestCompleted(operation, outcome string, seconds float64) {
	c.requests.WithLabelValues(operation, outcome).Observe(seconds)
}

func (c *promCollector) CacheHit(operation string) {
	c.cacheHits.WithLabelValues(operation).Inc()
}

func (c *promCollector) CacheMiss(operation string) {
	c.cacheMiss.WithLabelValues(operation).Inc()
}

func (c *promCollector) FallbackServed(operation string) {
	c.fallbacks.WithLabelValues(operation).Inc()
}

type nopCollector struct{}

// Nop returns a Collector that discards everything
func Nop() Collector { return nopCollector{} }

func (nopCollector) RequestCompleted(string, string, float64) {}
func (nopCollector) CacheHit(string)                          {}
func (nopCollector) CacheMiss(string)                         {}
func (nopCollector) FallbackServed(string)                    {}
