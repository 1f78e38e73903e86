// Package metrics exposes Prometheus collectors for the link-graph manager.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	frontierDepth          prometheus.Gauge
	graphDomains           prometheus.Gauge
	graphVisited           prometheus.Gauge
	graphRedirects         prometheus.Gauge
	savesTotal             *prometheus.CounterVec
	purgedDomainsTotal     prometheus.Counter
	storeWriteFailureTotal prometheus.Counter
	storeLoadFailureTotal  prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		frontierDepth = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "webgraph_frontier_depth",
				Help: "Number of URLs currently awaiting a fetch attempt.",
			},
		)

		graphDomains = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "webgraph_graph_domains",
				Help: "Number of fetched domain entries in the link graph.",
			},
		)

		graphVisited = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "webgraph_graph_visited",
				Help: "Number of visit timestamps recorded in the link graph.",
			},
		)

		graphRedirects = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "webgraph_graph_redirects",
				Help: "Number of redirect mappings recorded in the link graph.",
			},
		)

		savesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webgraph_saves_total",
				Help: "Total number of domain save operations, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		purgedDomainsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webgraph_purged_domains_total",
				Help: "Total number of domain entries evicted by purge sweeps.",
			},
		)

		storeWriteFailureTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webgraph_store_write_failures_total",
				Help: "Total number of snapshot writes that failed and were discarded.",
			},
		)

		storeLoadFailureTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webgraph_store_load_failures_total",
				Help: "Total number of snapshot loads that fell back to an empty graph.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SetFrontierDepth records the current frontier size.
func SetFrontierDepth(n int) {
	frontierDepth.Set(float64(n))
}

// SetGraphSizes records the sizes of the three graph maps.
func SetGraphSizes(domains, visited, redirects int) {
	graphDomains.Set(float64(domains))
	graphVisited.Set(float64(visited))
	graphRedirects.Set(float64(redirects))
}

// ObserveSave increments the save counter for the given outcome
// ("stored" or "purged").
func ObserveSave(outcome string) {
	savesTotal.WithLabelValues(outcome).Inc()
}

// ObservePurgedDomains adds n evicted entries to the purge counter.
func ObservePurgedDomains(n int) {
	if n > 0 {
		purgedDomainsTotal.Add(float64(n))
	}
}

// ObserveStoreWriteFailure increments the discarded-write counter.
func ObserveStoreWriteFailure() {
	storeWriteFailureTotal.Inc()
}

// ObserveStoreLoadFailure increments the load-fallback counter.
func ObserveStoreLoadFailure() {
	storeLoadFailureTotal.Inc()
}
