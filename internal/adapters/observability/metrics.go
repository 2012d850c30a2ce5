package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hotelsearch"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	QueryLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "query_duration_seconds",
			Help:    "Engine query duration seconds, cache excluded.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"op"}, // op: suggest|search|search_geo
	)
	QueryResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "query_results",
			Help:    "Matches per engine query.",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"op"},
	)
	IndexBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "index_builds_total", Help: "Engine (re)builds."},
		[]string{"status"}, // status: ok|error
	)
	IndexBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "index_build_duration_seconds",
			Help:    "Time to load the catalog and build the index.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)
	CatalogHotels = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: namespace, Name: "catalog_hotels", Help: "Hotels in the serving engine."},
	)
	IndexTokens = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: namespace, Name: "index_tokens", Help: "Distinct tokens in the serving index."},
	)
)

// Serve exposes reg on addr in the background. An empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		QueryLatency, QueryResults, IndexBuilds, IndexBuildDuration, CatalogHotels, IndexTokens,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveQuery(op string, results int, dur time.Duration) {
	QueryLatency.WithLabelValues(op).Observe(dur.Seconds())
	QueryResults.WithLabelValues(op).Observe(float64(results))
}

// ObserveIndexBuild records one engine build. hotels and tokens are only
// published when the build succeeded.
func ObserveIndexBuild(err error, hotels, tokens int, dur time.Duration) {
	if err != nil {
		IndexBuilds.WithLabelValues("error").Inc()
		return
	}
	IndexBuilds.WithLabelValues("ok").Inc()
	IndexBuildDuration.Observe(dur.Seconds())
	CatalogHotels.Set(float64(hotels))
	IndexTokens.Set(float64(tokens))
}

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}

// Recorder forwards engine and query samples to the package collectors.
type Recorder struct{}

func (Recorder) ObserveQuery(op string, results int, dur time.Duration) {
	ObserveQuery(op, results, dur)
}

func (Recorder) ObserveIndexBuild(err error, hotels, tokens int, dur time.Duration) {
	ObserveIndexBuild(err, hotels, tokens, dur)
}
