package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "feedback", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "feedback", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	DeliveryEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "feedback", Name: "delivery_events_total", Help: "Sink delivery outcomes."},
		[]string{"strategy", "outcome"}, // strategy: beacon|fallback|none; outcome: accepted|sent|failed|skipped
	)
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "feedback", Name: "submissions_total", Help: "Feedback submissions by type and outcome."},
		[]string{"type", "outcome"}, // outcome: dispatched|succeeded|failed
	)
	StoreEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "feedback", Name: "identity_store_events_total", Help: "Identity store hits/misses/sets."},
		[]string{"store", "event"}, // event: hit|miss|set
	)
)

// Serve starts the optional standalone metrics listener when METRICS_ADDR is set.
func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

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
	reg.MustRegister(HTTPRequests, HTTPLatency, DeliveryEvents, Submissions, StoreEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveDelivery(strategy, outcome string) {
	DeliveryEvents.WithLabelValues(strategy, outcome).Inc()
}

func ObserveSubmission(typ, outcome string) {
	Submissions.WithLabelValues(typ, outcome).Inc()
}

func ObserveStore(store, event string) { // event: hit|miss|set
	StoreEvents.WithLabelValues(store, event).Inc()
}
