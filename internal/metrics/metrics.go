// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var registry = prometheus.NewRegistry()

var (
	activeRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "witchframe",
		Subsystem: "http",
		Name:      "active_requests",
		Help:      "Number of HTTP requests currently being handled.",
	})

	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "witchframe",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests, labeled by method, route and status.",
	}, []string{"method", "route", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "witchframe",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency distribution, labeled by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	connectionsAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "witchframe",
		Subsystem: "connections",
		Name:      "accepted_total",
		Help:      "Total TCP connections accepted.",
	})

	connectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "witchframe",
		Subsystem: "connections",
		Name:      "active",
		Help:      "Currently open TCP connections.",
	})

	connectionsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "witchframe",
		Subsystem: "connections",
		Name:      "rejected_total",
		Help:      "Connections rejected, labeled by reason (limit, tls_handshake).",
	}, []string{"reason"})

	connectionsIdleClosed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "witchframe",
		Subsystem: "connections",
		Name:      "idle_closed_total",
		Help:      "Connections closed for exceeding the idle timeout.",
	})

	tlsHandshakeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "witchframe",
		Subsystem: "connections",
		Name:      "tls_handshake_duration_seconds",
		Help:      "TLS handshake latency distribution.",
		Buckets:   prometheus.DefBuckets,
	})

	appenderQueueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "witchframe",
		Subsystem: "log_appender",
		Name:      "queue_depth",
		Help:      "Current depth of an asynchronous log appender's queue.",
	}, []string{"appender"})

	appenderDropsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "witchframe",
		Subsystem: "log_appender",
		Name:      "drops_total",
		Help:      "Log entries dropped by an asynchronous appender under backpressure.",
	}, []string{"appender"})
)

func init() {
	registry.MustRegister(
		activeRequests,
		requestsTotal,
		requestDuration,
		connectionsAccepted,
		connectionsActive,
		connectionsRejected,
		connectionsIdleClosed,
		tlsHandshakeDuration,
		appenderQueueDepth,
		appenderDropsTotal,
	)
}

// Registry returns the package-level Prometheus registry. Callers expose
// it over HTTP with promhttp.HandlerFor(metrics.Registry(), ...).
func Registry() *prometheus.Registry {
	return registry
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		activeRequests.Inc()
	} else {
		activeRequests.Dec()
	}
}

// RecordAPIRequest records a completed request's outcome and latency.
// route should be the matched route template, not the raw path, to keep
// label cardinality bounded.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	requestsTotal.WithLabelValues(method, route, status).Inc()
	requestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ConnectionAccepted records a newly accepted TCP connection.
func ConnectionAccepted() {
	connectionsAccepted.Inc()
	connectionsActive.Inc()
}

// ConnectionClosed records a connection leaving the active set.
func ConnectionClosed() {
	connectionsActive.Dec()
}

// ConnectionRejected records a connection refused for the given reason.
func ConnectionRejected(reason string) {
	connectionsRejected.WithLabelValues(reason).Inc()
}

// ConnectionIdleClosed records a connection closed for idling out.
func ConnectionIdleClosed() {
	connectionsIdleClosed.Inc()
	connectionsActive.Dec()
}

// RecordTLSHandshake records the duration of a completed TLS handshake.
func RecordTLSHandshake(duration time.Duration) {
	tlsHandshakeDuration.Observe(duration.Seconds())
}

// SetAppenderQueueDepth reports the current queue depth for a named appender.
func SetAppenderQueueDepth(appender string, depth int) {
	appenderQueueDepth.WithLabelValues(appender).Set(float64(depth))
}

// RecordAppenderDrop records a dropped log entry for a named appender.
func RecordAppenderDrop(appender string) {
	appenderDropsTotal.WithLabelValues(appender).Inc()
}
