// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package pipeline

import (
	"net/http"
	"sort"
	"sync"
	"time"
)

// sample is one completed request's latency, kept only long enough to
// compute rolling percentiles; RequestLog already persists every
// individual observation, so this exists purely for the on-demand
// diagnostic below.
type sample struct {
	route      string
	durationMS int64
}

// LatencyTracker keeps a bounded sliding window of recent per-route
// latencies and answers on-demand percentile queries, independent of
// (and cheaper to query ad hoc than) the Prometheus histograms
// EndpointMetrics feeds: an operator hitting the diagnostic endpoint
// during an incident gets p50/p95/p99 without standing up a query
// against the metrics backend first.
type LatencyTracker struct {
	mu         sync.Mutex
	samples    []sample
	maxSamples int
}

// NewLatencyTracker creates a tracker retaining up to maxSamples most
// recent observations.
func NewLatencyTracker(maxSamples int) *LatencyTracker {
	if maxSamples <= 0 {
		maxSamples = 1000
	}
	return &LatencyTracker{maxSamples: maxSamples}
}

func (t *LatencyTracker) record(route string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = append(t.samples, sample{route: route, durationMS: d.Milliseconds()})
	if len(t.samples) > t.maxSamples {
		t.samples = t.samples[len(t.samples)-t.maxSamples:]
	}
}

// RouteStats summarizes one route's latency distribution across the
// current window.
type RouteStats struct {
	Route        string `json:"route"`
	RequestCount int    `json:"requestCount"`
	P50Millis    int64  `json:"p50Millis"`
	P95Millis    int64  `json:"p95Millis"`
	P99Millis    int64  `json:"p99Millis"`
}

// Snapshot computes per-route percentile statistics over the current
// window, sorted by request count descending.
func (t *LatencyTracker) Snapshot() []RouteStats {
	t.mu.Lock()
	byRoute := make(map[string][]int64, len(t.samples))
	for _, s := range t.samples {
		byRoute[s.route] = append(byRoute[s.route], s.durationMS)
	}
	t.mu.Unlock()

	out := make([]RouteStats, 0, len(byRoute))
	for route, durations := range byRoute {
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
		out = append(out, RouteStats{
			Route:        route,
			RequestCount: len(durations),
			P50Millis:    percentile(durations, 0.50),
			P95Millis:    percentile(durations, 0.95),
			P99Millis:    percentile(durations, 0.99),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestCount > out[j].RequestCount })
	return out
}

func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// LatencyDiagnosticType is the diagnostic.Registry type under which
// (*LatencyTracker).Snapshot is exposed.
const LatencyDiagnosticType = "performance.latency.v1"

// RecordLatency is pipeline layer that feeds a LatencyTracker; it sits
// alongside EndpointMetrics rather than replacing it; tracker may be nil,
// in which case this layer is a no-op pass-through.
func RecordLatency(tracker *LatencyTracker) Layer {
	return func(inner Service) Service {
		if tracker == nil {
			return inner
		}
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			inner.Call(w, r)
			ext := FromContext(r.Context())
			route := ext.ServiceName + "." + ext.EndpointName
			if ext.EndpointName == "" {
				route = r.Method + " " + r.URL.Path
			}
			tracker.record(route, time.Since(start))
		})
	}
}
