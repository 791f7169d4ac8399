// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package endpoint

import (
	"sync"
	"time"
)

// rollingWindow is the span over which each endpoint's 5xx ratio is
// computed; chosen to match the framework's PANICS health check window
// so the two share one notion of "recent".
const rollingWindow = 5 * time.Minute

const bucketCount = 30 // 10s buckets across a 5-minute window

type bucket struct {
	total  int
	errors int
	at     time.Time
}

// HealthTracker maintains a rolling request/error count for a single
// endpoint, bucketed by time so old activity ages out without an
// unbounded history.
type HealthTracker struct {
	mu      sync.Mutex
	buckets [bucketCount]bucket
}

// NewHealthTracker returns an empty tracker.
func NewHealthTracker() *HealthTracker { return &HealthTracker{} }

// Observe records one completed request with the given response status.
func (h *HealthTracker) Observe(status int) {
	now := time.Now()
	idx := h.bucketIndex(now)

	h.mu.Lock()
	defer h.mu.Unlock()
	b := &h.buckets[idx]
	if now.Sub(b.at) >= rollingWindow/bucketCount {
		*b = bucket{at: now}
	}
	b.total++
	if status >= 500 {
		b.errors++
	}
}

func (h *HealthTracker) bucketIndex(t time.Time) int {
	return int(t.Unix()/int64((rollingWindow/bucketCount).Seconds())) % bucketCount
}

// Ratio returns the fraction of requests in the last rollingWindow that
// resulted in a 5xx status, and the total request count observed.
func (h *HealthTracker) Ratio() (ratio float64, total int) {
	cutoff := time.Now().Add(-rollingWindow)

	h.mu.Lock()
	defer h.mu.Unlock()
	var errs int
	for _, b := range h.buckets {
		if b.at.Before(cutoff) {
			continue
		}
		total += b.total
		errs += b.errors
	}
	if total == 0 {
		return 0, 0
	}
	return float64(errs) / float64(total), total
}
