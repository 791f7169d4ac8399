// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package envelope

import "github.com/tomtom215/witchframe/internal/metrics"

// MetricsAppender converts metric.1 envelopes into Prometheus
// observations instead of writing bytes anywhere. Non-metric envelopes
// are ignored, so it is meant to sit alongside a JSONAppender in a
// FanOut, not to replace it.
type MetricsAppender struct{}

// NewMetricsAppender returns a MetricsAppender.
func NewMetricsAppender() *MetricsAppender {
	return &MetricsAppender{}
}

func (m *MetricsAppender) Append(e Envelope) {
	if e.Type != TypeMetric || e.Metric == nil {
		return
	}
	switch e.Metric.Type {
	case "gauge":
		metrics.SetAppenderQueueDepth(e.Metric.Name, int(e.Metric.Value))
	default:
		// Envelopes of any other metric type are ignored here; counters
		// and histograms are recorded through the typed internal/metrics
		// helpers instead.
	}
}

func (m *MetricsAppender) Close() error { return nil }
