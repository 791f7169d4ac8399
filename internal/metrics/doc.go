// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package metrics exposes Prometheus collectors for the framework runtime.

Metrics are grouped by subsystem rather than by business feature:

  - Connection metrics: accepted/active/rejected connection counts, TLS
    handshake duration, idle-connection closures.
  - Endpoint metrics: per-route request counters and latency histograms,
    keyed by the route template (not the raw path, to keep cardinality
    bounded), plus a single unlabeled in-flight request gauge.
  - Appender metrics: queue depth gauges and drop counters for the
    asynchronous log appenders, so operators can see backpressure before
    it becomes log loss.

All collectors are registered against a package-level prometheus.Registry
that callers obtain via Registry() and expose over HTTP with
promhttp.HandlerFor.
*/
package metrics
