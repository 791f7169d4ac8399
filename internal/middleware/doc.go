// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package middleware is retained as a placeholder for the standalone
net/http middleware this module used before request handling moved onto
the internal/pipeline Service/Layer chain.

Gzip compression and latency-percentile tracking were adapted into
pipeline.Gzip and pipeline.RecordLatency, where they run as ordinary
pipeline layers instead of an independent http.HandlerFunc stack.
Request-ID generation and Prometheus instrumentation were retired rather
than adapted: internal/pipeline already generates one request ID per
request (RequestID, propagated through the Extensions bag and MDC) and
already records API request metrics (EndpointMetrics), so keeping a
second, independently-generated request ID or a second, redundant metric
recording here would have meant two different identifiers or double-
counted samples for the same request.
*/
package middleware
