// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package pipeline

import (
	"time"

	"github.com/tomtom215/witchframe/internal/envelope"
	"github.com/tomtom215/witchframe/internal/router"
	wtrace "github.com/tomtom215/witchframe/internal/trace"
)

// Config carries everything the assembled pipeline needs beyond the
// endpoint table itself.
type Config struct {
	ProductName    string
	ProductVersion string
	IdleTimeout    time.Duration
	SampleRate     SampleRateFunc
	SampleBudget   *wtrace.Budget // nil disables the absolute per-second sampling cap

	RequestAppender envelope.Appender // receives request.2 envelopes
	ServiceAppender envelope.Appender // receives service.1 envelopes (cancellation, error log)

	EndpointHealth *EndpointHealthTrackers
	Latency        *LatencyTracker // nil disables the performance.latency.v1 diagnostic feed
	GzipEnabled    bool
}

// New assembles the full twenty-layer request pipeline (per §4.7 of the
// framework's design: routing through error-log wrap the terminal
// handler-dispatch service), together with the optional Gzip and
// RecordLatency layers around routing, into a single net/http-compatible
// Service.
func New(table *router.Table, cfg Config) Service {
	b := NewBuilder().
		Use(Gzip(cfg.GzipEnabled)).
		Use(Routing(table)).
		Use(RecordLatency(cfg.Latency)).
		Use(RequestID()).
		Use(TracePropagation(cfg.SampleRate, cfg.SampleBudget)).
		Use(Span()).
		Use(UnverifiedJWT()).
		Use(MDCScope()).
		Use(WitchcraftMDC()).
		Use(RequestLog(cfg.RequestAppender)).
		Use(Deprecation()).
		Use(KeepAlive(cfg.IdleTimeout)).
		Use(ServerHeader(cfg.ProductName, cfg.ProductVersion)).
		Use(NoCaching()).
		Use(WebSecurity()).
		Use(TraceIDHeader()).
		Use(EndpointMetrics()).
		Use(EndpointHealth(cfg.EndpointHealth)).
		Use(CancellationWatchdog(cfg.ServiceAppender)).
		// ErrorLog wraps CatchUnwind rather than the reverse: Go's
		// recover() only resumes its own caller normally, unlike the
		// future-based catch_unwind this is modeled on, which converts a
		// panic into a plain Err value any outer layer can observe
		// regardless of nesting direction. Putting the recovering layer
		// closer to the handler lets error-log see the synthesized error
		// on a normal return instead of the panic bypassing it.
		Use(ErrorLog(cfg.ServiceAppender)).
		Use(CatchUnwind())

	return b.Build(Dispatch())
}
