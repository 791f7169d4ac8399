// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package trace

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Context is the active trace context threaded through a request's
// pipeline layers: the trace and span identifiers plus whether this
// trace was selected for detailed sampling.
type Context struct {
	TraceID oteltrace.TraceID
	SpanID  oteltrace.SpanID
	Sampled bool
}

// B3SingleHeader is the single-header B3 propagation format:
// traceId-spanId-sampled-parentSpanId, trailing fields optional.
const B3SingleHeader = "b3"

// W3C traceparent format: 00-traceId-spanId-flags.
const TraceparentHeader = "traceparent"

// Extract parses an inbound request's B3 or W3C trace headers. ok is
// false when neither header is present or well-formed, signaling the
// caller should mint a new trace root via New.
func Extract(h http.Header) (ctx Context, ok bool) {
	if b3 := h.Get(B3SingleHeader); b3 != "" {
		if c, parsed := parseB3(b3); parsed {
			return c, true
		}
	}
	if tp := h.Get(TraceparentHeader); tp != "" {
		if c, parsed := parseTraceparent(tp); parsed {
			return c, true
		}
	}
	return Context{}, false
}

func parseB3(v string) (Context, bool) {
	parts := strings.Split(v, "-")
	if len(parts) < 2 {
		return Context{}, false
	}
	tid, err := oteltrace.TraceIDFromHex(parts[0])
	if err != nil {
		return Context{}, false
	}
	sid, err := oteltrace.SpanIDFromHex(parts[1])
	if err != nil {
		return Context{}, false
	}
	sampled := true
	if len(parts) >= 3 {
		sampled = parts[2] == "1" || parts[2] == "d"
	}
	return Context{TraceID: tid, SpanID: sid, Sampled: sampled}, true
}

func parseTraceparent(v string) (Context, bool) {
	parts := strings.Split(v, "-")
	if len(parts) != 4 || parts[0] != "00" {
		return Context{}, false
	}
	tid, err := oteltrace.TraceIDFromHex(parts[1])
	if err != nil {
		return Context{}, false
	}
	sid, err := oteltrace.SpanIDFromHex(parts[2])
	if err != nil {
		return Context{}, false
	}
	flags, err := strconv.ParseUint(parts[3], 16, 8)
	if err != nil {
		return Context{}, false
	}
	return Context{TraceID: tid, SpanID: sid, Sampled: flags&0x01 == 1}, true
}

// New mints a fresh trace root. Sampling is decided once, here, at the
// root: per the framework's observed behavior, the sample decision is
// not re-evaluated on every downstream hop of the same trace. budget
// may be nil to skip the absolute-rate cap and rely on sampleRate alone.
func New(sampleRate float64, budget *Budget) (Context, error) {
	tid, err := randomTraceID()
	if err != nil {
		return Context{}, err
	}
	sid, err := randomSpanID()
	if err != nil {
		return Context{}, err
	}
	sampled := sampleDecision(sampleRate) && budget.Allow()
	return Context{TraceID: tid, SpanID: sid, Sampled: sampled}, nil
}

// ChildSpan derives a new span within the same trace, preserving the
// trace id and sampled flag (e.g. for the span layer opening a server
// span distinct from the inbound request's span).
func (c Context) ChildSpan() (Context, error) {
	sid, err := randomSpanID()
	if err != nil {
		return Context{}, err
	}
	return Context{TraceID: c.TraceID, SpanID: sid, Sampled: c.Sampled}, nil
}

// B3Header renders the context as a single B3 header value.
func (c Context) B3Header() string {
	sampled := "0"
	if c.Sampled {
		sampled = "1"
	}
	return fmt.Sprintf("%s-%s-%s", c.TraceID, c.SpanID, sampled)
}

func randomTraceID() (oteltrace.TraceID, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return oteltrace.TraceID{}, err
	}
	return oteltrace.TraceID(b), nil
}

func randomSpanID() (oteltrace.SpanID, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return oteltrace.SpanID{}, err
	}
	return oteltrace.SpanID(b), nil
}

// Budget caps the absolute number of newly-sampled trace roots admitted
// per second, independent of the configured sample rate: a traffic
// spike should not let the rate alone multiply into an unbounded number
// of sampled traces landing on the backing tracer. Only root decisions
// (New) consult the budget; a child span always preserves its parent's
// sampled flag regardless of the budget's current state.
type Budget struct {
	limiter *rate.Limiter
}

// NewBudget returns a Budget admitting up to perSecond newly-sampled
// roots per second, bursting up to the same count. perSecond <= 0
// disables the cap entirely (Allow always returns true).
func NewBudget(perSecond float64) *Budget {
	if perSecond <= 0 {
		return nil
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &Budget{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Allow reports whether a newly-sampled trace root may be admitted right
// now. A nil Budget (no cap configured) always allows.
func (b *Budget) Allow() bool {
	if b == nil {
		return true
	}
	return b.limiter.Allow()
}

// sampleDecision draws a single pseudo-random-but-cryptographically-
// sourced byte so sampling does not share a PRNG with anything
// request-latency-sensitive.
func sampleDecision(rate float64) bool {
	if rate <= 0 {
		return false
	}
	if rate >= 1 {
		return true
	}
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		return false
	}
	return float64(b[0])/255.0 < rate
}
