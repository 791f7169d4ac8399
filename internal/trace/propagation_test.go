// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package trace

import (
	"net/http"
	"testing"
)

func TestExtractB3(t *testing.T) {
	h := http.Header{}
	h.Set(B3SingleHeader, "4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-1")

	ctx, ok := Extract(h)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if !ctx.Sampled {
		t.Fatal("expected sampled=true")
	}
	if ctx.TraceID.String() != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Fatalf("unexpected trace id: %s", ctx.TraceID)
	}
}

func TestExtractTraceparent(t *testing.T) {
	h := http.Header{}
	h.Set(TraceparentHeader, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	ctx, ok := Extract(h)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if !ctx.Sampled {
		t.Fatal("expected sampled=true")
	}
}

func TestExtractMissingHeadersFails(t *testing.T) {
	_, ok := Extract(http.Header{})
	if ok {
		t.Fatal("expected extraction to fail with no headers")
	}
}

func TestNewRootAlwaysOrNeverSampled(t *testing.T) {
	ctx, err := New(1.0, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !ctx.Sampled {
		t.Fatal("expected sample rate 1.0 to always sample")
	}

	ctx, err = New(0.0, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ctx.Sampled {
		t.Fatal("expected sample rate 0.0 to never sample")
	}
}

func TestChildSpanPreservesTraceID(t *testing.T) {
	root, err := New(1.0, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	child, err := root.ChildSpan()
	if err != nil {
		t.Fatalf("ChildSpan: %v", err)
	}
	if child.TraceID != root.TraceID {
		t.Fatal("expected child span to preserve trace id")
	}
	if child.SpanID == root.SpanID {
		t.Fatal("expected child span to mint a new span id")
	}
	if child.Sampled != root.Sampled {
		t.Fatal("expected child span to preserve sampled flag")
	}
}

func TestB3HeaderRoundTrip(t *testing.T) {
	ctx, err := New(1.0, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	reExtracted, ok := Extract(http.Header{B3SingleHeader: {ctx.B3Header()}})
	if !ok {
		t.Fatal("expected round-trip extraction to succeed")
	}
	if reExtracted.TraceID != ctx.TraceID {
		t.Fatal("expected trace id to round-trip")
	}
}

func TestBudgetCapsSamplingBelowRate(t *testing.T) {
	budget := NewBudget(1)
	ctx, err := New(1.0, budget)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !ctx.Sampled {
		t.Fatal("expected the first root within budget to be sampled")
	}

	ctx, err = New(1.0, budget)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ctx.Sampled {
		t.Fatal("expected the budget to reject sampling once its burst is exhausted")
	}
}

func TestNilBudgetNeverCaps(t *testing.T) {
	ctx, err := New(1.0, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !ctx.Sampled {
		t.Fatal("expected a nil budget to never reject sampling")
	}
}
