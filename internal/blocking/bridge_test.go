// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package blocking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/witchframe/internal/body"
)

func TestReaderReadsThroughToEOF(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("hello world"))
	r := NewReader(body.NewRequestSource(req))

	buf := make([]byte, 64)
	n, err := r.Read(buf)
	if err != nil && err.Error() != "EOF" {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:n]) != "hello world" {
		t.Fatalf("unexpected content: %q", buf[:n])
	}
}

func TestWriterBuffersAndFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	sink := body.NewResponseSink(rec)
	w := NewWriter(sink)

	w.Write([]byte("partial"))
	if rec.Body.Len() != 0 {
		t.Fatal("expected write to stay buffered before flush")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if rec.Body.String() != "partial" {
		t.Fatalf("expected flushed content, got %q", rec.Body.String())
	}
}

func TestTokenCancelledReflectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tok := NewToken(ctx)

	if tok.Cancelled() {
		t.Fatal("expected not cancelled before cancel()")
	}
	cancel()
	if !tok.Cancelled() {
		t.Fatal("expected cancelled after cancel()")
	}
}
