// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package body

import (
	"errors"
	"net/http/httptest"
	"testing"
)

func TestResponseSinkTracksSize(t *testing.T) {
	rec := httptest.NewRecorder()
	sink := NewResponseSink(rec)

	n, err := sink.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write: n=%d err=%v", n, err)
	}
	if sink.Size() != 5 {
		t.Fatalf("expected size 5, got %d", sink.Size())
	}
	if sink.Status() != 200 {
		t.Fatalf("expected implicit 200, got %d", sink.Status())
	}
}

func TestResponseSinkWriteAfterAbortIsNoop(t *testing.T) {
	rec := httptest.NewRecorder()
	sink := NewResponseSink(rec)

	sink.Write([]byte("partial"))
	sink.Abort(errors.New("panic: boom"))

	n, err := sink.Write([]byte("more"))
	if n != 0 || err != nil {
		t.Fatalf("expected silent no-op write after abort, got n=%d err=%v", n, err)
	}
	if sink.Size() != 7 {
		t.Fatalf("expected size to stop at 7, got %d", sink.Size())
	}

	aborted, cause := sink.Aborted()
	if !aborted || cause == nil {
		t.Fatal("expected aborted=true with a cause")
	}
}

func TestResponseSinkDoubleWriteHeaderIgnored(t *testing.T) {
	rec := httptest.NewRecorder()
	sink := NewResponseSink(rec)

	sink.WriteHeader(201)
	sink.WriteHeader(500)

	if sink.Status() != 201 {
		t.Fatalf("expected first WriteHeader to win, got %d", sink.Status())
	}
}

func TestResponseSinkFinishThenWriteIsNoop(t *testing.T) {
	rec := httptest.NewRecorder()
	sink := NewResponseSink(rec)
	sink.Finish()

	n, err := sink.Write([]byte("late"))
	if n != 0 || err != nil {
		t.Fatalf("expected no-op after finish, got n=%d err=%v", n, err)
	}
}
