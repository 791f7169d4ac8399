// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package body

import (
	"errors"
	"net/http"
)

// ErrBodyWriteAborted names a response body truncated by a recovered
// panic or a detected peer disconnect. ResponseSink's Write does not
// return it: I/O attempted after the sink is done — whether finished
// normally or aborted — returns (0, nil) rather than panicking or
// erroring, so cleanup code never needs special-case handling.
var ErrBodyWriteAborted = errors.New("body: write aborted")

// ResponseSink wraps an http.ResponseWriter to track the response size,
// trailers set prior to close, and whether the body was aborted instead
// of completed normally.
type ResponseSink struct {
	w http.ResponseWriter

	status      int
	wroteHeader bool
	size        int64
	aborted     bool
	abortErr    error
	done        bool
}

// NewResponseSink wraps w.
func NewResponseSink(w http.ResponseWriter) *ResponseSink {
	return &ResponseSink{w: w}
}

// Header exposes the underlying header map, matching http.ResponseWriter.
func (s *ResponseSink) Header() http.Header { return s.w.Header() }

// WriteHeader records the status and flushes headers exactly once; a
// second call is a silent no-op, matching http.ResponseWriter's own
// forgiving-duplicate-WriteHeader behavior.
func (s *ResponseSink) WriteHeader(status int) {
	if s.wroteHeader {
		return
	}
	s.status = status
	s.wroteHeader = true
	s.w.WriteHeader(status)
}

// Write implements io.Writer. Once the sink is done (aborted or
// explicitly finished) writes are silently discarded rather than
// returning an error, so deferred cleanup paths never need to special-
// case a finished response.
func (s *ResponseSink) Write(p []byte) (int, error) {
	if s.done {
		return 0, nil
	}
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	n, err := s.w.Write(p)
	s.size += int64(n)
	return n, err
}

// SetTrailer sets a trailer to be sent after the body, using net/http's
// TrailerPrefix convention, so the key needs no advance announcement in
// the Trailer header.
func (s *ResponseSink) SetTrailer(key, value string) {
	s.w.Header().Set(http.TrailerPrefix+key, value)
}

// Abort marks the body truncated by cause (a recovered panic or a
// detected disconnect) and prevents further writes from reaching the
// client.
func (s *ResponseSink) Abort(cause error) {
	if s.done {
		return
	}
	s.aborted = true
	s.abortErr = cause
	s.done = true
}

// Finish marks the body complete normally.
func (s *ResponseSink) Finish() {
	s.done = true
}

// Status returns the status written, or 0 if WriteHeader was never called.
func (s *ResponseSink) Status() int { return s.status }

// Size returns the number of response body bytes written so far.
func (s *ResponseSink) Size() int64 { return s.size }

// Aborted reports whether the body was truncated rather than finished
// normally, and the cause if so.
func (s *ResponseSink) Aborted() (bool, error) { return s.aborted, s.abortErr }
