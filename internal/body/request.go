// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package body

import (
	"io"
	"net/http"
)

// RequestSource wraps an inbound request body, exposing EOF-tolerant
// reads (a read after EOF returns (0, io.EOF) repeatably rather than
// panicking) and trailers that only become available after EOF per
// net/http's trailer contract.
type RequestSource struct {
	body io.ReadCloser
	req  *http.Request
	eof  bool
}

// NewRequestSource wraps r.Body.
func NewRequestSource(r *http.Request) *RequestSource {
	return &RequestSource{body: r.Body, req: r}
}

// Read implements io.Reader. Once EOF has been observed, further reads
// return (0, io.EOF) without touching the underlying body again.
func (s *RequestSource) Read(p []byte) (int, error) {
	if s.eof {
		return 0, io.EOF
	}
	n, err := s.body.Read(p)
	if err == io.EOF {
		s.eof = true
	}
	return n, err
}

// Close closes the underlying body.
func (s *RequestSource) Close() error { return s.body.Close() }

// Trailer returns the request trailers, valid only after EOF has been
// observed on Read.
func (s *RequestSource) Trailer() http.Header { return s.req.Trailer }
