// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package body

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestSourceReadAfterEOFStaysEOF(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("hi"))
	src := NewRequestSource(req)

	buf := make([]byte, 16)
	n, err := src.Read(buf)
	if n != 2 {
		t.Fatalf("expected 2 bytes, got %d", n)
	}
	// Drain to EOF: strings.Reader may return the EOF on this call or the next.
	for err == nil {
		_, err = src.Read(buf)
	}
	if err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}

	n, err = src.Read(buf)
	if n != 0 || err != io.EOF {
		t.Fatalf("expected (0, io.EOF) after EOF observed, got n=%d err=%v", n, err)
	}
}
