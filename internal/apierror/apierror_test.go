// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package apierror

import (
	"errors"
	"net/http"
	"testing"
)

func TestServiceError(t *testing.T) {
	e := Service("NOT_FOUND", http.StatusNotFound, "widget missing")
	if e.Status != http.StatusNotFound || e.Category != CategoryService {
		t.Fatalf("unexpected error: %+v", e)
	}
}

func TestInternalPreservesCauseWithoutLeaking(t *testing.T) {
	cause := errors.New("boom")
	e := Internal(cause)
	if e.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", e.Status)
	}
	if !errors.Is(e, cause) {
		t.Fatal("expected Unwrap to expose the cause")
	}
	if e.Message != "" {
		t.Fatal("internal errors must not leak the cause message to clients")
	}
}

func TestWithSafeAndUnsafeParams(t *testing.T) {
	e := Service("BAD_REQUEST", http.StatusBadRequest, "").
		WithSafeParam("field", "name").
		WithUnsafeParam("stack", "trace...")
	if e.SafeParams["field"] != "name" {
		t.Fatal("expected safe param set")
	}
	if e.UnsafeParams["stack"] != "trace..." {
		t.Fatal("expected unsafe param set")
	}
}

func TestThrottleRetryAfter(t *testing.T) {
	e := Throttle("RATE_LIMITED", 30)
	if e.Status != http.StatusTooManyRequests || e.RetryAfter != 30 {
		t.Fatalf("unexpected error: %+v", e)
	}
}
