// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package management

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/witchframe/internal/diagnostics"
	"github.com/tomtom215/witchframe/internal/envelope"
	"github.com/tomtom215/witchframe/internal/health"
	"github.com/tomtom215/witchframe/internal/readiness"
)

func testMux(healthSecret, diagSecret string) http.Handler {
	h := health.NewRegistry()
	r := readiness.NewRegistry()
	d := diagnostics.NewRegistry()
	return Mux(h, r, d, diagnostics.NewLiveTail(),
		func() string { return healthSecret },
		func() string { return diagSecret },
	)
}

func TestLivenessAlwaysOK(t *testing.T) {
	mux := testMux("", "")
	req := httptest.NewRequest(http.MethodGet, "/status/liveness", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestReadinessReflectsRegisteredChecks(t *testing.T) {
	r := readiness.NewRegistry()
	r.Register(readiness.CheckFunc{CheckName: "cache", Fn: func() (bool, string) { return false, "warming" }})

	h := health.NewRegistry()
	d := diagnostics.NewRegistry()
	mux := Mux(h, r, d, nil, func() string { return "" }, func() string { return "" })

	req := httptest.NewRequest(http.MethodGet, "/status/readiness", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var body map[string]readiness.CheckResult
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["cache"].Successful {
		t.Fatal("expected cache check to be unsuccessful")
	}
}

func TestHealthRequiresBearerToken(t *testing.T) {
	mux := testMux("s3cr3t", "")

	req := httptest.NewRequest(http.MethodGet, "/status/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unauthenticated status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/status/health", nil)
	req.Header.Set("Authorization", "Bearer s3cr3t")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, want 200", rec.Code)
	}
}

func TestHealthRejectsEmptySecretConfiguration(t *testing.T) {
	mux := testMux("", "")
	req := httptest.NewRequest(http.MethodGet, "/status/health", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 when no secret is configured", rec.Code)
	}
}

func TestDiagnosticHandlerServesBuiltinTypeList(t *testing.T) {
	mux := testMux("", "diag-secret")

	req := httptest.NewRequest(http.MethodGet, "/debug/diagnostic/diagnostic.types.v1", nil)
	req.Header.Set("Authorization", "Bearer diag-secret")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestLiveTailStreamsAppendedEnvelopes(t *testing.T) {
	tail := diagnostics.NewLiveTail()
	mux := Mux(health.NewRegistry(), readiness.NewRegistry(), diagnostics.NewRegistry(), tail,
		func() string { return "" },
		func() string { return "diag-secret" },
	)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/debug/diagnostic/live-tail.v1"
	header := http.Header{}
	header.Set("Authorization", "Bearer diag-secret")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	tail.Append(envelope.Envelope{Type: envelope.TypeService, Service: &envelope.ServiceLog{Message: "hello"}})

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var received envelope.Envelope
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if received.Service == nil || received.Service.Message != "hello" {
		t.Fatalf("unexpected envelope: %+v", received)
	}
}

func TestDiagnosticHandlerUnknownTypeIs404(t *testing.T) {
	mux := testMux("", "diag-secret")

	req := httptest.NewRequest(http.MethodGet, "/debug/diagnostic/no.such.type", nil)
	req.Header.Set("Authorization", "Bearer diag-secret")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
