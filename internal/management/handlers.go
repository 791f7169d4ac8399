// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package management

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/witchframe/internal/diagnostics"
	"github.com/tomtom215/witchframe/internal/health"
	"github.com/tomtom215/witchframe/internal/logging"
	"github.com/tomtom215/witchframe/internal/readiness"
)

// liveTailWriteTimeout bounds how long a single envelope write to a
// live-tail subscriber may block before the connection is dropped as
// slow.
const liveTailWriteTimeout = 5 * time.Second

// SecretFunc returns the current shared secret a bearer token is checked
// against; backed by a config.Refreshable so a rotated secret takes
// effect without a restart.
type SecretFunc func() string

// Mux builds the management port's handler: liveness and readiness are
// open, health and diagnostics require a bearer token constant-time-equal
// to the secret healthSecret/diagnosticsSecret return at request time.
// liveTail may be nil, in which case the live-tail diagnostic is omitted.
// Gated access attempts are not logged; MuxWithSecurityLog records them.
func Mux(healthRegistry *health.Registry, readinessRegistry *readiness.Registry, diagnosticsRegistry *diagnostics.Registry, liveTail *diagnostics.LiveTail, healthSecret, diagnosticsSecret SecretFunc) http.Handler {
	return MuxWithSecurityLog(healthRegistry, readinessRegistry, diagnosticsRegistry, liveTail, healthSecret, diagnosticsSecret, nil)
}

// MuxWithSecurityLog is Mux plus an explicit security-event logger for
// the gated endpoints; Mux is the common case with logging disabled.
func MuxWithSecurityLog(healthRegistry *health.Registry, readinessRegistry *readiness.Registry, diagnosticsRegistry *diagnostics.Registry, liveTail *diagnostics.LiveTail, healthSecret, diagnosticsSecret SecretFunc, secLog *logging.SecurityLogger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status/liveness", liveness)
	mux.HandleFunc("/status/readiness", readinessHandler(readinessRegistry))
	mux.HandleFunc("/status/health", gated(secLog, healthSecret, healthHandler(healthRegistry)))
	mux.HandleFunc("/debug/diagnostic/", gated(secLog, diagnosticsSecret, diagnosticHandler(diagnosticsRegistry)))
	if liveTail != nil {
		mux.HandleFunc("/debug/diagnostic/live-tail.v1", gated(secLog, diagnosticsSecret, liveTailHandler(liveTail)))
	}
	return mux
}

func liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readinessHandler(registry *readiness.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := registry.Status()
		ready, _ := registry.Ready()

		w.Header().Set("Content-Type", "application/json")
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	}
}

func healthHandler(registry *health.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		results := registry.Status()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"checks": results,
			"worst":  health.Worst(results),
		})
	}
}

func diagnosticHandler(registry *diagnostics.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		diagnosticType := strings.TrimPrefix(r.URL.Path, "/debug/diagnostic/")
		if diagnosticType == "" {
			http.Error(w, "missing diagnostic type", http.StatusBadRequest)
			return
		}

		payload, ok, err := registry.Capture(diagnosticType)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "unknown diagnostic type", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}
}

var liveTailUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// This endpoint is an operational tool consumed by CLIs and internal
	// dashboards, not browser pages, and is already gated by the bearer
	// secret check above; it does not need CheckOrigin's cross-site
	// protection.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveTailHandler upgrades the connection to a websocket and streams
// every envelope appended anywhere in the process (request, service,
// trace, audit, metric, diagnostic) as a JSON text frame, until the
// client disconnects or the server shuts the connection down.
func liveTailHandler(tail *diagnostics.LiveTail) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := liveTailUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		envelopes, unsubscribe := tail.Subscribe(256)
		defer unsubscribe()

		for e := range envelopes {
			_ = conn.SetWriteDeadline(time.Now().Add(liveTailWriteTimeout))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		}
	}
}

// gated wraps next so it only runs if the request's Authorization header
// carries a bearer token constant-time-equal to secret(). A request is
// rejected (without comparing anything) when secret() is empty, so an
// unconfigured secret disables the endpoint rather than accepting any
// token. Every grant or denial is recorded through secLog, which may be
// nil to skip logging entirely.
func gated(secLog *logging.SecurityLogger, secret SecretFunc, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		want := secret()
		if want == "" {
			if secLog != nil {
				secLog.LogGatedAccessDenied(r.URL.Path, r.RemoteAddr, r.UserAgent(), "endpoint not configured")
			}
			http.Error(w, "endpoint not configured", http.StatusForbidden)
			return
		}

		got := bearerToken(r.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			if secLog != nil {
				secLog.LogGatedAccessDenied(r.URL.Path, r.RemoteAddr, r.UserAgent(), "invalid bearer token")
			}
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if secLog != nil {
			secLog.LogGatedAccessGranted(r.URL.Path, r.RemoteAddr, r.UserAgent())
		}
		next(w, r)
	}
}

func bearerToken(authHeader string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}
	return strings.TrimPrefix(authHeader, prefix)
}
