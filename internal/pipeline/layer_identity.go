// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/witchframe/internal/mdc"
	wtrace "github.com/tomtom215/witchframe/internal/trace"
)

// RequestID is pipeline layer 2: it generates 64 random bits encoded as
// 16 lowercase hex characters and attaches them to the request's
// Extensions.
func RequestID() Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			ext := FromContext(r.Context())
			var b [8]byte
			_, _ = rand.Read(b[:])
			ext.RequestID = hex.EncodeToString(b[:])
			inner.Call(w, r)
		})
	}
}

// SampleRateFunc reads the currently active trace sample rate, sourced
// from the live Runtime Refreshable so a reload takes effect on the
// next request without restarting the server.
type SampleRateFunc func() float64

// TracePropagation is pipeline layer 3: it parses an inbound B3 or W3C
// trace header, or starts a new trace sampled at the given rate (and
// gated by budget, which may be nil) when neither is present.
func TracePropagation(sampleRate SampleRateFunc, budget *wtrace.Budget) Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			ext := FromContext(r.Context())
			if tc, ok := wtrace.Extract(r.Header); ok {
				ext.Trace = tc
			} else if tc, err := wtrace.New(sampleRate(), budget); err == nil {
				ext.Trace = tc
			}
			inner.Call(w, r)
		})
	}
}

// Span is pipeline layer 4: it opens a server span covering request
// handling by minting a child span within the active trace. The span's
// lifetime is the call to inner, which in net/http's synchronous
// handler model also bounds body streaming.
func Span() Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			ext := FromContext(r.Context())
			if child, err := ext.Trace.ChildSpan(); err == nil {
				ext.Trace = child
			}
			inner.Call(w, r)
		})
	}
}

// UnverifiedJWT is pipeline layer 5: if an Authorization: Bearer token
// is present, it decodes (without verifying the signature) the claims
// used only for identity extraction and logging, never for an
// authorization decision.
func UnverifiedJWT() Layer {
	parser := jwt.NewParser()
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			ext := FromContext(r.Context())
			if tok := bearerToken(r.Header.Get("Authorization")); tok != "" {
				claims := jwt.MapClaims{}
				if _, _, err := parser.ParseUnverified(tok, claims); err == nil {
					ext.JWT = &jwtClaims{
						UserID:         claimString(claims, "sub"),
						SessionID:      claimString(claims, "sid"),
						TokenID:        claimString(claims, "tid"),
						OrganizationID: claimString(claims, "org"),
					}
				}
			}
			inner.Call(w, r)
		})
	}
}

func bearerToken(authHeader string) string {
	const prefix = "Bearer "
	if len(authHeader) > len(prefix) && strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return authHeader[len(prefix):]
	}
	return ""
}

func claimString(claims jwt.MapClaims, key string) string {
	v, ok := claims[key]
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	default:
		return ""
	}
}

// MDCScope is pipeline layer 6: it scopes a fresh MDC map for the
// request's duration. Because the MDC is attached to the request
// context rather than a goroutine-local, cleanup is implicit: the
// context (and the map it carries) is discarded when the request
// completes, on every exit path including panic, with no separate
// teardown step required.
func MDCScope() Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := mdc.New(r.Context())
			inner.Call(w, r.WithContext(ctx))
		})
	}
}

// WitchcraftMDC is pipeline layer 7: it copies the JWT-derived
// identifiers and the trace id, sampled flag, and request id into
// reserved MDC keys on the request context. No log layer in this module
// reads the MDC, so these keys do not appear in emitted envelopes.
func WitchcraftMDC() Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			ext := FromContext(r.Context())
			ctx := r.Context()
			mdc.PutReserved(ctx, "requestId", ext.RequestID)
			mdc.PutReserved(ctx, "traceId", ext.Trace.TraceID.String())
			mdc.PutReserved(ctx, "sampled", strconv.FormatBool(ext.Trace.Sampled))
			if ext.JWT != nil {
				mdc.PutReserved(ctx, "userId", ext.JWT.UserID)
				mdc.PutReserved(ctx, "sessionId", ext.JWT.SessionID)
				mdc.PutReserved(ctx, "tokenId", ext.JWT.TokenID)
				mdc.PutReserved(ctx, "organizationId", ext.JWT.OrganizationID)
			}
			inner.Call(w, r)
		})
	}
}
