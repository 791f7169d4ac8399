// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package pipeline

import (
	"context"
	"time"

	"github.com/tomtom215/witchframe/internal/apierror"
	"github.com/tomtom215/witchframe/internal/body"
	"github.com/tomtom215/witchframe/internal/router"
	wtrace "github.com/tomtom215/witchframe/internal/trace"
)

type contextKey string

const extensionsKey contextKey = "witchframe.pipeline.extensions"

// jwtClaims holds the identifiers lifted from an unverified bearer JWT,
// per the pipeline's unverified-JWT-parse layer: no authorization
// decision is made here, only identity extraction for logging/MDC.
type jwtClaims struct {
	UserID         string
	SessionID      string
	TokenID        string
	OrganizationID string
}

// Extensions is the per-request state bag threaded through every layer,
// matching the framework's "every request extension contains peer
// address, request id, route, trace context" invariant.
type Extensions struct {
	PeerAddr     string
	RequestID    string
	Route        router.Result
	Trace        wtrace.Context
	JWT          *jwtClaims
	Error        *apierror.Error
	Deprecated   string
	EndpointName string
	ServiceName  string
	Sink         *body.ResponseSink
	Started      time.Time
	Panicked     bool
	Cancelled    bool
}

// newContext attaches a fresh Extensions to ctx.
func newContext(ctx context.Context, ext *Extensions) context.Context {
	return context.WithValue(ctx, extensionsKey, ext)
}

// FromContext retrieves the Extensions attached by the pipeline's
// routing layer. It returns nil outside the pipeline (e.g. in a unit
// test calling a handler directly without going through Build).
func FromContext(ctx context.Context) *Extensions {
	ext, _ := ctx.Value(extensionsKey).(*Extensions)
	return ext
}
