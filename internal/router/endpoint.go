// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package router

import (
	"net/http"
	"strings"

	"github.com/tomtom215/witchframe/internal/apierror"
)

// Handler is the terminal business-logic function dispatched to by a
// Resolved route. It receives the matched path parameters alongside the
// standard request/response pair, and returns a structured error rather
// than writing an error response itself.
type Handler func(w http.ResponseWriter, r *http.Request, params map[string]string) *apierror.Error

// Endpoint is a single registered route: a service name, an operation
// name, an HTTP method, and an ordered path template of literal and
// parameter segments. Endpoints are registered once at startup and
// never mutated afterward.
type Endpoint struct {
	ServiceName string
	Name        string
	Method      string
	PathPattern string // e.g. "/catalog/{id}/items"

	// Deprecated, when non-empty, causes the deprecation layer to add a
	// "Deprecation: true" response header; the reason is not sent.
	Deprecated string

	Handler Handler
}

// segment is one compiled piece of a path template.
type segment struct {
	literal   string
	param     string // non-empty if this is a {name} segment
	isParam   bool
}

func compilePath(pattern string) []segment {
	pattern = strings.Trim(pattern, "/")
	if pattern == "" {
		return nil
	}
	parts := strings.Split(pattern, "/")
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		if len(p) >= 2 && p[0] == '{' && p[len(p)-1] == '}' {
			segs = append(segs, segment{param: p[1 : len(p)-1], isParam: true})
		} else {
			segs = append(segs, segment{literal: p})
		}
	}
	return segs
}

// splitPath tokenizes a concrete request path into segments, matching
// compilePath's trimming/splitting rules.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
