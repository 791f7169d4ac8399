// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package pipeline

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/witchframe/internal/body"
	"github.com/tomtom215/witchframe/internal/router"
)

// Routing is pipeline layer 1 (only the optional Gzip layer wraps it): it resolves the request's
// method and path against table, installs the request's Extensions
// bag, and lets resolution drive every downstream layer and the
// terminal dispatch.
func Routing(table *router.Table) Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			result := table.Resolve(r.Method, path)

			ext := &Extensions{
				PeerAddr: r.RemoteAddr,
				Route:    result,
				Sink:     body.NewResponseSink(w),
				Started:  time.Now(),
			}
			if result.Kind == router.Resolved {
				ext.EndpointName = result.Endpoint.Name
				ext.ServiceName = result.Endpoint.ServiceName
				ext.Deprecated = result.Endpoint.Deprecated
			}

			ctx := newContext(r.Context(), ext)
			inner.Call(ext.Sink, r.WithContext(ctx))
		})
	}
}

// Dispatch is the terminal (layer 20) service: it invokes the matched
// endpoint's handler, or synthesizes the 404/405/204 response for a
// non-Resolved route.
func Dispatch() Service {
	return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
		ext := FromContext(r.Context())
		sink, ok := w.(*body.ResponseSink)
		if !ok {
			sink = body.NewResponseSink(w)
		}

		switch ext.Route.Kind {
		case router.StarOptions:
			sink.WriteHeader(http.StatusNoContent)
			sink.Finish()
		case router.Options:
			sink.Header().Set("Allow", strings.Join(ext.Route.Allowed, ", "))
			sink.WriteHeader(http.StatusNoContent)
			sink.Finish()
		case router.MethodNotAllowed:
			sink.Header().Set("Allow", strings.Join(ext.Route.Allowed, ", "))
			http.Error(sink, "method not allowed", http.StatusMethodNotAllowed)
			sink.Finish()
		case router.Unresolved:
			http.Error(sink, "not found", http.StatusNotFound)
			sink.Finish()
		case router.Resolved:
			params := ext.Route.Params
			apiErr := ext.Route.Endpoint.Handler(sink, r, params)
			if apiErr != nil {
				writeAPIError(sink, apiErr)
				ext.Error = apiErr
			}
			sink.Finish()
		}
	})
}
