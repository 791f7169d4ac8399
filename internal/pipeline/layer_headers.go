// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package pipeline

import (
	"net/http"
	"regexp"
	"strconv"
	"time"
)

// Deprecation is pipeline layer 9: if the route is to a deprecated
// endpoint, it adds a Deprecation header before the handler writes its
// response.
func Deprecation() Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			ext := FromContext(r.Context())
			if ext.Deprecated != "" {
				w.Header().Set("Deprecation", "true")
			}
			inner.Call(w, r)
		})
	}
}

// KeepAlive is pipeline layer 10 (HTTP/1.x only): it echoes the
// configured idle timeout in a Keep-Alive response header.
func KeepAlive(idleTimeout time.Duration) Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ProtoMajor == 1 {
				w.Header().Set("Keep-Alive", "timeout="+strconv.Itoa(int(idleTimeout.Seconds())))
			}
			inner.Call(w, r)
		})
	}
}

// ServerHeader is pipeline layer 11: it sets the Server response header
// to "<product_name>/<product_version>".
func ServerHeader(productName, productVersion string) Layer {
	value := productName + "/" + productVersion
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Server", value)
			inner.Call(w, r)
		})
	}
}

// NoCaching is pipeline layer 12: for a GET request it inserts a
// no-store default ahead of the handler, which a handler wanting a
// different caching policy overrides by setting its own Cache-Control
// before it writes the response header.
func NoCaching() Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			}
			inner.Call(w, r)
		})
	}
}

var legacyIE = regexp.MustCompile(`MSIE 10|rv:11\.0`)

// WebSecurity is pipeline layer 13: it adds the framework's fixed set
// of security headers, plus a legacy X-Content-Security-Policy header
// for IE10/IE11 user agents which never adopted the standard CSP
// header name.
func WebSecurity() Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", "default-src 'self'")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("X-XSS-Protection", "1; mode=block")
			if legacyIE.MatchString(r.UserAgent()) {
				h.Set("X-Content-Security-Policy", "default-src 'self'")
			}
			inner.Call(w, r)
		})
	}
}

// TraceIDHeader is pipeline layer 14: it sets X-B3-TraceId to the
// active trace id established by the trace-propagation layer.
func TraceIDHeader() Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			ext := FromContext(r.Context())
			w.Header().Set("X-B3-TraceId", ext.Trace.TraceID.String())
			inner.Call(w, r)
		})
	}
}
