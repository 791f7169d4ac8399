// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package pipeline

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

var gzipWriterPool = sync.Pool{
	New: func() interface{} { return gzip.NewWriter(io.Discard) },
}

// gzipResponseWriter transparently gzip-encodes everything written to it
// once a response is underway.
type gzipResponseWriter struct {
	http.ResponseWriter
	gz          *gzip.Writer
	wroteHeader bool
}

func (w *gzipResponseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(status)
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.gz.Write(b)
}

// Gzip is an optional outermost layer, ahead of Routing, that transparently
// compresses responses for clients advertising Accept-Encoding: gzip. It is
// a no-op when enabled is false (server.gzip-enabled), and skips WebSocket
// upgrades since those aren't a body to compress.
//
// Sitting ahead of Routing means body.ResponseSink's Size() still reports
// the uncompressed byte count, which is what the request log and endpoint
// metrics actually want: the application-level size of the response
// produced, independent of whatever the wire encoding happened to be.
func Gzip(enabled bool) Layer {
	return func(inner Service) Service {
		if !enabled {
			return inner
		}
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") || r.Header.Get("Upgrade") == "websocket" {
				inner.Call(w, r)
				return
			}

			gz := gzipWriterPool.Get().(*gzip.Writer)
			gz.Reset(w)
			defer func() {
				_ = gz.Close()
				gzipWriterPool.Put(gz)
			}()

			inner.Call(&gzipResponseWriter{ResponseWriter: w, gz: gz}, r)
		})
	}
}
