// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package pipeline

import (
	"net/http"
	"time"

	"github.com/tomtom215/witchframe/internal/envelope"
)

// RequestLog is pipeline layer 8: on response completion it emits
// exactly one request.2 envelope describing the request.
func RequestLog(appender envelope.Appender) Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			ext := FromContext(r.Context())
			inner.Call(w, r)

			status := ext.Sink.Status()
			if status == 0 {
				status = http.StatusOK
			}
			appender.Append(envelope.Envelope{
				Type: envelope.TypeRequest,
				Time: time.Now().UTC(),
				Request: &envelope.RequestLog{
					Method:       r.Method,
					Path:         routePath(ext),
					Status:       status,
					RequestSize:  r.ContentLength,
					ResponseSize: ext.Sink.Size(),
					Duration:     time.Since(ext.Started),
					TraceID:      ext.Trace.TraceID.String(),
				},
			})
		})
	}
}

func routePath(ext *Extensions) string {
	if ext.Route.Endpoint != nil {
		return ext.Route.Endpoint.PathPattern
	}
	return ""
}
