// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package pipeline

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/tomtom215/witchframe/internal/apierror"
	"github.com/tomtom215/witchframe/internal/endpoint"
	"github.com/tomtom215/witchframe/internal/envelope"
	"github.com/tomtom215/witchframe/internal/metrics"
)

// EndpointMetrics is pipeline layer 15: a per-endpoint timer for
// response duration and an implicit 5xx meter (status is a label on the
// same recorded observation), wired into the process's Prometheus
// registry.
func EndpointMetrics() Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			ext := FromContext(r.Context())
			metrics.TrackActiveRequest(true)
			start := time.Now()
			defer func() {
				metrics.TrackActiveRequest(false)
				status := ext.Sink.Status()
				if status == 0 {
					status = http.StatusOK
				}
				route := routePath(ext)
				metrics.RecordAPIRequest(r.Method, route, fmt.Sprintf("%d", status), time.Since(start))
			}()
			inner.Call(w, r)
		})
	}
}

// EndpointHealthTrackers maps an endpoint name to its rolling 5xx-ratio
// tracker, updated by the endpoint-health pipeline layer. No health check
// in this module reads these trackers.
type EndpointHealthTrackers struct {
	mu       sync.Mutex
	trackers map[string]*endpoint.HealthTracker
}

// NewEndpointHealthTrackers returns an empty tracker set.
func NewEndpointHealthTrackers() *EndpointHealthTrackers {
	return &EndpointHealthTrackers{trackers: make(map[string]*endpoint.HealthTracker)}
}

// Tracker returns (creating if necessary) the tracker for name.
func (t *EndpointHealthTrackers) Tracker(name string) *endpoint.HealthTracker {
	t.mu.Lock()
	defer t.mu.Unlock()
	tr, ok := t.trackers[name]
	if !ok {
		tr = endpoint.NewHealthTracker()
		t.trackers[name] = tr
	}
	return tr
}

// EndpointHealth is pipeline layer 16: it records every completed
// request's status against the endpoint's rolling 5xx-ratio tracker.
func EndpointHealth(trackers *EndpointHealthTrackers) Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			ext := FromContext(r.Context())
			inner.Call(w, r)
			if ext.EndpointName == "" {
				return
			}
			status := ext.Sink.Status()
			if status == 0 {
				status = http.StatusOK
			}
			trackers.Tracker(ext.EndpointName).Observe(status)
		})
	}
}

// CancellationWatchdog is pipeline layer 17: it detects the request's
// context being cancelled (client disconnect, server shutdown) before
// the handler finishes and emits an info log when that happens.
func CancellationWatchdog(appender envelope.Appender) Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			ext := FromContext(r.Context())
			finished := make(chan struct{})
			go func() {
				select {
				case <-r.Context().Done():
					select {
					case <-finished:
					default:
						ext.Cancelled = true
						appender.Append(envelope.Envelope{
							Type: envelope.TypeService,
							Time: time.Now().UTC(),
							Service: &envelope.ServiceLog{
								Level:   "INFO",
								Message: "request cancelled before completion",
								Params:  map[string]any{"requestId": ext.RequestID},
							},
						})
					}
				case <-finished:
				}
			}()
			inner.Call(w, r)
			close(finished)
		})
	}
}

// CatchUnwind is pipeline layer 18: it converts a panic inside the
// handler or its body streaming into a synthesized 500 and aborts
// further body writes, matching the framework's panic-to-HTTP-status
// design.
func CatchUnwind() Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			ext := FromContext(r.Context())
			defer func() {
				if rec := recover(); rec != nil {
					ext.Panicked = true
					cause := fmt.Errorf("panic: %v", rec)
					apiErr := apierror.Internal(cause).WithUnsafeParam("backtrace", string(debug.Stack()))
					ext.Error = apiErr
					aborted, _ := ext.Sink.Aborted()
					if !aborted && ext.Sink.Status() == 0 {
						ext.Sink.WriteHeader(http.StatusInternalServerError)
					}
					ext.Sink.Abort(cause)
				}
			}()
			inner.Call(w, r)
		})
	}
}

// ErrorLog is pipeline layer 19: if the response carries a structured
// error, it is logged at ERROR for 5xx statuses and INFO otherwise.
func ErrorLog(appender envelope.Appender) Layer {
	return func(inner Service) Service {
		return ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			inner.Call(w, r)
			ext := FromContext(r.Context())
			if ext.Error == nil {
				return
			}
			level := "INFO"
			if ext.Error.Status >= 500 {
				level = "ERROR"
			}
			appender.Append(envelope.Envelope{
				Type: envelope.TypeService,
				Time: time.Now().UTC(),
				Service: &envelope.ServiceLog{
					Level:   level,
					Message: ext.Error.Error(),
					Origin:  ext.EndpointName,
					Params:  ext.Error.SafeParams,
					Unsafe:  ext.Error.UnsafeParams,
				},
			})
		})
	}
}
