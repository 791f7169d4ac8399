// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package pipeline

import "net/http"

// Service performs one HTTP call. It is the unit every Layer wraps and
// the unit a Builder ultimately produces; Services may be shared across
// concurrent calls and must not retain per-call state between them.
type Service interface {
	Call(w http.ResponseWriter, r *http.Request)
}

// ServiceFunc adapts a plain function into a Service.
type ServiceFunc func(w http.ResponseWriter, r *http.Request)

func (f ServiceFunc) Call(w http.ResponseWriter, r *http.Request) { f(w, r) }

// Layer wraps an inner Service to add one cross-cutting behavior,
// returning a new Service that is otherwise indistinguishable from its
// inner one to its own caller.
type Layer func(inner Service) Service

// Builder composes layers with function-composition semantics: the
// first layer added via Use is the outermost at runtime, seeing the
// request before any layer added after it and the response after every
// layer added after it has seen it.
type Builder struct {
	layers []Layer
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Use appends a layer and returns the Builder for chaining.
func (b *Builder) Use(l Layer) *Builder {
	b.layers = append(b.layers, l)
	return b
}

// Build wraps terminal with every added layer, outermost first.
func (b *Builder) Build(terminal Service) Service {
	svc := terminal
	for i := len(b.layers) - 1; i >= 0; i-- {
		svc = b.layers[i](svc)
	}
	return svc
}

// AsHandler adapts a Service to http.Handler for use with net/http's
// server machinery.
func AsHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		svc.Call(w, r)
	})
}
