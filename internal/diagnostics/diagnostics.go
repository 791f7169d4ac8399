// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package diagnostics implements the framework's diagnostic registry: named,
on-demand introspection payloads (thread dumps, build metadata, metric
names) retrievable over the management endpoint or embedded in a
crash-dump capture.
*/
package diagnostics

import "sync"

// Diagnostic produces an on-demand payload identified by a diagnostic
// type string (e.g. "diagnostic.types.v1", "metric.names.v1").
type Diagnostic interface {
	Type() string
	Capture() (any, error)
}

// DiagnosticFunc adapts a plain function into a Diagnostic.
type DiagnosticFunc struct {
	DiagnosticType string
	Fn             func() (any, error)
}

func (f DiagnosticFunc) Type() string            { return f.DiagnosticType }
func (f DiagnosticFunc) Capture() (any, error)    { return f.Fn() }

// Registry holds the set of registered diagnostics.
type Registry struct {
	mu          sync.RWMutex
	diagnostics map[string]Diagnostic
}

// NewRegistry returns a Registry pre-populated with the builtin
// diagnostic.types.v1 self-listing diagnostic.
func NewRegistry() *Registry {
	r := &Registry{diagnostics: make(map[string]Diagnostic)}
	r.Register(DiagnosticFunc{
		DiagnosticType: "diagnostic.types.v1",
		Fn: func() (any, error) {
			return r.Types(), nil
		},
	})
	return r
}

// Register adds or replaces a named diagnostic.
func (r *Registry) Register(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagnostics[d.Type()] = d
}

// Types returns every registered diagnostic type, for diagnostic.types.v1.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.diagnostics))
	for t := range r.diagnostics {
		out = append(out, t)
	}
	return out
}

// Capture runs the named diagnostic and returns its payload. The second
// return value is false if no diagnostic is registered under that type.
func (r *Registry) Capture(diagnosticType string) (any, bool, error) {
	r.mu.RLock()
	d, ok := r.diagnostics[diagnosticType]
	r.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	payload, err := d.Capture()
	return payload, true, err
}
