// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package readiness implements the framework's readiness-check registry,
distinct from health: a node can be healthy but not ready (still warming
caches, draining connections during a deferred shutdown) or ready but
reporting a degraded health state.
*/
package readiness

import "sync"

// Check reports whether the service is currently ready to receive new
// traffic.
type Check interface {
	Name() string
	Ready() (bool, string)
}

// CheckFunc adapts a plain function into a Check.
type CheckFunc struct {
	CheckName string
	Fn        func() (bool, string)
}

func (f CheckFunc) Name() string           { return f.CheckName }
func (f CheckFunc) Ready() (bool, string)  { return f.Fn() }

// Registry holds the set of registered readiness checks.
type Registry struct {
	mu     sync.RWMutex
	checks map[string]Check
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{checks: make(map[string]Check)}
}

// Register adds or replaces a named check.
func (r *Registry) Register(c Check) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.checks == nil {
		r.checks = make(map[string]Check)
	}
	r.checks[c.Name()] = c
}

// Unregister removes a named check.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checks, name)
}

// CheckResult is one readiness check's outcome, matching the management
// endpoint's {"successful": bool} JSON shape.
type CheckResult struct {
	Successful bool `json:"successful"`
}

// Status evaluates every registered check and returns each one's result
// keyed by check name, for the readiness endpoint's JSON body.
func (r *Registry) Status() map[string]CheckResult {
	r.mu.RLock()
	snapshot := make([]Check, 0, len(r.checks))
	for _, c := range r.checks {
		snapshot = append(snapshot, c)
	}
	r.mu.RUnlock()

	out := make(map[string]CheckResult, len(snapshot))
	for _, c := range snapshot {
		ok, _ := c.Ready()
		out[c.Name()] = CheckResult{Successful: ok}
	}
	return out
}

// Ready evaluates every registered check; the service is ready only if
// every check reports ready. The first unready check's message is
// returned alongside false; all others still run so callers introspecting
// via Status() see the full picture.
func (r *Registry) Ready() (bool, string) {
	r.mu.RLock()
	snapshot := make([]Check, 0, len(r.checks))
	for _, c := range r.checks {
		snapshot = append(snapshot, c)
	}
	r.mu.RUnlock()

	ready := true
	msg := ""
	for _, c := range snapshot {
		if ok, m := c.Ready(); !ok {
			ready = false
			if msg == "" {
				msg = c.Name() + ": " + m
			}
		}
	}
	return ready, msg
}
