// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package config

import (
	"fmt"
	"sync"
)

// Validator is run against a candidate value before it is published. A
// non-nil error rejects the publication.
type Validator[T any] func(T) error

// Refreshable holds an atomically replaceable value of T along with an
// append-only set of subscriber validators. Publication of a new value
// succeeds only if every subscriber's validator accepts it; if any
// validator rejects the candidate, the previous value is retained and the
// rejecting validators' errors are returned together.
//
// Reads take a read lock only long enough to copy the current value, so
// readers never block writers and vice versa beyond that brief critical
// section.
type Refreshable[T any] struct {
	mu         sync.RWMutex
	current    T
	validators []namedValidator[T]
}

type namedValidator[T any] struct {
	name string
	fn   Validator[T]
}

// NewRefreshable creates a Refreshable seeded with an initial value. The
// initial value is not run through any validators, since none have
// subscribed yet.
func NewRefreshable[T any](initial T) *Refreshable[T] {
	return &Refreshable[T]{current: initial}
}

// Current returns a snapshot of the current value.
func (r *Refreshable[T]) Current() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Subscribe registers a named validator that must accept every future
// published value. The validator is not run against the current value.
func (r *Refreshable[T]) Subscribe(name string, fn Validator[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators = append(r.validators, namedValidator[T]{name: name, fn: fn})
}

// Publish attempts to replace the current value with candidate. Every
// registered validator runs against candidate before anything is
// replaced; if all accept, the value is swapped atomically and Publish
// returns nil. If any validator rejects, the current value is left
// untouched and Publish returns a ValidationError aggregating every
// rejection.
func (r *Refreshable[T]) Publish(candidate T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var failures []ValidatorFailure
	for _, v := range r.validators {
		if err := v.fn(candidate); err != nil {
			failures = append(failures, ValidatorFailure{Name: v.name, Err: err})
		}
	}
	if len(failures) > 0 {
		return &ValidationError{Failures: failures}
	}

	r.current = candidate
	return nil
}

// ValidatorFailure records one rejecting validator's name and error.
type ValidatorFailure struct {
	Name string
	Err  error
}

// ValidationError aggregates every validator rejection from a failed
// Publish call.
type ValidationError struct {
	Failures []ValidatorFailure
}

func (e *ValidationError) Error() string {
	if len(e.Failures) == 1 {
		return fmt.Sprintf("refreshable: validator %q rejected publication: %v", e.Failures[0].Name, e.Failures[0].Err)
	}
	msg := fmt.Sprintf("refreshable: %d validators rejected publication:", len(e.Failures))
	for _, f := range e.Failures {
		msg += fmt.Sprintf(" [%s: %v]", f.Name, f.Err)
	}
	return msg
}
