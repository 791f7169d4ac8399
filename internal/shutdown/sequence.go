// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package shutdown

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Hook is a registered cleanup function run during an orderly shutdown.
// A hook's own error is logged but never aborts the rest of the
// sequence.
type Hook func(ctx context.Context) error

// Sequencer coordinates the framework's four-step shutdown: stop
// accepting, drain connections, flush appenders, run hooks.
type Sequencer struct {
	mu     sync.Mutex
	hooks  []namedHook
	logger zerolog.Logger
}

type namedHook struct {
	name string
	fn   Hook
}

// NewSequencer returns a Sequencer that logs via logger.
func NewSequencer(logger zerolog.Logger) *Sequencer {
	return &Sequencer{logger: logger}
}

// Register adds a named hook, run in registration order during Run's
// final step.
func (s *Sequencer) Register(name string, hook Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, namedHook{name: name, fn: hook})
}

// Steps bundles the three framework-level actions a Sequencer drives
// ahead of its own hook step: stop accepting new connections, drain
// in-flight work up to a grace period, and flush every log appender.
type Steps struct {
	StopAccepting  func()
	Drain          func(ctx context.Context) error
	FlushAppenders func(ctx context.Context) error
}

// Run executes the full shutdown sequence. Each step is bounded by the
// remaining time on ctx; a step that times out is logged and the
// sequence proceeds to the next one rather than blocking forever.
func (s *Sequencer) Run(ctx context.Context, steps Steps, gracePeriod time.Duration) {
	if steps.StopAccepting != nil {
		steps.StopAccepting()
	}

	drainCtx, cancel := context.WithTimeout(ctx, gracePeriod)
	defer cancel()
	if steps.Drain != nil {
		s.runBounded(drainCtx, "drain-connections", steps.Drain)
	}
	if steps.FlushAppenders != nil {
		s.runBounded(ctx, "flush-appenders", steps.FlushAppenders)
	}

	s.mu.Lock()
	hooks := append([]namedHook(nil), s.hooks...)
	s.mu.Unlock()

	for _, h := range hooks {
		hook := h
		s.runBounded(ctx, "hook:"+hook.name, hook.fn)
	}
}

func (s *Sequencer) runBounded(ctx context.Context, name string, fn func(ctx context.Context) error) {
	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			s.logger.Warn().Err(err).Str("step", name).Msg("shutdown step reported an error")
		}
	case <-ctx.Done():
		s.logger.Warn().Str("step", name).Msg("shutdown step timed out, proceeding")
	}
}
