// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// MockService is a suture.Service test double that records how many times
// it was started and can be configured to fail a fixed number of times
// before running cleanly.
type MockService struct {
	name       string
	startCount atomic.Int64
	failCount  atomic.Int64
}

// NewMockService creates a mock service with the given name.
func NewMockService(name string) *MockService {
	return &MockService{name: name}
}

// SetFailCount configures the service to return an error the first n times
// Serve is called.
func (s *MockService) SetFailCount(n int64) {
	s.failCount.Store(n)
}

// StartCount returns how many times Serve has been invoked.
func (s *MockService) StartCount() int64 {
	return s.startCount.Load()
}

// Serve implements suture.Service.
func (s *MockService) Serve(ctx context.Context) error {
	s.startCount.Add(1)

	if s.failCount.Load() > 0 {
		s.failCount.Add(-1)
		return errors.New("mock service: injected failure in " + s.name)
	}

	<-ctx.Done()
	return ctx.Err()
}
