// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package envelope

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type recordingSink struct {
	mu       sync.Mutex
	received []Envelope
	closed   atomic.Bool
}

func (r *recordingSink) Append(e Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, e)
}

func (r *recordingSink) Close() error {
	r.closed.Store(true)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.received)
}

func TestAsyncAppenderDeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	a := NewAsyncAppender("test", sink, 16, nil, nil)

	for i := 0; i < 10; i++ {
		a.Append(Envelope{Type: TypeService, Service: &ServiceLog{Message: string(rune('a' + i))}})
	}

	deadline := time.Now().Add(time.Second)
	for sink.count() < 10 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if got := sink.count(); got != 10 {
		t.Fatalf("expected 10 delivered envelopes, got %d", got)
	}
	sink.mu.Lock()
	received := append([]Envelope(nil), sink.received...)
	sink.mu.Unlock()
	for i, e := range received {
		if want := string(rune('a' + i)); e.Service.Message != want {
			t.Fatalf("envelope %d: expected message %q, got %q", i, want, e.Service.Message)
		}
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !sink.closed.Load() {
		t.Fatal("expected underlying sink to be closed")
	}
}

func TestAsyncAppenderDropsOldestUnderBackpressure(t *testing.T) {
	blocked := make(chan struct{})
	release := make(chan struct{})
	var drops atomic.Int64

	sink := &blockingSink{blocked: blocked, release: release}
	a := NewAsyncAppender("test", sink, 1, func(string) { drops.Add(1) }, nil)

	a.Append(Envelope{Type: TypeService})
	<-blocked // consumer goroutine is now blocked processing the first envelope

	// Queue depth is 1 and the consumer is busy: the first of these fills
	// the queue, the second overflows it and drops the oldest.
	a.Append(Envelope{Type: TypeService})
	a.Append(Envelope{Type: TypeService})

	close(release)
	_ = a.Close()

	if drops.Load() == 0 {
		t.Fatal("expected at least one drop under backpressure")
	}
}

type blockingSink struct {
	once    sync.Once
	blocked chan struct{}
	release chan struct{}
}

func (b *blockingSink) Append(e Envelope) {
	b.once.Do(func() {
		close(b.blocked)
		<-b.release
	})
}

func (b *blockingSink) Close() error { return nil }

func TestFanOutForwardsToAll(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	fan := FanOut(a, b)

	fan.Append(Envelope{Type: TypeMetric})

	if a.count() != 1 || b.count() != 1 {
		t.Fatalf("expected both sinks to receive the envelope, got %d and %d", a.count(), b.count())
	}
}
