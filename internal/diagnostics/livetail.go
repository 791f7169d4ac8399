// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package diagnostics

import (
	"sync"

	"github.com/tomtom215/witchframe/internal/envelope"
)

// LiveTail fans out every appended envelope to whichever websocket
// clients are currently attached to the live-tail diagnostic endpoint.
// It implements envelope.Appender so it can sit directly alongside the
// file/stdout/metrics appenders in the same fan-out, with no appender
// aware that a live tail exists.
type LiveTail struct {
	mu   sync.Mutex
	subs map[chan envelope.Envelope]struct{}
}

// NewLiveTail returns an empty LiveTail with no subscribers.
func NewLiveTail() *LiveTail {
	return &LiveTail{subs: make(map[chan envelope.Envelope]struct{})}
}

// Append forwards e to every current subscriber. A subscriber whose
// buffer is full is skipped for this envelope rather than blocking the
// rest of the logging pipeline on a slow websocket client.
func (l *LiveTail) Append(e envelope.Envelope) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new subscriber with the given channel buffer
// depth and returns the channel plus an unsubscribe function the caller
// must invoke exactly once when it stops reading, which closes the
// channel.
func (l *LiveTail) Subscribe(buffer int) (<-chan envelope.Envelope, func()) {
	ch := make(chan envelope.Envelope, buffer)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()

	unsubscribe := func() {
		l.mu.Lock()
		delete(l.subs, ch)
		l.mu.Unlock()
		close(ch)
	}
	return ch, unsubscribe
}
