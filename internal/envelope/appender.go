// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package envelope

import (
	"context"
	"io"
)

// Appender accepts envelopes. Append must not block for long; appenders
// that do I/O should be wrapped in an AsyncAppender.
type Appender interface {
	Append(e Envelope)
}

// AppenderFunc adapts a plain function to the Appender interface.
type AppenderFunc func(Envelope)

func (f AppenderFunc) Append(e Envelope) { f(e) }

// FanOut returns an Appender that forwards every envelope to each of the
// given appenders in order.
func FanOut(appenders ...Appender) Appender {
	return AppenderFunc(func(e Envelope) {
		for _, a := range appenders {
			a.Append(e)
		}
	})
}

// Sync performs the actual, possibly blocking, write of an envelope. It
// is the interface AsyncAppender wraps.
type Sync interface {
	Appender
	io.Closer
}

// AsyncAppender wraps a Sync appender with a bounded queue and a single
// consumer goroutine, so producers (request handlers, the logging
// middleware) never block on slow I/O. Under backpressure it drops the
// oldest queued envelope to make room for the newest one, and counts
// every drop rather than silently discarding it.
//
// This mirrors the audit subsystem's original asyncWriter/eventChan
// design, generalized from a single audit-event channel to any envelope
// type and parameterized by queue depth and a drop counter.
type AsyncAppender struct {
	name     string
	sink     Sync
	queue    chan Envelope
	stopped  chan struct{}
	done     chan struct{}
	onDrop   func(name string)
	onQueued func(name string, depth int)
}

// NewAsyncAppender creates an AsyncAppender with the given bounded queue
// depth. onDrop and onQueued, if non-nil, are invoked for observability
// (wired to internal/metrics.RecordAppenderDrop / SetAppenderQueueDepth).
func NewAsyncAppender(name string, sink Sync, queueDepth int, onDrop func(string), onQueued func(string, int)) *AsyncAppender {
	a := &AsyncAppender{
		name:     name,
		sink:     sink,
		queue:    make(chan Envelope, queueDepth),
		stopped:  make(chan struct{}),
		done:     make(chan struct{}),
		onDrop:   onDrop,
		onQueued: onQueued,
	}
	go a.run()
	return a
}

// Append enqueues e for asynchronous writing. If the queue is full, the
// oldest queued envelope is dropped to make room.
func (a *AsyncAppender) Append(e Envelope) {
	select {
	case a.queue <- e:
	default:
		select {
		case <-a.queue:
			if a.onDrop != nil {
				a.onDrop(a.name)
			}
		default:
		}
		select {
		case a.queue <- e:
		default:
			if a.onDrop != nil {
				a.onDrop(a.name)
			}
		}
	}
	if a.onQueued != nil {
		a.onQueued(a.name, len(a.queue))
	}
}

func (a *AsyncAppender) run() {
	defer close(a.done)
	for {
		select {
		case e := <-a.queue:
			a.sink.Append(e)
		case <-a.stopped:
			for {
				select {
				case e := <-a.queue:
					a.sink.Append(e)
				default:
					return
				}
			}
		}
	}
}

// Close signals the consumer goroutine to drain everything still queued,
// waits for it to finish, then closes the underlying sink. Append does
// not check for Close; an envelope appended after Close is never written.
func (a *AsyncAppender) Close() error {
	close(a.stopped)
	<-a.done
	return a.sink.Close()
}

// Shutdown is a context-aware variant of Close for callers that want a
// hard deadline on drain time.
func (a *AsyncAppender) Shutdown(ctx context.Context) error {
	result := make(chan error, 1)
	go func() { result <- a.Close() }()
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
