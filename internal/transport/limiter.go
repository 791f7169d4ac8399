// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package transport

import (
	"net"

	"github.com/tomtom215/witchframe/internal/metrics"
)

// LimitedListener bounds concurrent connections to maxConns. A permit
// is acquired on Accept and held for the connection's full lifetime,
// released when the returned net.Conn is closed.
type LimitedListener struct {
	net.Listener
	permits chan struct{}
}

// NewLimitedListener wraps inner with a maxConns-sized semaphore.
func NewLimitedListener(inner net.Listener, maxConns int) *LimitedListener {
	return &LimitedListener{Listener: inner, permits: make(chan struct{}, maxConns)}
}

// Accept blocks until a permit is available, then accepts. If the
// underlying Accept fails, the permit is returned immediately.
func (l *LimitedListener) Accept() (net.Conn, error) {
	l.permits <- struct{}{}
	conn, err := l.Listener.Accept()
	if err != nil {
		<-l.permits
		return nil, err
	}
	return &permitConn{Conn: conn, release: l.release}, nil
}

func (l *LimitedListener) release() {
	<-l.permits
	metrics.ConnectionClosed()
}

// Utilization returns the fraction of the connection-limit semaphore
// currently held. No metric in internal/metrics exports this value.
func (l *LimitedListener) Utilization() float64 {
	return float64(len(l.permits)) / float64(cap(l.permits))
}

// permitConn releases its semaphore permit exactly once on Close,
// regardless of how many times Close is called.
type permitConn struct {
	net.Conn
	release  func()
	released bool
}

func (c *permitConn) Close() error {
	err := c.Conn.Close()
	if !c.released {
		c.released = true
		c.release()
	}
	return err
}
