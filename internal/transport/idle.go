// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package transport

import (
	"net"
	"time"

	"github.com/tomtom215/witchframe/internal/metrics"
)

// IdleConn renews a deadline on every read and write so the connection
// is closed by the runtime once it has been quiescent for timeout,
// rather than requiring a separate watchdog goroutine per connection.
type IdleConn struct {
	net.Conn
	timeout time.Duration
	closed  bool
}

// NewIdleConn wraps conn with an idle-timeout deadline of timeout,
// applied immediately and renewed on every successful Read/Write.
func NewIdleConn(conn net.Conn, timeout time.Duration) *IdleConn {
	c := &IdleConn{Conn: conn, timeout: timeout}
	_ = conn.SetDeadline(time.Now().Add(timeout))
	return c
}

func (c *IdleConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if err == nil {
		_ = c.Conn.SetDeadline(time.Now().Add(c.timeout))
	} else if isTimeout(err) {
		c.noteIdleClose()
	}
	return n, err
}

func (c *IdleConn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	if err == nil {
		_ = c.Conn.SetDeadline(time.Now().Add(c.timeout))
	} else if isTimeout(err) {
		c.noteIdleClose()
	}
	return n, err
}

func (c *IdleConn) noteIdleClose() {
	if !c.closed {
		c.closed = true
		metrics.ConnectionIdleClosed()
	}
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
