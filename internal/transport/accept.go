// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package transport

import (
	"net"
	"time"

	"github.com/tomtom215/witchframe/internal/metrics"
)

// Listener wraps a net.Listener with the accept-loop error policy: a
// temporary resource-exhaustion error (too many open files, out of
// buffers) is logged and retried after a backoff rather than
// terminating the loop.
type Listener struct {
	net.Listener
	onTemporaryError func(error)
}

// NewListener wraps inner with the framework's accept-loop retry policy.
func NewListener(inner net.Listener, onTemporaryError func(error)) *Listener {
	return &Listener{Listener: inner, onTemporaryError: onTemporaryError}
}

// Accept retries on temporary errors with a fixed one-second backoff,
// matching the framework's EMFILE/ENFILE/ENOBUFS/ENOMEM policy; Go's
// net package does not expose the errno, so any net.Error reporting
// Temporary() is treated the same way.
func (l *Listener) Accept() (net.Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err == nil {
			if tcp, ok := conn.(*net.TCPConn); ok {
				_ = tcp.SetNoDelay(true)
				_ = tcp.SetKeepAlive(true)
				_ = tcp.SetKeepAlivePeriod(3 * time.Minute)
			}
			metrics.ConnectionAccepted()
			return conn, nil
		}

		var ne net.Error
		if asNetError(err, &ne) && ne.Temporary() { //nolint:staticcheck // Temporary is deprecated but still the only portable signal here
			if l.onTemporaryError != nil {
				l.onTemporaryError(err)
			}
			time.Sleep(time.Second)
			continue
		}
		return nil, err
	}
}

func asNetError(err error, target *net.Error) bool {
	ne, ok := err.(net.Error)
	if ok {
		*target = ne
	}
	return ok
}
