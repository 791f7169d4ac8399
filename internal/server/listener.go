// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package server

import (
	"crypto/tls"
	"net"
	"time"

	"github.com/tomtom215/witchframe/internal/transport"
)

// engineListener composes the transport package's individual layers
// (retry-on-temporary-error, connection-limit semaphore, idle-timeout
// deadlines, and an eager TLS handshake) into the single net.Listener
// http.Server.Serve expects.
type engineListener struct {
	net.Listener
	idleTimeout time.Duration
	tlsConfig   *tls.Config
}

// newEngineListener wraps inner with the framework's full accept-path
// policy. connLimit <= 0 disables the connection cap. tlsConfig == nil
// serves plaintext.
func newEngineListener(inner net.Listener, connLimit int, idleTimeout time.Duration, tlsConfig *tls.Config, onTemporaryError func(error)) net.Listener {
	var base net.Listener = transport.NewListener(inner, onTemporaryError)
	if connLimit > 0 {
		base = transport.NewLimitedListener(base, connLimit)
	}
	return &engineListener{Listener: base, idleTimeout: idleTimeout, tlsConfig: tlsConfig}
}

// Accept returns the next connection with idle-timeout deadlines and (if
// configured) TLS already negotiated. A connection that fails its TLS
// handshake is closed and Accept tries the next one rather than
// propagating the failure as a fatal Accept error, matching
// http.Server's own behavior for a TLS listener.
func (l *engineListener) Accept() (net.Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err != nil {
			return nil, err
		}

		var c net.Conn = conn
		if l.idleTimeout > 0 {
			c = transport.NewIdleConn(c, l.idleTimeout)
		}

		if l.tlsConfig == nil {
			return c, nil
		}

		tlsConn := tls.Server(c, l.tlsConfig)
		if err := transport.TimeHandshake(tlsConn); err != nil {
			_ = tlsConn.Close()
			continue
		}
		return tlsConn, nil
	}
}
