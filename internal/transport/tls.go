// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/tomtom215/witchframe/internal/metrics"
)

// TLSConfig builds a *tls.Config for the server's TLS layer: it loads
// the configured certificate/key pair, selects ALPN protocols (h2 and
// http/1.1, or http/1.1 alone when http2Enabled is false), and, when a
// client-auth trust store is given,
// requires and verifies client certificates against it.
func TLSConfig(certFile, keyFile, clientAuthTrustStore string, http2Enabled bool) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("transport: loading TLS credentials: %w", err)
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if http2Enabled {
		cfg.NextProtos = []string{"h2", "http/1.1"}
	} else {
		cfg.NextProtos = []string{"http/1.1"}
	}

	if clientAuthTrustStore != "" {
		pool, err := loadTrustStore(clientAuthTrustStore)
		if err != nil {
			return nil, err
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return cfg, nil
}

func loadTrustStore(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("transport: reading client-auth trust store: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("transport: no certificates found in trust store %s", path)
	}
	return pool, nil
}

// TimeHandshake wraps the TLS handshake timing and rejection-counting
// around a *tls.Conn's Handshake call, for the framework's TLS layer
// handshake-duration histogram and rejected-connection counter.
func TimeHandshake(conn *tls.Conn) error {
	start := time.Now()
	err := conn.HandshakeContext(context.Background())
	metrics.RecordTLSHandshake(time.Since(start))
	if err != nil {
		metrics.ConnectionRejected("tls_handshake")
	}
	return err
}
