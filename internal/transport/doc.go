// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package transport implements the accept loop and the connection-level
policy layers that sit in front of the request pipeline: a
connection-limiting semaphore, TLS termination with optional
client-certificate authentication, and an idle-connection watchdog that
closes quiescent connections. These are expressed as net.Listener and
http.Server hooks rather than a from-scratch protocol engine, since
net/http already implements the HTTP/1.1 and HTTP/2 engines the
framework's connection loop would otherwise have to provide.
*/
package transport
