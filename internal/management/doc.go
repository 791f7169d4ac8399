// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package management implements the framework's management HTTP surface:
liveness, readiness, health, and diagnostic endpoints. These are plain
net/http handlers rather than pipeline.Service layers, since they serve
operational tooling (load balancer health probes, on-call diagnostics)
rather than application traffic, and don't need routing, tracing, or MDC
scoping of their own.
*/
package management
