// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package server wires every other internal package into a single runnable
process: it loads configuration, builds the log-envelope appenders and
registries, assembles the request pipeline and transport listener, spawns
the crash-dump sibling, and drives the supervisor tree and shutdown
sequence. cmd/server's main is a thin CLI shell around this package.
*/
package server
