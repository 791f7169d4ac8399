// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package shutdown implements the framework's orderly-drain sequencing:
stop accepting connections, let in-flight requests finish up to a
grace period, flush log appenders, then run registered shutdown hooks —
each step bounded so the process never hangs indefinitely on exit.
*/
package shutdown
