// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package crashdump implements the framework's crash-dump subsystem: a
sibling process (the same binary re-invoked with the "minidump"
subcommand) listens on a Unix domain socket and, on request, persists a
dump that the parent sends it. The parent captures that dump itself: its
own goroutine stacks, the Go-native substitute for a native minidump,
since there is no foreign-process memory to symbolize here. The sibling
only writes the bytes out, from a process that a fault in the parent
cannot also take down mid-write.

On next startup, any dump left with a .dmp.new suffix (capture started
but the process died before the parent could finish processing it) is
renamed to .dmp and reported as a FATAL service log.
*/
package crashdump
