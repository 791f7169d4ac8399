// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package body implements the framework's request/response body
accounting: a response sink that tracks bytes written and trailers,
records an abort (from a panic or peer disconnect) together with its
cause, and tolerates reads/writes after EOF silently rather
than panicking, per the pipeline's body-and-trailers contract.
*/
package body
