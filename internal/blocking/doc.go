// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package blocking implements the synchronous facade handed to blocking
endpoint handlers: a bufio-backed reader over the request body and a
buffering writer over the response sink, each operation bounded by a
60-second timeout, plus a cancellation token the handler can poll to
abandon work once the client disappears.

Go handlers are not asynchronous tasks the way the framework's source
model describes them, so there is no separate executor to bridge into;
this package instead gives a handler written in a synchronous style the
same per-operation timeout and cancellation observability the
asynchronous pipeline layers get natively from context.Context.
*/
package blocking
