// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package pipeline implements the framework's Service/Layer algebra and
the twenty-stage request pipeline built on it: nineteen ordered layers
(routing, request-id generation, trace propagation, span lifetime,
unverified JWT inspection, MDC scoping, request logging,
deprecation/keep-alive/server/no-cache/web-security headers, the trace-id
response header, endpoint metrics and health, the cancellation watchdog,
panic recovery, and error logging) wrapping a terminal handler-dispatch
service, plus an optional Gzip layer outside routing and a RecordLatency
layer just inside it.
*/
package pipeline
