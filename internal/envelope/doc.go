// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package envelope implements the framework's structured log-envelope
pipeline: every business and operational event the framework emits is
wrapped in a typed envelope and handed to one or more Appenders.

# Envelope types

Six envelope types are defined, each with its own schema version:

  - service.1:    unstructured operational log lines (safe-loggable only)
  - request.2:    one entry per completed HTTP request
  - trace.1:      a completed span for distributed tracing
  - audit.3:      a security- or compliance-relevant event
  - metric.1:     a single metric observation
  - diagnostic.1: an on-demand or startup diagnostic payload

# Appenders

An Appender accepts envelopes and is responsible for getting them
somewhere durable. The pipeline composes:

  - AsyncAppender: wraps another Appender with a bounded MPSC queue and a
    single consumer goroutine, so producers never block. Under
    backpressure it drops the oldest queued envelope rather than the
    newest, and counts every drop.
  - JSONAppender: serializes envelopes as newline-delimited JSON using
    goccy/go-json and writes them to an io.Writer.
  - RollingFile: an io.Writer that wraps gopkg.in/natefinch/lumberjack.v2 with
    size-or-calendar-day rotation and an explicit fsync of the outgoing
    file on every rotation (not after every write, which would make
    every request pay for a disk sync).
  - MetricsAppender: converts gauge-type metric.1 envelopes into
    Prometheus gauge values instead of writing bytes anywhere; every
    other envelope is ignored.
  - NewStdoutAppender: a JSONAppender writing to stdout, used in
    console-log mode.

Appenders are combined with a fan-out Appender so one envelope can reach
several sinks (e.g. a rolling file plus stdout in console-log mode).
*/
package envelope
