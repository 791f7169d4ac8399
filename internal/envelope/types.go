// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package envelope

import "time"

// Type identifies an envelope's schema.
type Type string

const (
	TypeService    Type = "service.1"
	TypeRequest    Type = "request.2"
	TypeTrace      Type = "trace.1"
	TypeAudit      Type = "audit.3"
	TypeMetric     Type = "metric.1"
	TypeDiagnostic Type = "diagnostic.1"
)

// Envelope is the common shape every log entry is wrapped in before being
// handed to an Appender. Type selects which of Service/Request/Trace/
// Audit/Metric/Diagnostic is populated.
type Envelope struct {
	Type Type      `json:"type"`
	Time time.Time `json:"time"`

	Service    *ServiceLog    `json:"service,omitempty"`
	Request    *RequestLog    `json:"request,omitempty"`
	Trace      *TraceLog      `json:"trace,omitempty"`
	Audit      *AuditLog      `json:"audit,omitempty"`
	Metric     *MetricLog     `json:"metric,omitempty"`
	Diagnostic *DiagnosticLog `json:"diagnostic,omitempty"`
}

// ServiceLog is an unstructured operational log line. Message and Params
// must contain only values the caller has already marked safe to log;
// the MDC's unsafe bucket is never copied into one of these.
type ServiceLog struct {
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Origin  string         `json:"origin,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	Unsafe  map[string]any `json:"unsafeParams,omitempty"`
}

// RequestLog is emitted once per completed HTTP request.
type RequestLog struct {
	Method       string        `json:"method"`
	Path         string        `json:"path"`
	Status       int           `json:"status"`
	RequestSize  int64         `json:"requestSize"`
	ResponseSize int64         `json:"responseSize"`
	Duration     time.Duration `json:"duration"`
	TraceID      string        `json:"traceId,omitempty"`
}

// TraceLog is emitted once per completed span.
type TraceLog struct {
	TraceID      string        `json:"traceId"`
	SpanID       string        `json:"spanId"`
	ParentSpanID string        `json:"parentSpanId,omitempty"`
	Operation    string        `json:"operation"`
	Start        time.Time     `json:"start"`
	Duration     time.Duration `json:"duration"`
	Annotations  []Annotation  `json:"annotations,omitempty"`
}

// Annotation is a single timestamped point event within a span.
type Annotation struct {
	Time  time.Time `json:"time"`
	Value string    `json:"value"`
}

// Severity is a security-relevant audit event's severity level.
type Severity string

const (
	SeverityDebug    Severity = "debug"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Outcome records whether the audited action succeeded.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeUnknown Outcome = "unknown"
)

// AuditLog is a security- or compliance-relevant event.
type AuditLog struct {
	Name          string         `json:"name"`
	Severity      Severity       `json:"severity"`
	Outcome       Outcome        `json:"outcome"`
	Description   string         `json:"description,omitempty"`
	ActorID       string         `json:"actorId,omitempty"`
	ActorRoles    []string       `json:"actorRoles,omitempty"`
	SourceIP      string         `json:"sourceIp,omitempty"`
	RequestParams map[string]any `json:"requestParams,omitempty"`
	ResultParams  map[string]any `json:"resultParams,omitempty"`
}

// MetricLog is a single metric observation.
type MetricLog struct {
	Name  string            `json:"name"`
	Value float64           `json:"value"`
	Type  string            `json:"metricType"` // counter, gauge, histogram
	Tags  map[string]string `json:"tags,omitempty"`
}

// DiagnosticLog carries an on-demand or startup diagnostic payload.
type DiagnosticLog struct {
	DiagnosticType string `json:"diagnosticType"`
	Payload        any    `json:"value"`
}
