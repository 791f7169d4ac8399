// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package diagnostics

import (
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricNamesDiagnostic exposes the name of every metric family
// currently registered in a prometheus.Gatherer, for "metric.names.v1".
type MetricNamesDiagnostic struct {
	Gatherer prometheus.Gatherer
}

func (m *MetricNamesDiagnostic) Type() string { return "metric.names.v1" }

func (m *MetricNamesDiagnostic) Capture() (any, error) {
	families, err := m.Gatherer.Gather()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	return names, nil
}

// GoroutineDumpDiagnostic captures a full goroutine stack dump, the
// Go-native substitute for a native-process thread dump: a crash-dump
// sibling process attaching to a Go binary can't unwind its stacks the
// way it can for a C/C++ process, so this is captured in-process instead
// and embedded directly in the diagnostic or crash-dump payload.
type GoroutineDumpDiagnostic struct{}

func (g *GoroutineDumpDiagnostic) Type() string { return "goroutine.dump.v1" }

func (g *GoroutineDumpDiagnostic) Capture() (any, error) {
	var sb strings.Builder
	if err := pprof.Lookup("goroutine").WriteTo(&sb, 2); err != nil {
		return nil, err
	}
	return sb.String(), nil
}

// BuildInfoDiagnostic reports the Go runtime version and GOOS/GOARCH the
// binary was built for, for inclusion in a crash-dump header.
type BuildInfoDiagnostic struct{}

func (b *BuildInfoDiagnostic) Type() string { return "build.info.v1" }

func (b *BuildInfoDiagnostic) Capture() (any, error) {
	return map[string]string{
		"goVersion": runtime.Version(),
		"goos":      runtime.GOOS,
		"goarch":    runtime.GOARCH,
	}, nil
}
