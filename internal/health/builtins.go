// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package health

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// ConfigReloadStatusFunc reports whether the latest runtime-config reload
// succeeded and, if not, why. internal/server adapts config.Reloader.Status
// (which returns a config.ReloadStatus) to it. It is kept as
// a narrow function type here so this package doesn't import config and
// create a dependency cycle (config imports nothing from health, but
// server wiring is cleaner when health only depends on the primitives it
// reports on).
type ConfigReloadStatusFunc func() (healthy bool, message string)

// ConfigReloadCheck reports CONFIG_RELOAD: ERROR after the most recent
// runtime-config reload attempt failed (read, parse, or validator
// rejection), HEALTHY otherwise.
type ConfigReloadCheck struct {
	Status ConfigReloadStatusFunc
}

func (c *ConfigReloadCheck) Name() string { return "CONFIG_RELOAD" }

func (c *ConfigReloadCheck) Check() Result {
	healthy, msg := c.Status()
	if healthy {
		return Result{State: StateHealthy}
	}
	return Result{State: StateError, Message: msg}
}

// panicWarningWindow is how long a recorded panic keeps PANICS at
// WARNING. Matches witchcraft-server's PanicsHealthCheck threshold.
const panicWarningWindow = 5 * time.Minute

// PanicsCheck reports PANICS: WARNING for panicWarningWindow after the
// most recent Record call, HEALTHY otherwise. Record is its only input:
// the pipeline's CatchUnwind layer does not call it, so panics recovered
// there leave this check HEALTHY. Check never mutates state,
// so polling it twice in a row (or once, four minutes later) observes
// the same sliding window rather than a one-shot flag.
type PanicsCheck struct {
	mu        sync.Mutex
	lastPanic time.Time
	lastMsg   string

	// now defaults to time.Now; overridden in tests to avoid a real
	// panicWarningWindow-long sleep.
	now func() time.Time
}

func (c *PanicsCheck) Name() string { return "PANICS" }

// Record logs a recovered panic against this check. Safe for concurrent use.
func (c *PanicsCheck) Record(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastPanic = c.clock()
	c.lastMsg = message
}

func (c *PanicsCheck) Check() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastPanic.IsZero() || c.clock().Sub(c.lastPanic) >= panicWarningWindow {
		return Result{State: StateHealthy, Message: "no thread has panicked in the last " + panicWarningWindow.String()}
	}
	return Result{State: StateWarning, Message: "a thread panicked in the last " + panicWarningWindow.String() + ": " + c.lastMsg}
}

func (c *PanicsCheck) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// ServiceDependencyCheck probes a downstream service's reachability by
// attempting a TCP dial (or, for http(s) URIs, an HTTP HEAD) against each
// configured URI, reporting WARNING if every URI is unreachable and
// HEALTHY if at least one responds. This matches the
// config.Runtime.Services catalog: operators list every known address
// for a dependency and the check only escalates once none of them work.
type ServiceDependencyCheck struct {
	ServiceName string
	URIs        []string
	Timeout     time.Duration
	Client      *http.Client
}

func (c *ServiceDependencyCheck) Name() string { return "SERVICE_DEPENDENCY:" + c.ServiceName }

func (c *ServiceDependencyCheck) Check() Result {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 2 * time.Second
	}

	for _, uri := range c.URIs {
		if c.probe(uri, timeout) {
			return Result{State: StateHealthy}
		}
	}
	return Result{State: StateWarning, Message: "no configured URI for " + c.ServiceName + " is reachable"}
}

func (c *ServiceDependencyCheck) probe(uri string, timeout time.Duration) bool {
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	req, err := http.NewRequest(http.MethodHead, uri, nil)
	if err != nil {
		return c.probeTCP(uri, timeout)
	}
	resp, err := client.Do(req)
	if err != nil {
		return c.probeTCP(uri, timeout)
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

func (c *ServiceDependencyCheck) probeTCP(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
