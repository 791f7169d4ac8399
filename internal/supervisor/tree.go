// Copyright 2026 The Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	// Default: 5
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay in seconds.
	// Default: 30
	FailureDecay float64

	// FailureBackoff is the duration to wait when threshold is exceeded.
	// Default: 15s
	FailureBackoff time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns production-ready defaults matching suture's own.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// SupervisorTree manages the hierarchical supervisor structure for the
// framework runtime.
//
// The tree is organized into three layers:
//   - observability: the log-retention cleanup
//   - config: the runtime config reloader
//   - server: the main and management HTTP listeners
//
// This structure provides failure isolation - a crash in the config
// reloader won't affect the server's ability to keep serving requests.
type SupervisorTree struct {
	root          *suture.Supervisor
	observability *suture.Supervisor
	config        *suture.Supervisor
	server        *suture.Supervisor
	logger        *slog.Logger
	treeConfig    TreeConfig
}

// NewSupervisorTree creates a new supervisor tree with the given configuration.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5.0
	}
	if config.FailureDecay == 0 {
		config.FailureDecay = 30.0
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = 15 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	// MustHook has a pointer receiver, so we take the address of Handler.
	handler := &sutureslog.Handler{Logger: logger}
	eventHook := handler.MustHook()

	rootSpec := suture.Spec{
		EventHook:        eventHook,
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	// Child supervisors inherit the parent's EventHook once added to the root.
	childSpec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	root := suture.New("framework", rootSpec)
	observability := suture.New("observability-layer", childSpec)
	cfg := suture.New("config-layer", childSpec)
	server := suture.New("server-layer", childSpec)

	root.Add(observability)
	root.Add(cfg)
	root.Add(server)

	return &SupervisorTree{
		root:          root,
		observability: observability,
		config:        cfg,
		server:        server,
		logger:        logger,
		treeConfig:    config,
	}, nil
}

// Root returns the root supervisor for direct access if needed.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// AddObservabilityService adds a service to the observability layer.
// Use this for the log-retention cleanup.
func (t *SupervisorTree) AddObservabilityService(svc suture.Service) suture.ServiceToken {
	return t.observability.Add(svc)
}

// AddConfigService adds a service to the config layer.
// Use this for the runtime config reloader.
func (t *SupervisorTree) AddConfigService(svc suture.Service) suture.ServiceToken {
	return t.config.Add(svc)
}

// AddServerService adds a service to the server layer.
// Use this for the HTTP listener services.
func (t *SupervisorTree) AddServerService(svc suture.Service) suture.ServiceToken {
	return t.server.Add(svc)
}

// RemoveConfigService removes a service from the config layer supervisor.
func (t *SupervisorTree) RemoveConfigService(token suture.ServiceToken) error {
	return t.config.Remove(token)
}

// Serve starts the supervisor tree and blocks until the context is canceled.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground starts the supervisor tree in a background goroutine.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport returns services that failed to stop within the
// configured shutdown timeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}

// Remove removes a service from the tree by its token.
func (t *SupervisorTree) Remove(token suture.ServiceToken) error {
	return t.root.Remove(token)
}

// RemoveAndWait removes a service and waits for it to fully stop.
func (t *SupervisorTree) RemoveAndWait(token suture.ServiceToken, timeout time.Duration) error {
	return t.root.RemoveAndWait(token, timeout)
}
