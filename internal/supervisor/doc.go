// Copyright 2026 The Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package supervisor provides process supervision for the framework runtime
using suture v4.

This package implements a hierarchical supervisor tree that manages the
lifecycle of the framework's long-lived background services: the
log-retention cleanup, the config reloader, and the HTTP listeners. The
log appender's consumer goroutine and the crash-dump sibling process run
outside the tree.
It provides Erlang/OTP-style supervision with automatic restart, failure
isolation, and graceful shutdown.

# Overview

The supervisor tree organizes services into three layers for failure
isolation:

	RootSupervisor ("framework")
	├── ObservabilitySupervisor ("observability-layer")
	│   └── Log-retention cleanup service
	├── ConfigSupervisor ("config-layer")
	│   └── Runtime config reloader service
	└── ServerSupervisor ("server-layer")
	    ├── Main HTTP listener service
	    └── Management HTTP listener service (when a management port is set)

This hierarchy ensures that a crash in the config reloader doesn't affect
request serving, and that log-cleanup failures don't impact the HTTP
listeners. Each layer restarts independently.

# Key Features

Automatic Restart:
  - Crashed services are automatically restarted
  - Exponential backoff prevents restart storms
  - Configurable failure thresholds and decay rates

Failure Isolation:
  - Services are organized into logical groups
  - Child supervisor failures don't propagate upward
  - Each layer has independent failure counting

Graceful Shutdown:
  - Context cancellation triggers orderly shutdown
  - Configurable shutdown timeout per service
  - UnstoppedServiceReport for debugging hangs

# Usage Example

	logger := slog.Default()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    log.Fatal(err)
	}

	tree.AddObservabilityService(cleanupService)
	tree.AddConfigService(reloaderService)
	tree.AddServerService(listenerService)

	if err := tree.Serve(ctx); err != nil {
	    log.Printf("supervisor stopped: %v", err)
	}

# Service Interface

All services must implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return behavior:
  - Return nil: service stopped cleanly, will not be restarted
  - Return error: service crashed, will be restarted
  - Context canceled: shutdown requested, return promptly
*/
package supervisor
