// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

// Package main is the entry point for the witchframe server binary.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered install/runtime YAML plus environment overrides (koanf)
//  2. Logging: zerolog envelopes fanned out to a rolling file, stdout, and metrics
//  3. Registries: health, readiness, and diagnostics checks
//  4. Request pipeline: the full routing/tracing/logging/resilience layer stack
//  5. Transport: the accept-path listener (connection limit, idle timeout, TLS)
//  6. Crash-dump sibling: a minidump-writer process spawned and supervised
//  7. Supervisor tree: suture-based fault isolation across the above
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections, drains in-flight requests up to
// server.shutdown-grace-period, flushes log appenders, then exits.
//
// # Subcommands
//
// Running the binary with no subcommand starts the server itself.
// Running it with "minidump" instead starts the crash-dump sibling
// process; this is how the server re-invokes its own binary to spawn
// that sibling, not something an operator runs directly.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/witchframe/internal/crashdump"
	"github.com/tomtom215/witchframe/internal/logging"
	"github.com/tomtom215/witchframe/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand(ctx).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand builds the CLI. ctx carries the signal-driven cancellation
// that Run uses to start its shutdown sequence; it is set once here rather
// than via cobra's own context plumbing since nothing below needs to
// override it per-subcommand.
func newRootCommand(ctx context.Context) *cobra.Command {
	opts := server.DefaultOptions()

	root := &cobra.Command{
		Use:           "witchframe",
		Short:         "witchframe HTTP service framework",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
	root.SetContext(ctx)

	root.PersistentFlags().StringVar(&opts.InstallPath, "install-config", opts.InstallPath, "path to install.yml")
	root.PersistentFlags().StringVar(&opts.RuntimePath, "runtime-config", opts.RuntimePath, "path to runtime.yml")
	root.PersistentFlags().StringVar(&opts.KeyPath, "encryption-key", opts.KeyPath, "path to the config value decryption key")
	root.PersistentFlags().StringVar(&opts.LogDir, "log-dir", opts.LogDir, "directory for rolling log output")
	root.PersistentFlags().StringVar(&opts.DumpDir, "dump-dir", opts.DumpDir, "directory for crash dumps")
	root.PersistentFlags().StringVar(&opts.SocketPath, "socket", opts.SocketPath, "crash-dump sibling's Unix-domain socket path")

	root.AddCommand(newMinidumpCommand(&opts))

	return root
}

// newMinidumpCommand builds the sibling subcommand SpawnSibling invokes:
// it listens on --socket and persists whatever crash-dump content the
// parent process sends it, entirely out of the parent's process space
// so a fault that kills the parent can't also take the dump with it.
func newMinidumpCommand(opts *server.Options) *cobra.Command {
	return &cobra.Command{
		Use:    "minidump",
		Short:  "run the crash-dump sibling process (internal)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true, Output: os.Stderr})
			srv := &crashdump.Server{Logger: logging.Logger()}
			return srv.Serve(cmd.Context(), opts.SocketPath)
		},
	}
}

func runServer(ctx context.Context, opts server.Options) error {
	srv, err := server.New(opts)
	if err != nil {
		return fmt.Errorf("witchframe: %w", err)
	}
	return srv.Run(ctx)
}
