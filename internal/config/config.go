// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package config

import "time"

// Install holds configuration that is read once at process startup and
// never changes for the lifetime of the process. Changing any of these
// values requires a restart.
type Install struct {
	Product ProductConfig `koanf:"product"`
	Server  ServerConfig  `koanf:"server"`
}

// ProductConfig identifies the running product for logging and diagnostics.
type ProductConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
}

// ServerConfig holds the install-time network and tuning parameters.
type ServerConfig struct {
	// Port is the primary request-serving port.
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// ManagementPort optionally serves health/diagnostic/metric endpoints
	// on a separate listener. Zero disables the separate listener and
	// those endpoints are served on Port instead.
	ManagementPort int `koanf:"management-port" validate:"min=0,max=65535,necsfield=Port"`

	CertFile string `koanf:"cert-file"`
	KeyFile  string `koanf:"key-file"`

	// ClientAuthTrustStore optionally enables mutual TLS; empty disables it.
	ClientAuthTrustStore string `koanf:"client-auth-trust-store"`

	// ContextPath is an optional path prefix applied to every route.
	ContextPath string `koanf:"context-path"`

	ConsoleLog bool `koanf:"console-log"`

	NumThreads            int           `koanf:"num-threads" validate:"min=0"`
	ConnectionLimit       int           `koanf:"connection-limit" validate:"min=0"`
	NumIOThreads          int           `koanf:"num-io-threads" validate:"min=0"`
	IdleTimeout           time.Duration `koanf:"idle-timeout" validate:"min=0"`
	IdleConnectionTimeout time.Duration `koanf:"idle-connection-timeout" validate:"min=0"`
	ShutdownGracePeriod   time.Duration `koanf:"shutdown-grace-period" validate:"min=0"`

	GzipEnabled  bool `koanf:"gzip-enabled"`
	HTTP2Enabled bool `koanf:"http2-enabled"`
}

// Runtime holds configuration that may be hot-reloaded while the process
// is running. Values published through Refreshable subscribers.
type Runtime struct {
	Logging           LoggingConfig `koanf:"logging"`
	HealthCheckSecret string        `koanf:"health-check-shared-secret"`
	DiagnosticsSecret string        `koanf:"diagnostics-shared-secret"`
	Services          []ServiceEntry `koanf:"services"`
}

// LoggingConfig controls runtime-adjustable log verbosity.
type LoggingConfig struct {
	Level string `koanf:"level"`

	// LevelOverrides maps a logger/component name to a level override,
	// taking precedence over Level for that component.
	LevelOverrides map[string]string `koanf:"level-overrides"`

	// TraceSampleRate is in [0,1]; 0 disables tracing, 1 samples every
	// request.
	TraceSampleRate float64 `koanf:"trace-sample-rate" validate:"min=0,max=1"`

	// TraceSampleBudgetPerSecond caps the absolute number of newly-sampled
	// trace roots admitted per second, on top of TraceSampleRate. 0
	// disables the cap.
	TraceSampleBudgetPerSecond float64 `koanf:"trace-sample-budget-per-second" validate:"min=0"`
}

// ServiceEntry describes one entry in the downstream service catalog used
// by the service_dependency health check.
type ServiceEntry struct {
	Name string   `koanf:"name"`
	URIs []string `koanf:"uris"`
}

// DefaultInstall returns the built-in install-config defaults, applied
// before the install.yml file and environment overrides are layered in.
func DefaultInstall() *Install {
	return &Install{
		Product: ProductConfig{
			Name:    "witchframe",
			Version: "0.0.0",
		},
		Server: ServerConfig{
			Port:                  8443,
			ManagementPort:        0,
			ContextPath:           "",
			ConsoleLog:            false,
			NumThreads:            200,
			ConnectionLimit:       0,
			NumIOThreads:          0,
			IdleTimeout:           5 * time.Minute,
			IdleConnectionTimeout: 5 * time.Minute,
			ShutdownGracePeriod:   5 * time.Second,
			GzipEnabled:           true,
			HTTP2Enabled:          true,
		},
	}
}

// DefaultRuntime returns the built-in runtime-config defaults, applied
// before the runtime.yml file and environment overrides are layered in.
func DefaultRuntime() *Runtime {
	return &Runtime{
		Logging: LoggingConfig{
			Level:           "info",
			LevelOverrides:  map[string]string{},
			TraceSampleRate: 0.0,
		},
	}
}
