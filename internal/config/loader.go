// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// validate runs the struct-tag-driven checks declared on Install/Runtime
// and their nested configs (server.port range, management-port distinct
// from port, sample-rate bounds, and so on). A single shared instance is
// safe for concurrent use, per the validator package's own docs.
var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultInstallPath and DefaultRuntimePath are the conventional on-disk
// locations for the two config files.
const (
	DefaultInstallPath = "var/conf/install.yml"
	DefaultRuntimePath = "var/conf/runtime.yml"

	// DefaultKeyPath is the optional symmetric key used to transparently
	// decrypt `enc:`-wrapped scalar values embedded in either file.
	DefaultKeyPath = "var/conf/encrypted-config-value.key"
)

// EnvPrefix is prepended (with an underscore) to every environment
// variable consulted when layering overrides onto either config file,
// e.g. WITCHFRAME_SERVER_PORT.
const EnvPrefix = "WITCHFRAME_"

// LoadInstall reads install.yml (defaults -> file -> env) and returns the
// decoded, validated Install config. Install config is read exactly once
// at startup; there is no reloader for it.
func LoadInstall(path string, decrypter *Decrypter) (*Install, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultInstall(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load install defaults: %w", err)
	}

	if err := loadYAMLFile(k, path, decrypter); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: load install env overrides: %w", err)
	}

	cfg := &Install{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal install config: %w", err)
	}
	if err := validateInstall(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid install config: %w", err)
	}
	return cfg, nil
}

// LoadRuntime reads runtime.yml (defaults -> file -> env) and returns the
// decoded, validated Runtime config. Used both for the initial load and
// by the reloader on every poll tick.
func LoadRuntime(path string, decrypter *Decrypter) (*Runtime, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultRuntime(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load runtime defaults: %w", err)
	}

	if err := loadYAMLFile(k, path, decrypter); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: load runtime env overrides: %w", err)
	}

	cfg := &Runtime{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal runtime config: %w", err)
	}
	if err := validateRuntime(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid runtime config: %w", err)
	}
	return cfg, nil
}

// loadYAMLFile reads path, optionally decrypts it with decrypter, and
// layers it onto k as YAML. A missing file is not an error: both config
// files are optional overlays on top of the built-in defaults.
func loadYAMLFile(k *koanf.Koanf, path string, decrypter *Decrypter) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	if decrypter != nil {
		raw, err = decrypter.DecryptDocument(raw)
		if err != nil {
			return fmt.Errorf("config: decrypt %s: %w", path, err)
		}
	}

	if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// envTransform maps WITCHFRAME_SERVER_PORT -> server.port. Unknown
// prefixes without a clear dotted mapping are lowercased and underscore
// segments become dots, matching the koanf struct tags above.
func envTransform(key string) string {
	return koanfPathFromEnv(key, EnvPrefix)
}

// koanfPathFromEnv lowercases an environment variable name, strips the
// prefix, and replaces underscores with dots, e.g.
// WITCHFRAME_SERVER_IDLE_TIMEOUT -> server.idle.timeout. Config structs
// use hyphenated multi-word keys (idle-timeout), which this mapping never
// produces, so a multi-word key is not overridden by the environment and
// can only be set through the YAML file.
func koanfPathFromEnv(key, prefix string) string {
	trimmed := key
	if len(key) > len(prefix) {
		trimmed = key[len(prefix):]
	}
	out := make([]byte, 0, len(trimmed))
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		switch {
		case c == '_':
			out = append(out, '.')
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// validateInstall runs the struct-tag validation declared on Install, plus
// the cert/key pairing rule a validator tag can't express cleanly (either
// both are set or both are empty).
func validateInstall(cfg *Install) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	if (cfg.Server.CertFile == "") != (cfg.Server.KeyFile == "") {
		return fmt.Errorf("server.cert-file and server.key-file must both be set or both be empty")
	}
	return nil
}

func validateRuntime(cfg *Runtime) error {
	return validate.Struct(cfg)
}
