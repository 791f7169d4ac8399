// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

//go:build !unix

package crashdump

// installSigquitHandler is a no-op outside Unix: the crash-dump
// subsystem is documented as Linux-only (per the framework's §4.15).
func installSigquitHandler(socketPath, dumpDir string) {}
