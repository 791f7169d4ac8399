// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

//go:build unix

package crashdump

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tomtom215/witchframe/internal/diagnostics"
)

// installSigquitHandler registers a SIGQUIT handler that captures this
// process's own goroutine dump and hands it to the sibling to persist,
// then re-raises the signal so the process still terminates the way it
// would have without this package installed.
func installSigquitHandler(socketPath, dumpDir string) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGQUIT)

	dump := &diagnostics.GoroutineDumpDiagnostic{}

	go func() {
		for range sigCh {
			content, _ := dump.Capture()
			text, _ := content.(string)

			dest := filepath.Join(dumpDir, time.Now().UTC().Format("20060102-150405")+".dmp.new")
			_ = Capture(socketPath, dest, []byte(text))
			_ = os.Rename(dest, dest[:len(dest)-len(".new")])

			signal.Reset(syscall.SIGQUIT)
			_ = syscall.Kill(os.Getpid(), syscall.SIGQUIT)
		}
	}()
}
