// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package crashdump

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tomtom215/witchframe/internal/envelope"
)

// danglingSuffix marks a dump whose capture started but was never
// confirmed finished, either because the parent crashed before renaming
// it or the sibling died mid-write.
const danglingSuffix = ".dmp.new"

// ReconcileDumps walks dumpDir at startup for dumps left with the
// danglingSuffix by a previous run, renames each to its final .dmp name,
// and reports it as a FATAL service log carrying the dump path as a safe
// param. A process only leaves one of these behind if it died between
// asking the sibling to persist a dump and recording that the dump
// completed, so finding one here means the previous run crashed.
func ReconcileDumps(dumpDir string, appender envelope.Appender) error {
	entries, err := os.ReadDir(dumpDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("crashdump: reading dump dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".new" {
			continue
		}
		name := entry.Name()
		if len(name) < len(danglingSuffix) || name[len(name)-len(danglingSuffix):] != danglingSuffix {
			continue
		}

		stale := filepath.Join(dumpDir, name)
		final := stale[:len(stale)-len(".new")]
		if err := os.Rename(stale, final); err != nil {
			return fmt.Errorf("crashdump: reconciling %s: %w", name, err)
		}

		if appender != nil {
			appender.Append(envelope.Envelope{
				Type: envelope.TypeService,
				Time: time.Now().UTC(),
				Service: &envelope.ServiceLog{
					Level:   "FATAL",
					Message: "process terminated before a crash dump capture was confirmed complete; dump recovered from previous run",
					Params: map[string]any{
						"dumpPath": final,
					},
				},
			})
		}
	}
	return nil
}
