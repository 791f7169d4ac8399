// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package envelope

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RollingFileConfig controls size-or-day log rotation.
type RollingFileConfig struct {
	// Path is the primary log file path; rotated files are written
	// alongside it following lumberjack's naming convention.
	Path string

	// MaxSizeMB rotates the file once it exceeds this size.
	MaxSizeMB int

	// MaxBackups bounds how many rotated files are kept; 0 means
	// unlimited (cleanup.go handles time-based retention instead).
	MaxBackups int

	// Compress gzips rotated files.
	Compress bool
}

// neverAutoRotateMB is set on the embedded lumberjack.Logger's MaxSize
// so lumberjack's own Write never decides to rotate on its own: every
// rotation (day-boundary or size-threshold) must go through this type's
// rotate, which fsyncs the outgoing file first. lumberjack's size check
// runs inside its Write before ours ever gets a chance to intervene, so
// the only way to make fsync-on-rotation reliable is to never let that
// internal check fire.
const neverAutoRotateMB = 1 << 30

// RollingFile wraps lumberjack.Logger with two rotation triggers of its
// own, both funneled through rotate so every rotation fsyncs the file
// being archived first: the file rotates at the first write after the
// calendar day changes, and once its size would exceed MaxSizeMB.
// lumberjack's own size-triggered auto-rotation is disabled (see
// neverAutoRotateMB) because it bypasses rotate's fsync entirely.
type RollingFile struct {
	mu           sync.Mutex
	lj           *lumberjack.Logger
	lastDay      string
	maxSizeBytes int64
}

// NewRollingFile creates a RollingFile appender. The directory containing
// cfg.Path is created if missing.
func NewRollingFile(cfg RollingFileConfig) (*RollingFile, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("envelope: create log directory: %w", err)
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    neverAutoRotateMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}

	maxSizeMB := cfg.MaxSizeMB
	if maxSizeMB <= 0 {
		maxSizeMB = 100 // lumberjack's own default, preserved for callers that leave MaxSizeMB unset.
	}
	return &RollingFile{lj: lj, lastDay: currentDay(), maxSizeBytes: int64(maxSizeMB) * 1024 * 1024}, nil
}

func currentDay() string {
	return time.Now().Format("2006-01-02")
}

// Write implements io.Writer so RollingFile can back a JSONAppender.
//
// lumberjack does not expose the *os.File it currently has open, so this
// cannot fsync after every write without reopening the path on every
// call. Durability is instead provided at a coarser grain: every
// rotation fsyncs the file being rotated away (see rotate below) before
// lumberjack starts writing the fresh one, and the day-boundary and
// size-based rotation bound how much a crash between rotations can lose
// to a single partial file.
func (r *RollingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if day := currentDay(); day != r.lastDay {
		r.lastDay = day
		if err := r.rotate("day-boundary"); err != nil {
			return 0, err
		}
	} else if info, err := os.Stat(r.lj.Filename); err == nil && info.Size()+int64(len(p)) > r.maxSizeBytes {
		if err := r.rotate("size-threshold"); err != nil {
			return 0, err
		}
	}

	return r.lj.Write(p)
}

// rotate fsyncs the current log file before handing rotation to
// lumberjack's Rotate, so the archived file lumberjack renames it to is
// durably on disk at the moment rotation completes rather than only at
// the next process-wide Close. lumberjack's Logger doesn't expose the
// *os.File it holds, so the file is reopened by path; the returned
// handle still refers to the pre-rotation inode even after Rotate
// renames the path out from under it, since a rename doesn't invalidate
// an already-open file descriptor.
func (r *RollingFile) rotate(reason string) error {
	f, err := os.Open(r.lj.Filename)
	switch {
	case err == nil:
		syncErr := f.Sync()
		closeErr := f.Close()
		if syncErr != nil {
			return fmt.Errorf("envelope: fsync before %s rotation: %w", reason, syncErr)
		}
		if closeErr != nil {
			return fmt.Errorf("envelope: close after fsync before %s rotation: %w", reason, closeErr)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("envelope: open current log file before %s rotation: %w", reason, err)
	}

	if err := r.lj.Rotate(); err != nil {
		return fmt.Errorf("envelope: %s rotation: %w", reason, err)
	}
	return nil
}

func (r *RollingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lj.Close()
}
