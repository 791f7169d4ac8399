// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package envelope

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// DefaultRetention is how long rotated log files are kept before
// cleanup removes them.
const DefaultRetention = 31 * 24 * time.Hour

// CleanupInterval is how often the cleanup routine scans for expired
// rotated files.
const CleanupInterval = time.Hour

// Cleanup is a suture.Service that periodically removes rotated log
// files older than Retention from Dir. It only ever considers files
// matching Pattern (a filepath.Match glob), so it never touches the
// live, currently-being-written file.
type Cleanup struct {
	Dir       string
	Pattern   string
	Retention time.Duration
	Logger    zerolog.Logger
}

// NewCleanup creates a Cleanup service with DefaultRetention.
func NewCleanup(dir, pattern string, logger zerolog.Logger) *Cleanup {
	return &Cleanup{
		Dir:       dir,
		Pattern:   pattern,
		Retention: DefaultRetention,
		Logger:    logger.With().Str("component", "envelope-cleanup").Logger(),
	}
}

// Serve implements suture.Service.
func (c *Cleanup) Serve(ctx context.Context) error {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	c.sweep()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cleanup) sweep() {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if !os.IsNotExist(err) {
			c.Logger.Error().Err(err).Str("dir", c.Dir).Msg("cleanup: list directory failed")
		}
		return
	}

	cutoff := time.Now().Add(-c.Retention)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matched, err := filepath.Match(c.Pattern, entry.Name())
		if err != nil || !matched {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(c.Dir, entry.Name())
		if err := os.Remove(path); err != nil {
			c.Logger.Warn().Err(err).Str("path", path).Msg("cleanup: failed to remove expired log file")
			continue
		}
		c.Logger.Info().Str("path", path).Msg("cleanup: removed expired log file")
	}
}
