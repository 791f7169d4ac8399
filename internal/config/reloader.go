// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package config

import (
	"bytes"
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/witchframe/internal/logging"
)

// ReloadPollInterval is the fixed interval at which the reloader re-reads
// the runtime config file looking for changes.
const ReloadPollInterval = 3 * time.Second

// ReloadStatus reports the outcome of the most recent reload attempt, for
// consumption by the CONFIG_RELOAD health check.
type ReloadStatus struct {
	Healthy bool
	Err     error
	At      time.Time
}

// Reloader is a suture.Service that polls a runtime config file for
// changes and publishes successfully parsed updates to a Refreshable.
//
// On each tick it re-reads the file; if the bytes are unchanged since the
// last tick, nothing happens. If the bytes changed, it re-parses and
// attempts to Publish the new value. A successful publish (including
// validator acceptance) marks the reload healthy; any read, parse, or
// validation failure marks it unhealthy and is logged, but the reloader
// keeps running and retries on the next tick.
type Reloader struct {
	path       string
	decrypter  *Decrypter
	refreshable *Refreshable[*Runtime]
	logger     zerolog.Logger

	lastBytes []byte

	mu     sync.Mutex
	status ReloadStatus
}

// NewReloader creates a runtime-config reloader that publishes updates to
// refreshable. The caller is responsible for running it, typically via a
// supervisor.SupervisorTree.AddConfigService call.
func NewReloader(path string, decrypter *Decrypter, refreshable *Refreshable[*Runtime], logger zerolog.Logger) *Reloader {
	return &Reloader{
		path:        path,
		decrypter:   decrypter,
		refreshable: refreshable,
		logger:      logger.With().Str("component", "config-reloader").Logger(),
		status:      ReloadStatus{Healthy: true, At: time.Now()},
	}
}

// Status returns the outcome of the most recent reload attempt. Safe to
// call concurrently with Serve.
func (r *Reloader) Status() ReloadStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Serve implements suture.Service. It polls until ctx is canceled.
func (r *Reloader) Serve(ctx context.Context) error {
	ticker := time.NewTicker(ReloadPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick re-reads the runtime config file and, on a byte-level change,
// reloads and publishes it. A changed tick is tagged with a fresh
// correlation ID so the read/parse/publish/log sequence for that one
// reload attempt can be grepped together out of the shared log, the way
// an HTTP request's layers share a request ID.
func (r *Reloader) tick(ctx context.Context) {
	ctx = logging.ContextWithLogger(ctx, r.logger)

	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		r.fail(ctx, err)
		return
	}

	if bytes.Equal(raw, r.lastBytes) {
		return
	}
	ctx = logging.ContextWithNewCorrelationID(ctx)

	cfg, err := LoadRuntime(r.path, r.decrypter)
	if err != nil {
		r.fail(ctx, err)
		return
	}

	if err := r.refreshable.Publish(cfg); err != nil {
		r.fail(ctx, err)
		return
	}

	r.lastBytes = raw
	r.mu.Lock()
	r.status = ReloadStatus{Healthy: true, At: time.Now()}
	r.mu.Unlock()
	logging.CtxInfo(ctx).Msg("runtime config reloaded")
}

func (r *Reloader) fail(ctx context.Context, err error) {
	r.mu.Lock()
	r.status = ReloadStatus{Healthy: false, Err: err, At: time.Now()}
	r.mu.Unlock()
	logging.CtxErr(ctx, err).Msg("runtime config reload failed")
}
