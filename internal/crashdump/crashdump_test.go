// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package crashdump

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/witchframe/internal/envelope"
)

func TestCaptureRoundTrip(t *testing.T) {
	dir := t.TempDir()
	socketPath := filepath.Join(dir, "minidump.sock")

	srv := &Server{Logger: zerolog.Nop()}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, socketPath) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("sibling socket never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}

	dest := filepath.Join(dir, "test.dmp")
	content := []byte("goroutine 1 [running]:\nmain.main()\n")
	if err := Capture(socketPath, dest, content); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("dump content = %q, want %q", got, content)
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestCaptureReportsSiblingFailure(t *testing.T) {
	dir := t.TempDir()
	socketPath := filepath.Join(dir, "minidump.sock")

	srv := &Server{Logger: zerolog.Nop()}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx, socketPath)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("sibling socket never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// A destination under a directory that doesn't exist fails os.Create
	// on the sibling side, which must be reported back as an error.
	dest := filepath.Join(dir, "no-such-subdir", "test.dmp")
	if err := Capture(socketPath, dest, []byte("x")); err == nil {
		t.Fatal("expected Capture to report the sibling's write failure")
	}
}

func TestReconcileDumpsRenamesAndLogsFatal(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "20260101-000000.dmp.new")
	if err := os.WriteFile(stale, []byte("stack"), 0o644); err != nil {
		t.Fatalf("seeding stale dump: %v", err)
	}

	var captured []envelope.Envelope
	appender := envelope.AppenderFunc(func(e envelope.Envelope) {
		captured = append(captured, e)
	})

	if err := ReconcileDumps(dir, appender); err != nil {
		t.Fatalf("ReconcileDumps: %v", err)
	}

	final := filepath.Join(dir, "20260101-000000.dmp")
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("expected reconciled dump at %s: %v", final, err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale .dmp.new to be gone, stat err = %v", err)
	}

	if len(captured) != 1 {
		t.Fatalf("expected exactly one envelope, got %d", len(captured))
	}
	svc := captured[0].Service
	if svc == nil || svc.Level != "FATAL" {
		t.Fatalf("expected a FATAL service log, got %+v", captured[0])
	}
	if svc.Params["dumpPath"] != final {
		t.Fatalf("expected dumpPath param %q, got %v", final, svc.Params["dumpPath"])
	}
}

func TestReconcileDumpsNoDirIsNotError(t *testing.T) {
	if err := ReconcileDumps(filepath.Join(t.TempDir(), "missing"), nil); err != nil {
		t.Fatalf("expected nil error for missing dump dir, got %v", err)
	}
}

func TestReconcileDumpsIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "20260101-000000.dmp"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	var called bool
	appender := envelope.AppenderFunc(func(envelope.Envelope) { called = true })

	if err := ReconcileDumps(dir, appender); err != nil {
		t.Fatalf("ReconcileDumps: %v", err)
	}
	if called {
		t.Fatal("expected no envelope for a run with no dangling dumps")
	}
}
