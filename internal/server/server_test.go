// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// freePort asks the OS for an ephemeral port and immediately releases it,
// so the subsequently-started Server can bind it without a fixed-port
// collision between parallel test runs.
func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("freePort: %v", err)
	}
	defer lis.Close()
	return lis.Addr().(*net.TCPAddr).Port
}

func newTestOptions(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()

	installPath := filepath.Join(dir, "install.yml")
	install := fmt.Sprintf("server:\n  port: %d\n  management-port: %d\n  console-log: false\nproduct:\n  name: witchframe-test\n  version: test\n",
		freePort(t), freePort(t))
	if err := os.WriteFile(installPath, []byte(install), 0o644); err != nil {
		t.Fatalf("write install.yml: %v", err)
	}

	runtimePath := filepath.Join(dir, "runtime.yml")
	if err := os.WriteFile(runtimePath, []byte("logging:\n  level: error\n"), 0o644); err != nil {
		t.Fatalf("write runtime.yml: %v", err)
	}

	return Options{
		InstallPath: installPath,
		RuntimePath: runtimePath,
		LogDir:      filepath.Join(dir, "log"),
		DumpDir:     filepath.Join(dir, "dump"),
		SocketPath:  filepath.Join(dir, "minidump.sock"),
	}
}

func TestNewBuildsServerWithoutOpeningAcceptLoop(t *testing.T) {
	srv, err := New(newTestOptions(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if srv.mainLis == nil {
		t.Fatal("expected the main listener to be bound by New")
	}
	if srv.mgmtLis == nil {
		t.Fatal("expected the management listener to be bound when management-port is set")
	}
	_ = srv.mainLis.Close()
	_ = srv.mgmtLis.Close()
}

func TestRunServesManagementLivenessAndShutsDownOnCancel(t *testing.T) {
	opts := newTestOptions(t)
	srv, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mgmtAddr := srv.mgmtLis.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	runErrCh := make(chan error, 1)
	go func() { runErrCh <- srv.Run(ctx) }()

	var resp *http.Response
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err = http.Get("http://" + mgmtAddr + "/status/liveness")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("GET /status/liveness: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("liveness status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-runErrCh:
		if err != nil {
			t.Fatalf("Run returned error after cancel: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return within the shutdown deadline")
	}
}

func TestFormatForSelectsConsoleOrJSON(t *testing.T) {
	if got := formatFor(true); got != "console" {
		t.Fatalf("formatFor(true) = %q, want console", got)
	}
	if got := formatFor(false); got != "json" {
		t.Fatalf("formatFor(false) = %q, want json", got)
	}
}

func TestErrStringHandlesNil(t *testing.T) {
	if got := errString(nil); got != "" {
		t.Fatalf("errString(nil) = %q, want empty", got)
	}
	if got := errString(fmt.Errorf("boom")); got != "boom" {
		t.Fatalf("errString = %q, want boom", got)
	}
}
