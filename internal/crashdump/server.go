// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package crashdump

import (
	"context"
	"encoding/json"
	"net"
	"os"

	"github.com/rs/zerolog"
)

// Server is the sibling process's side of the protocol: it accepts
// connections on a Unix domain socket and, for each capture request,
// persists the content the parent already captured to the requested
// path and fsyncs it. Running in a separate process means a fault that
// kills the parent (OOM kill, a fatal runtime throw) cannot also take
// the dump with it.
type Server struct {
	Logger zerolog.Logger
}

// Serve implements suture.Service: it listens on socketPath until ctx
// is done.
func (s *Server) Serve(ctx context.Context, socketPath string) error {
	_ = os.Remove(socketPath)
	l, err := net.Listen("unix", socketPath)
	if err != nil {
		return err
	}
	defer l.Close()

	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	var req request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		s.Logger.Warn().Err(err).Msg("crashdump: malformed capture request")
		return
	}

	err := s.writeDump(req.Path, req.Content)
	resp := response{OK: err == nil}
	if err != nil {
		resp.Error = err.Error()
		s.Logger.Error().Err(err).Str("path", req.Path).Msg("crashdump: capture failed")
	}
	_ = json.NewEncoder(conn).Encode(resp)
}

func (s *Server) writeDump(path string, content []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(content); err != nil {
		return err
	}
	return f.Sync()
}
