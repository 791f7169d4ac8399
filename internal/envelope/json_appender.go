// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package envelope

import (
	"io"
	"sync"

	"github.com/goccy/go-json"
)

// JSONAppender serializes envelopes as newline-delimited JSON and writes
// them to an io.Writer. Writes are serialized with a mutex since the
// underlying writer (a file, a socket) is not assumed to be safe for
// concurrent use, and AsyncAppender only gives single-writer goroutine
// access but other call sites may wrap JSONAppender directly in tests.
type JSONAppender struct {
	mu sync.Mutex
	w  io.Writer
	c  io.Closer
}

// NewJSONAppender wraps w. If w also implements io.Closer, Close closes
// it; otherwise Close is a no-op.
func NewJSONAppender(w io.Writer) *JSONAppender {
	c, _ := w.(io.Closer)
	return &JSONAppender{w: w, c: c}
}

func (a *JSONAppender) Append(e Envelope) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	data = append(data, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = a.w.Write(data)
}

func (a *JSONAppender) Close() error {
	if a.c != nil {
		return a.c.Close()
	}
	return nil
}
