// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package envelope

import "os"

// NewStdoutAppender returns a JSONAppender writing to stdout, used when
// Install.Server.ConsoleLog is set. Close is a no-op: the process owns
// stdout's lifecycle, not this appender.
func NewStdoutAppender() *JSONAppender {
	return &JSONAppender{w: os.Stdout}
}
