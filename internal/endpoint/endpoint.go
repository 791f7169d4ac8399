// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package endpoint

import (
	"github.com/tomtom215/witchframe/internal/router"
)

// Handler is the business-logic contract: handlers return a structured
// error rather than writing an error response directly, so the
// pipeline's error-log layer and client-facing error mapping stay
// uniform across every endpoint. It is an alias of router.Handler so a
// Definition converts to a router.Endpoint without wrapping.
type Handler = router.Handler

// Definition fully describes one registered endpoint, matching the
// framework's data model: a service/operation identity, a method and
// path template, an optional deprecation reason, and the handler.
type Definition struct {
	ServiceName string
	Name        string
	Method      string
	Path        string
	Deprecated  string
	Handler     Handler
}

// BuildTable compiles a set of Definitions into a routing trie, ready
// for the pipeline's Routing layer. It panics on an ambiguous or
// duplicate registration, per router.Table.Register.
func BuildTable(defs []Definition) *router.Table {
	table := router.NewTable()
	for _, d := range defs {
		table.Register(router.Endpoint{
			ServiceName: d.ServiceName,
			Name:        d.Name,
			Method:      d.Method,
			PathPattern: d.Path,
			Deprecated:  d.Deprecated,
			Handler:     d.Handler,
		})
	}
	return table
}
