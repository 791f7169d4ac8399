// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package router

import (
	"fmt"
	"sort"
)

// ResultKind discriminates the outcome of a Table.Resolve call.
type ResultKind int

const (
	Unresolved ResultKind = iota
	Resolved
	MethodNotAllowed
	StarOptions
	Options
)

// Result is the outcome of resolving a method+path against the table.
type Result struct {
	Kind     ResultKind
	Endpoint *Endpoint
	Params   map[string]string

	// Allowed is populated for MethodNotAllowed and Options, listing every
	// method registered at the matched path, in ascending order.
	Allowed []string
}

// node is one trie level keyed on a literal path segment, with at most
// one outgoing parameter edge (path templates may not register
// ambiguous overlapping parameter segments at the same node).
type node struct {
	literal    map[string]*node
	param      *node
	paramName  string
	endpoints  map[string]*Endpoint // method -> endpoint, only set on terminal nodes
}

func newNode() *node {
	return &node{literal: make(map[string]*node)}
}

// Table is the compiled endpoint trie, built once at startup and read
// concurrently thereafter; Register is not safe to call once the server
// begins accepting connections.
type Table struct {
	root *node
}

// NewTable returns an empty routing table.
func NewTable() *Table {
	return &Table{root: newNode()}
}

// Register adds an endpoint to the table. It panics on an ambiguous
// path-template overlap (ambiguity is a programmer/configuration error
// caught at registration, per the framework's registration-time
// validation invariant) or a duplicate method+path registration.
func (t *Table) Register(ep Endpoint) {
	segs := compilePath(ep.PathPattern)
	cur := t.root
	for _, s := range segs {
		if s.isParam {
			if cur.param == nil {
				cur.param = newNode()
				cur.paramName = s.param
			} else if cur.paramName != s.param {
				panic(fmt.Sprintf("router: ambiguous parameter name at %q: %q vs %q", ep.PathPattern, cur.paramName, s.param))
			}
			cur = cur.param
		} else {
			next, ok := cur.literal[s.literal]
			if !ok {
				next = newNode()
				cur.literal[s.literal] = next
			}
			cur = next
		}
	}
	if cur.endpoints == nil {
		cur.endpoints = make(map[string]*Endpoint)
	}
	epCopy := ep
	if _, dup := cur.endpoints[ep.Method]; dup {
		panic(fmt.Sprintf("router: duplicate registration for %s %s", ep.Method, ep.PathPattern))
	}
	cur.endpoints[ep.Method] = &epCopy
}

// Resolve walks the trie for the given method and path.
func (t *Table) Resolve(method, path string) Result {
	if method == "OPTIONS" && path == "*" {
		return Result{Kind: StarOptions}
	}

	segs := splitPath(path)
	params := make(map[string]string)
	cur := t.root
	for _, s := range segs {
		if next, ok := cur.literal[s]; ok {
			cur = next
			continue
		}
		if cur.param != nil {
			params[cur.paramName] = s
			cur = cur.param
			continue
		}
		return Result{Kind: Unresolved}
	}

	if cur.endpoints == nil {
		return Result{Kind: Unresolved}
	}

	allowed := allowedMethods(cur.endpoints)

	if method == "OPTIONS" {
		return Result{Kind: Options, Allowed: allowed}
	}

	ep, ok := cur.endpoints[method]
	if !ok {
		return Result{Kind: MethodNotAllowed, Allowed: allowed}
	}
	return Result{Kind: Resolved, Endpoint: ep, Params: params}
}

func allowedMethods(m map[string]*Endpoint) []string {
	out := make([]string, 0, len(m))
	for method := range m {
		out = append(out, method)
	}
	sort.Strings(out)
	return out
}
