// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package router implements the framework's endpoint table and the
method/path trie used to resolve incoming requests to registered
endpoints. Resolution distinguishes a matched route from a path that
exists under a different method (405) from a path that does not exist
at all (404), and gives OPTIONS its own two-case semantics.
*/
package router
