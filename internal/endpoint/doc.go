// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package endpoint defines the business-handler contract the pipeline's
terminal layer dispatches to, and the per-endpoint bookkeeping (a
rolling 5xx ratio) that feeds the endpoint-health pipeline layer and the
SERVICE_DEPENDENCY-style health check.
*/
package endpoint
