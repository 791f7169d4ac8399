// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package apierror defines the framework's error taxonomy: the categories
of failure a handler may return, their mapping to HTTP status, and the
structured object attached to the response for the error-log layer to
report.
*/
package apierror
