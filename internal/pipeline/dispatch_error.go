// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package pipeline

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tomtom215/witchframe/internal/apierror"
)

// writeAPIError serializes a handler's structured error as the response
// body, honoring the Throttle category's Retry-After header.
func writeAPIError(w http.ResponseWriter, apiErr *apierror.Error) {
	if apiErr.Category == apierror.CategoryThrottle && apiErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(apiErr.RetryAfter))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apiErr.Status)
	if apiErr.Category == apierror.CategoryInternal {
		// Internal errors never leak their cause to the client: an empty
		// body, matching the framework's panic-to-500 contract.
		return
	}
	_ = json.NewEncoder(w).Encode(apiErr)
}
