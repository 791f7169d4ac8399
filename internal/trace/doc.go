// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

/*
Package trace implements B3-single-header and W3C traceparent
propagation for the request pipeline's trace layer: parsing an inbound
header into an active span context, or minting a new sampled-or-not
trace root when none is present.
*/
package trace
