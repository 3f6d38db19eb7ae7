// Package refdata is the client for the refdata gateway that fronts the
// vendor market-data service (//blp/refdata). The gateway owns the
// vendor wire protocol; this package speaks plain request/response JSON
// to it and exposes the two calls the tools need: historical end-of-day
// pulls and reference-data pulls (scalar and bulk fields with overrides).
//
// Calls are synchronous and blocking. A token-bucket limiter paces
// consecutive requests so per-row enrichment loops stay under the
// vendor's reference-data throttle.
package refdata
