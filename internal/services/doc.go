// Package services defines shared utilities consumed by the reconciliation
// driver and the external integrations (feed, search, TMDB, ntfy).
//
// Key responsibilities:
//   - Context helpers that stamp run ids, entry ids, and stage names for
//     logging.
//   - Structured error markers plus the Wrap helper so callers can decide
//     whether a failure is fatal, retryable, or downgraded to "no data".
//   - A bounded retry helper with linear backoff for network lookups.
package services
