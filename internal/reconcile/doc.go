// Package reconcile orchestrates catalog runs.
//
// Sync pulls the podcast feed, parses and de-duplicates its items against
// the catalog, and prepends entries for new episodes, optionally enriching
// them with metadata and streaming data. Refresh re-resolves streaming
// availability for existing entries. Both run network lookups through a
// BatchRunner: fixed-size batches, a bounded worker pool per batch, and a
// single aggregator goroutine that owns every mutation of the working
// catalog. Nothing is committed until the catalog store reports a
// successful save.
//
// Feed retrieval, catalog persistence, streaming resolution, metadata
// lookup, run history and notifications are injected so the driver can be
// exercised without network or disk.
package reconcile
