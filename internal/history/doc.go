// Package history keeps a SQLite log of reconciliation runs and the
// per-entry streaming checks they performed.
//
// The log is advisory: the catalog file stays the source of truth. Runs are
// keyed by UUID and record their summary counts when they finish; checks
// record the outcome and resulting flags for each resolved entry so
// operators can see when and how an entry last changed.
package history
