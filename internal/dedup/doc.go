// Package dedup decides whether a parsed feed item already exists in the
// catalog.
//
// Membership sets of episode dates, normalised titles, and ids are built once
// per run. An item is known when its date OR its title matches; the id check
// is optional. OR-matching deliberately accepts an occasional false positive
// (a new episode sharing a date or title with an old one) to avoid duplicate
// catalog rows.
package dedup
