// Package feed retrieves the podcast RSS feed and turns its items into
// parsed episodes ready for reconciliation.
//
// Client handles transport; Parse decodes the RSS document; Builder applies
// the title normalizer, skip patterns, host extraction, and date parsing.
// Transport failures are fatal to a run, while malformed dates fall back to
// the current day with a warning.
package feed
