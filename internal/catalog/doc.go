// Package catalog models the episode catalog and persists it as a JSON
// document of the form {"episodes": [...]}.
//
// Entries are ordered newest first. The Store serialises every field of every
// entry (empty strings, zeros, and empty lists rather than omissions), writes
// atomically, and guards read-modify-write cycles with an advisory file lock
// so concurrent sync and refresh runs cannot interleave.
package catalog
