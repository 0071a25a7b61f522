// Package main hosts the rewatch CLI entrypoint and command graph.
//
// The Cobra-based command tree wires configuration, logging and the internal
// components into user-facing commands: feed sync, streaming refresh and
// lookup, Apple Podcasts links, staleness audits, run history, and
// configuration scaffolding.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
