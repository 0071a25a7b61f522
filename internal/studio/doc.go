// Package studio classifies free-text production and distribution strings
// into canonical studio codes and records which studios are locked to a
// single subscription service.
//
// Both lookups live in an immutable Tables value. Keyword rules are matched
// in list order and the first rule whose keyword occurs in the lowercased
// input wins, so more specific labels (pixar, searchlight) must precede the
// broader ones (disney, 20th century) they would otherwise lose to.
package studio
