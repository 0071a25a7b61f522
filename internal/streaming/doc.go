// Package streaming resolves which services currently carry a title.
//
// Two signals are combined. Native inference sets the single subscription
// flag a studio's catalog is locked to. Search-derived offers come from an
// injected Searcher: the best movie candidate is selected by title
// containment and a one-year window, then its offers are classified into
// subscription flags and rent/buy vendors. Native flags are applied last so
// search results can never clear them.
//
// Search failures never propagate. After retries are exhausted the
// resolution is reported as unresolved and carries native flags only.
package streaming
