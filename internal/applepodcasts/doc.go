// Package applepodcasts finds direct Apple Podcasts episode links through the
// iTunes search API.
//
// Client performs one search request. Finder adds the show name to the search
// term, retries transient failures with linear backoff, picks the result whose
// track name contains the movie title and whose collection is the show, and
// rewrites the link to the configured storefront.
package applepodcasts
