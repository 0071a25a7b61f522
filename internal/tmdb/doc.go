// Package tmdb wraps the subset of The Movie Database API used to fill in
// new catalog entries: movie search plus movie details with credits.
//
// Lookup picks the first search result, fetches its details, and reduces
// them to Metadata: release year, director, genres, and production
// companies. The companies feed the studio classifier.
package tmdb
