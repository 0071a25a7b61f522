// Package justwatch implements the streaming catalog search against the
// JustWatch GraphQL API. It maps popularTitles edges to resolver candidates.
package justwatch
