// Package title turns raw feed-item titles into a canonical movie title and
// an ordered host list.
//
// The canonical feed format is `"<Movie Title>" With <Host1>, <Host2>, and
// <HostN>`, optionally prefixed with the show name and optionally carrying a
// trailing parenthetical or rewatch marker. Parsing runs a fixed sequence of
// named passes; each pass is exported so it can be tested and traced alone.
package title
