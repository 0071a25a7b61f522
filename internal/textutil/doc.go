// Package textutil provides the string helpers shared by title parsing,
// deduplication, and search matching.
//
// Quote normalisation maps the curly quote variants that appear in feed titles
// to their straight equivalents so that comparisons treat them identically.
// Slug builds catalog ids, folding diacritics before collapsing punctuation.
package textutil
