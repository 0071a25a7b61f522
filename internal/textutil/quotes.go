package textutil

import "strings"

var quoteReplacer = strings.NewReplacer(
	"\u2018", "'", // left single
	"\u2019", "'", // right single, apostrophe
	"\u201a", "'", // low single
	"\u2032", "'", // prime
	"\u201c", `"`, // left double
	"\u201d", `"`, // right double
	"\u201e", `"`, // low double
	"\u2033", `"`, // double prime
)

// NormalizeQuotes maps curly single and double quotes to their straight forms.
func NormalizeQuotes(s string) string {
	return quoteReplacer.Replace(s)
}

// TrimQuotes removes straight quote characters and surrounding whitespace
// from both ends of s. Curly quotes should be normalised first.
func TrimQuotes(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"'`))
}

// CollapseSpace trims s and replaces every run of whitespace with one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeForMatch produces the comparison key used for title matching:
// lowercase, straight quotes, single spaces.
func NormalizeForMatch(s string) string {
	return strings.ToLower(CollapseSpace(NormalizeQuotes(s)))
}
