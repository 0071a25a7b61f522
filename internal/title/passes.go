package title

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"rewatch/internal/textutil"
)

var (
	withPattern    = regexp.MustCompile(`(?:^|\s)((?i:with))\s+\p{Lu}`)
	partPattern    = regexp.MustCompile(`(?i)\s*\(part\s+\w+\)\s*$`)
	yearPattern    = regexp.MustCompile(`\s*\(\d{4}\)\s*$`)
	rewatchPattern = regexp.MustCompile(`\s*['"]\s*The Re-.*$`)
)

// prefixPattern matches a leading show-name label, compared
// case-insensitively, along with any separator (colon, dash, pipe) that
// follows it. The prefix must end on a word boundary. It returns nil for an
// empty prefix.
func prefixPattern(prefix string) *regexp.Regexp {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil
	}
	return regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(prefix) + `(?:\s*[:|\x{2013}\x{2014}-]\s*|\s+|$)`)
}

// SplitOnWith splits s at the first "with" (any case) that is followed by
// capitalised text. When s opens with a quote, only text after the matching
// closing quote is searched, so quoted titles containing the word stay whole.
// found is false when no delimiter exists; title is then all of s.
func SplitOnWith(s string) (title, hosts string, found bool) {
	s = strings.TrimSpace(s)
	start := closingQuoteEnd(s)
	loc := withPattern.FindStringSubmatchIndex(s[start:])
	if loc == nil {
		return s, "", false
	}
	return strings.TrimSpace(s[:start+loc[2]]), strings.TrimSpace(s[start+loc[3]:]), true
}

// closingQuoteEnd returns the byte offset just past the quote that closes the
// one s opens with. A quote followed by a letter or digit is an apostrophe,
// not a close. It returns 0 when s does not open with a quote or the quote is
// never closed.
func closingQuoteEnd(s string) int {
	open, size := utf8.DecodeRuneInString(s)
	kind := quoteKind(open)
	if kind == 0 {
		return 0
	}
	for i := size; i < len(s); {
		r, width := utf8.DecodeRuneInString(s[i:])
		i += width
		if quoteKind(r) != kind {
			continue
		}
		next, _ := utf8.DecodeRuneInString(s[i:])
		if i < len(s) && (unicode.IsLetter(next) || unicode.IsDigit(next)) {
			continue
		}
		return i
	}
	return 0
}

// quoteKind folds curly quotes onto their straight form. It returns 0 for
// anything that is not a quote.
func quoteKind(r rune) rune {
	switch r {
	case '\'', '\u2018', '\u2019':
		return '\''
	case '"', '\u201c', '\u201d':
		return '"'
	default:
		return 0
	}
}

// NormalizeQuotes maps curly quotes to straight ones.
func NormalizeQuotes(s string) string {
	return textutil.NormalizeQuotes(s)
}

// StripQuotes trims surrounding straight quotes and whitespace.
func StripQuotes(s string) string {
	return textutil.TrimQuotes(s)
}

// StripMarkers removes trailing "(Part X)" and "(YYYY)" parentheticals and a
// trailing "The Re-..." rewatch marker, repeating until none remain.
func StripMarkers(s string) string {
	for {
		next := rewatchPattern.ReplaceAllString(s, "")
		next = partPattern.ReplaceAllString(next, "")
		next = yearPattern.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == s {
			return next
		}
		s = next
	}
}

// SplitHosts splits a host list on ", and ", then ", ", then " and ", trimming
// each name and discarding empty ones.
func SplitHosts(segment string) []string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return nil
	}
	var hosts []string
	for _, major := range strings.Split(segment, ", and ") {
		for _, minor := range strings.Split(major, ", ") {
			for _, name := range strings.Split(minor, " and ") {
				name = strings.TrimSpace(name)
				if name != "" {
					hosts = append(hosts, name)
				}
			}
		}
	}
	return hosts
}
