package streaming

import (
	"strings"

	"rewatch/internal/textutil"
)

// yearWindow is the accepted distance between the query year and a
// candidate's release year.
const yearWindow = 1

// SelectBest picks the candidate for title and year. A year of zero means
// unknown.
//
// The first movie whose normalised title contains, or is contained in, the
// query title and whose year is within the window wins. Failing that, the
// first movie within the window wins. Without a year only containment can
// match.
func SelectBest(title string, year int, candidates []Candidate) (Candidate, bool) {
	query := textutil.NormalizeForMatch(title)
	for _, c := range candidates {
		if !isMovie(c) || !titlesOverlap(query, textutil.NormalizeForMatch(c.Title)) {
			continue
		}
		if year == 0 || yearMatches(year, c.ReleaseYear) {
			return c, true
		}
	}
	if year == 0 {
		return Candidate{}, false
	}
	for _, c := range candidates {
		if isMovie(c) && yearMatches(year, c.ReleaseYear) {
			return c, true
		}
	}
	return Candidate{}, false
}

func isMovie(c Candidate) bool {
	return strings.EqualFold(c.ObjectType, ObjectTypeMovie)
}

func titlesOverlap(query, candidate string) bool {
	if query == "" || candidate == "" {
		return false
	}
	return strings.Contains(candidate, query) || strings.Contains(query, candidate)
}

func yearMatches(want, got int) bool {
	if want == 0 || got == 0 {
		return false
	}
	diff := want - got
	if diff < 0 {
		diff = -diff
	}
	return diff <= yearWindow
}
