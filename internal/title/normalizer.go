package title

import (
	"regexp"
	"strings"

	"rewatch/internal/textutil"
)

// Parsed is the result of parsing one raw feed title.
type Parsed struct {
	Title string
	Hosts []string
}

// Pass is one named transformation applied to the candidate title.
type Pass struct {
	Name  string
	Apply func(string) string
}

// Step records the output of one pass for tracing.
type Step struct {
	Name   string
	Output string
}

// titlePasses run in order on the text before the "with" delimiter. Quotes
// are stripped again after markers because a marker can sit outside the
// closing quote.
var titlePasses = []Pass{
	{Name: "normalize-quotes", Apply: NormalizeQuotes},
	{Name: "strip-quotes", Apply: StripQuotes},
	{Name: "strip-markers", Apply: StripMarkers},
	{Name: "strip-quotes", Apply: StripQuotes},
}

// Normalizer parses raw feed titles.
type Normalizer struct {
	prefix *regexp.Regexp
}

// New returns a Normalizer that strips the given show-name prefix.
func New(showPrefix string) *Normalizer {
	return &Normalizer{prefix: prefixPattern(showPrefix)}
}

// StripPrefix removes the show-name label from the start of s, along with any
// separator (colon, dash, pipe) that follows it.
func (n *Normalizer) StripPrefix(s string) string {
	s = strings.TrimSpace(s)
	if n.prefix == nil {
		return s
	}
	return strings.TrimSpace(n.prefix.ReplaceAllString(s, ""))
}

// Parse extracts the movie title and hosts. Without a "with" delimiter the
// whole string, minus prefix, quotes, and markers, is the title and no hosts
// are returned.
func (n *Normalizer) Parse(raw string) Parsed {
	parsed, _ := n.run(raw, false)
	return parsed
}

// Trace parses raw and reports the output of every pass.
func (n *Normalizer) Trace(raw string) (Parsed, []Step) {
	return n.run(raw, true)
}

func (n *Normalizer) run(raw string, trace bool) (Parsed, []Step) {
	var steps []Step
	record := func(name, out string) {
		if trace {
			steps = append(steps, Step{Name: name, Output: out})
		}
	}

	s := textutil.CollapseSpace(textutil.NFC(raw))
	s = n.StripPrefix(s)
	record("strip-prefix", s)

	candidate, hostSegment, _ := SplitOnWith(s)
	record("split-on-with", candidate)

	for _, pass := range titlePasses {
		candidate = pass.Apply(candidate)
		record(pass.Name, candidate)
	}

	hosts := SplitHosts(NormalizeQuotes(hostSegment))
	if hosts == nil {
		hosts = []string{}
	}
	return Parsed{Title: candidate, Hosts: hosts}, steps
}
