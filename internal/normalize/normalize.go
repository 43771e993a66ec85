package normalize

import (
	"regexp"
	"strings"
)

var tokenSplit = regexp.MustCompile(`[\s,.]+`)

// DefaultStopTokens are credential and organisational words ignored when
// comparing provider names.
var DefaultStopTokens = []string{
	"dr", "md", "do", "pa", "np", "lcsw", "msw",
	"inc", "llc", "pc", "group", "associates", "services", "medical",
}

// NameTokens lowercases name, splits it on whitespace, commas and dots, and
// drops every token in stop.
func NameTokens(name string, stop []string) []string {
	skip := make(map[string]bool, len(stop))
	for _, s := range stop {
		skip[strings.ToLower(s)] = true
	}
	var out []string
	for _, tok := range tokenSplit.Split(strings.ToLower(name), -1) {
		if tok == "" || skip[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// TokenCoverage returns the fraction of query tokens present in candidate.
// An empty query has zero coverage.
func TokenCoverage(query, candidate []string) float64 {
	if len(query) == 0 {
		return 0
	}
	have := make(map[string]bool, len(candidate))
	for _, c := range candidate {
		have[c] = true
	}
	matched := 0
	for _, q := range query {
		if have[q] {
			matched++
		}
	}
	return float64(matched) / float64(len(query))
}
