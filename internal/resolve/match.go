package resolve

import (
	"github.com/gyeh/chargeflow/internal/normalize"
	"github.com/gyeh/chargeflow/internal/tebra"
)

// MatchProvider picks the provider that best matches name among the active
// providers of an acceptable type. An exact full-name match wins outright;
// otherwise candidates are scored by the share of query tokens (credentials
// removed) they contain, and the highest score at or above threshold is
// accepted. Ties keep the first candidate in service order.
func MatchProvider(providers []tebra.Provider, name string, types, stop []string, threshold float64) (tebra.Provider, float64, bool) {
	norm := normalize.NormalizeName(name)
	accept := make(map[string]bool, len(types))
	for _, t := range types {
		accept[normalize.NormalizeName(t)] = true
	}

	var candidates []tebra.Provider
	for _, p := range providers {
		if p.Active && p.ID != "" && accept[normalize.NormalizeName(p.Type)] {
			candidates = append(candidates, p)
		}
	}

	for _, p := range candidates {
		if normalize.NormalizeName(displayName(p)) == norm {
			return p, 1, true
		}
	}

	query := normalize.NameTokens(name, stop)
	if len(query) == 0 {
		query = []string{norm}
	}

	var best tebra.Provider
	bestScore := 0.0
	for _, p := range candidates {
		score := normalize.TokenCoverage(query, normalize.NameTokens(displayName(p), stop))
		if score > bestScore {
			best, bestScore = p, score
		}
	}
	if bestScore >= threshold && bestScore > 0 {
		return best, bestScore, true
	}
	return tebra.Provider{}, bestScore, false
}

func displayName(p tebra.Provider) string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.FirstName + " " + p.LastName
}
