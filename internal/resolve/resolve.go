// Package resolve maps human-written names from the charge sheet to the
// remote service's ids. Every lookup is memoized in a per-run Cache.
package resolve

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gyeh/chargeflow/internal/normalize"
	"github.com/gyeh/chargeflow/internal/tebra"
)

// ReferringProviderType is the provider type accepted for referrals.
const ReferringProviderType = "referring provider"

// MatchConfig tunes provider name matching.
type MatchConfig struct {
	// ProviderTypes are the acceptable rendering/scheduling provider types.
	ProviderTypes []string
	// StopTokens are ignored when comparing names token by token.
	StopTokens []string
	// FuzzyThreshold is the minimum share of query tokens a candidate must
	// contain to be accepted.
	FuzzyThreshold float64
}

// DefaultMatchConfig returns the stock provider matching rules.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		ProviderTypes:  []string{"normal provider", "physician", "group practice"},
		StopTokens:     normalize.DefaultStopTokens,
		FuzzyThreshold: 0.80,
	}
}

// ReferringProvider is the identity sent for a referral.
type ReferringProvider struct {
	ProviderID string
	FirstName  string
	LastName   string
	NPI        string
}

// Resolver resolves practices, providers, service locations and cases.
type Resolver struct {
	gw    tebra.Gateway
	cache *Cache
	match MatchConfig
	log   zerolog.Logger
}

// New creates a Resolver. A nil cache gets a fresh one.
func New(gw tebra.Gateway, cache *Cache, match MatchConfig, log zerolog.Logger) *Resolver {
	if cache == nil {
		cache = NewCache()
	}
	if len(match.ProviderTypes) == 0 {
		match.ProviderTypes = DefaultMatchConfig().ProviderTypes
	}
	if match.FuzzyThreshold <= 0 {
		match.FuzzyThreshold = DefaultMatchConfig().FuzzyThreshold
	}
	return &Resolver{gw: gw, cache: cache, match: match, log: log.With().Str("component", "resolver").Logger()}
}

// Cache returns the cache backing this resolver.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// PracticeID resolves a practice name. An active exact match is preferred;
// an inactive-only match is accepted with a warning.
func (r *Resolver) PracticeID(ctx context.Context, name string) (string, bool) {
	norm := normalize.NormalizeName(name)
	if norm == "" {
		return "", false
	}
	key := normalize.CacheKey("practice", norm)
	if id, ok := r.cache.id(key); ok {
		return id, id != ""
	}

	practices, err := r.gw.GetPractices(ctx, name)
	if err != nil {
		r.log.Error().Err(err).Str("practice", name).Msg("practice lookup failed")
		r.cache.putID(key, "")
		return "", false
	}

	var active, inactive string
	for _, p := range practices {
		if p.ID == "" || normalize.NormalizeName(p.Name) != norm {
			continue
		}
		if p.Active {
			active = p.ID
			break
		}
		if inactive == "" {
			inactive = p.ID
		}
	}

	id := active
	switch {
	case active != "":
		r.log.Info().Str("practice", name).Str("practice_id", id).Msg("practice resolved")
	case inactive != "":
		id = inactive
		r.log.Warn().Str("practice", name).Str("practice_id", id).Msg("practice resolved to an inactive record")
	default:
		r.log.Warn().Str("practice", name).Int("candidates", len(practices)).Msg("no exact practice match")
	}
	r.cache.putID(key, id)
	return id, id != ""
}

// ServiceLocationID resolves a service location by exact name within a practice.
func (r *Resolver) ServiceLocationID(ctx context.Context, name, practiceID string) (string, bool) {
	norm := normalize.NormalizeName(name)
	if norm == "" || practiceID == "" {
		return "", false
	}
	key := normalize.CacheKey("location", practiceID, norm)
	if id, ok := r.cache.id(key); ok {
		return id, id != ""
	}

	locations, err := r.gw.GetServiceLocations(ctx, practiceID)
	if err != nil {
		r.log.Error().Err(err).Str("location", name).Str("practice_id", practiceID).Msg("service location lookup failed")
		r.cache.putID(key, "")
		return "", false
	}

	var id string
	for _, l := range locations {
		if l.PracticeID == practiceID && normalize.NormalizeName(l.Name) == norm && l.ID != "" {
			id = l.ID
			break
		}
	}
	if id == "" {
		r.log.Warn().Str("location", name).Str("practice_id", practiceID).Msg("no exact service location match")
	}
	r.cache.putID(key, id)
	return id, id != ""
}

// ProviderID resolves a rendering or scheduling provider. acceptableTypes
// overrides the configured provider types when non-empty.
func (r *Resolver) ProviderID(ctx context.Context, name, practiceID string, acceptableTypes []string) (string, bool) {
	norm := normalize.NormalizeName(name)
	if norm == "" || practiceID == "" {
		return "", false
	}
	types := acceptableTypes
	if len(types) == 0 {
		types = r.match.ProviderTypes
	}
	key := normalize.CacheKey("provider", practiceID, typeKey(types), norm)
	if id, ok := r.cache.id(key); ok {
		return id, id != ""
	}

	providers, err := r.gw.GetProviders(ctx, practiceID)
	if err != nil {
		r.log.Error().Err(err).Str("provider", name).Str("practice_id", practiceID).Msg("provider lookup failed")
		r.cache.putID(key, "")
		return "", false
	}

	p, score, ok := MatchProvider(providers, name, types, r.match.StopTokens, r.match.FuzzyThreshold)
	id := ""
	if ok {
		id = p.ID
		r.log.Info().Str("provider", name).Str("matched", p.FullName).Str("provider_id", id).Float64("score", score).Msg("provider resolved")
	} else {
		r.log.Warn().Str("provider", name).Str("practice_id", practiceID).Msg("no acceptable provider match")
	}
	r.cache.putID(key, id)
	return id, ok
}

// ReferringProvider resolves a referring provider by exact full name.
func (r *Resolver) ReferringProvider(ctx context.Context, name, practiceID string) (*ReferringProvider, bool) {
	norm := normalize.NormalizeName(name)
	if norm == "" || practiceID == "" {
		return nil, false
	}
	key := normalize.CacheKey("referring", practiceID, norm)
	if rp, ok := r.cache.referringProvider(key); ok {
		return rp, rp != nil
	}

	providers, err := r.gw.GetProviders(ctx, practiceID)
	if err != nil {
		r.log.Error().Err(err).Str("referring_provider", name).Msg("referring provider lookup failed")
		r.cache.putReferring(key, nil)
		return nil, false
	}

	var found *ReferringProvider
	for _, p := range providers {
		if !p.Active || normalize.NormalizeName(p.Type) != ReferringProviderType {
			continue
		}
		if normalize.NormalizeName(p.FullName) != norm {
			continue
		}
		first, last := p.FirstName, p.LastName
		if first == "" || last == "" {
			f, l := splitFullName(p.FullName)
			if first == "" {
				first = f
			}
			if last == "" {
				last = l
			}
		}
		found = &ReferringProvider{ProviderID: p.ID, FirstName: first, LastName: last, NPI: p.NPI}
		break
	}
	if found == nil {
		r.log.Warn().Str("referring_provider", name).Str("practice_id", practiceID).Msg("no referring provider match")
	}
	r.cache.putReferring(key, found)
	return found, found != nil
}

// CaseID resolves the case an encounter is billed under: the primary case
// when it has an id, else the first case that does.
func (r *Resolver) CaseID(ctx context.Context, patientID int64) (string, bool) {
	key := normalize.CacheKey("case", strconv.FormatInt(patientID, 10))
	if id, ok := r.cache.id(key); ok {
		return id, id != ""
	}

	p, err := r.gw.GetPatient(ctx, patientID)
	if err != nil {
		r.log.Error().Err(err).Int64("patient_id", patientID).Msg("case lookup failed")
		r.cache.putID(key, "")
		return "", false
	}

	id := ""
	if p != nil {
		id = SelectCaseID(p.Cases)
	}
	if id == "" {
		r.log.Warn().Int64("patient_id", patientID).Msg("no case found for patient")
	}
	r.cache.putID(key, id)
	return id, id != ""
}

// SelectCaseID picks the primary case with an id, else the first case with one.
func SelectCaseID(cases []tebra.PatientCase) string {
	for _, c := range cases {
		if c.IsPrimary && c.ID != "" {
			return c.ID
		}
	}
	for _, c := range cases {
		if c.ID != "" {
			return c.ID
		}
	}
	return ""
}

func typeKey(types []string) string {
	norm := make([]string, len(types))
	for i, t := range types {
		norm[i] = normalize.NormalizeName(t)
	}
	return strings.Join(norm, ",")
}

func splitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	default:
		return parts[0], parts[len(parts)-1]
	}
}
