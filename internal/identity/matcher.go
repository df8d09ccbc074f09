package identity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/copperpitch/youthrank/internal/platform/logging"
)

type Tier string

const (
	TierExact      Tier = "exact"
	TierNormalized Tier = "normalized"
	TierFuzzy      Tier = "fuzzy"
	TierExternal   Tier = "external"
)

const (
	// FuzzyThreshold gates roster resolution; SearchThreshold gates
	// profile-search candidate selection, which tolerates looser names.
	FuzzyThreshold  = 0.85
	SearchThreshold = 0.60

	// ExternalPrefix marks opponents absent from every roster.
	ExternalPrefix = "ext::"
)

var ErrEmptyName = errors.New("empty team name")

type RegistryEntry struct {
	Key         string
	DisplayName string
}

type Result struct {
	Key            string
	DisplayName    string
	Tier           Tier
	Confidence     float64
	RankedEligible bool
}

// ConfidenceLabel renders the tier for the gold match_confidence column.
func (r Result) ConfidenceLabel() string {
	switch r.Tier {
	case TierFuzzy:
		return fmt.Sprintf("fuzzy:%.2f", r.Confidence)
	case TierExternal:
		return "external:" + r.Key
	default:
		return string(r.Tier)
	}
}

type fuzzyEntry struct {
	entry  RegistryEntry
	tokens map[string]struct{}
}

// Matcher resolves raw opponent names against a registry of canonical
// teams through exact, normalized and fuzzy tiers, synthesizing an
// external key when nothing clears the bar.
type Matcher struct {
	logger    *logging.Logger
	byKey     map[string]RegistryEntry
	byReduced map[string]RegistryEntry
	ordered   []fuzzyEntry
}

// NewMatcher indexes the registry. Entries with a duplicate key collapse
// first-wins; each collision is logged once.
func NewMatcher(entries []RegistryEntry, logger *logging.Logger) *Matcher {
	if logger == nil {
		logger = logging.Default()
	}

	m := &Matcher{
		logger:    logger,
		byKey:     make(map[string]RegistryEntry, len(entries)),
		byReduced: make(map[string]RegistryEntry, len(entries)),
		ordered:   make([]fuzzyEntry, 0, len(entries)),
	}

	for _, e := range entries {
		if e.Key == "" {
			e.Key = Normalize(e.DisplayName)
		}
		if e.Key == "" {
			continue
		}
		if prev, ok := m.byKey[e.Key]; ok {
			logger.Warn("registry key collision, keeping first entry",
				"team_key", e.Key,
				"kept", prev.DisplayName,
				"dropped", e.DisplayName,
			)
			continue
		}
		m.byKey[e.Key] = e

		reduced := ReduceForMatch(e.Key)
		if reduced != "" {
			if _, ok := m.byReduced[reduced]; !ok {
				m.byReduced[reduced] = e
			}
		}

		m.ordered = append(m.ordered, fuzzyEntry{
			entry:  e,
			tokens: MatchTokens(e.DisplayName),
		})
	}

	sort.Slice(m.ordered, func(i, j int) bool {
		return m.ordered[i].entry.Key < m.ordered[j].entry.Key
	})

	return m
}

func (m *Matcher) Len() int { return len(m.byKey) }

// Match resolves raw to a registry entry or synthesizes an external key.
// Blank input is the caller's bug, not a resolvable name.
func (m *Matcher) Match(raw string) (Result, error) {
	if strings.TrimSpace(raw) == "" {
		return Result{}, errors.Wrap(ErrEmptyName, "match")
	}

	key := Normalize(raw)
	if e, ok := m.byKey[key]; ok {
		return Result{
			Key:            e.Key,
			DisplayName:    e.DisplayName,
			Tier:           TierExact,
			Confidence:     1.0,
			RankedEligible: true,
		}, nil
	}

	if e, ok := m.byReduced[ReduceForMatch(key)]; ok {
		return Result{
			Key:            e.Key,
			DisplayName:    e.DisplayName,
			Tier:           TierNormalized,
			Confidence:     0.95,
			RankedEligible: true,
		}, nil
	}

	if e, sim, ok := m.bestFuzzy(raw); ok {
		return Result{
			Key:            e.Key,
			DisplayName:    e.DisplayName,
			Tier:           TierFuzzy,
			Confidence:     sim,
			RankedEligible: true,
		}, nil
	}

	return Result{
		Key:            ExternalPrefix + key,
		DisplayName:    strings.TrimSpace(raw),
		Tier:           TierExternal,
		Confidence:     0,
		RankedEligible: false,
	}, nil
}

func (m *Matcher) bestFuzzy(raw string) (RegistryEntry, float64, bool) {
	target := MatchTokens(raw)
	if len(target) == 0 {
		return RegistryEntry{}, 0, false
	}

	var (
		best    RegistryEntry
		bestSim float64
		found   bool
	)
	for _, fe := range m.ordered {
		sim := TokenSimilarity(target, fe.tokens)
		if sim < FuzzyThreshold {
			continue
		}
		if !found || sim > bestSim || (sim == bestSim && shorterName(fe.entry, best)) {
			best = fe.entry
			bestSim = sim
			found = true
		}
	}

	return best, bestSim, found
}

// shorterName is the fuzzy tie-break: prefer the shorter registry name,
// then the lexicographically smaller key so the scan stays deterministic.
func shorterName(a, b RegistryEntry) bool {
	if len(a.DisplayName) != len(b.DisplayName) {
		return len(a.DisplayName) < len(b.DisplayName)
	}
	return a.Key < b.Key
}

// Candidate is one row of a platform search response.
type Candidate struct {
	Name       string
	ExternalID string
}

// SelectCandidate picks the search result that best matches target:
// exact key equality beats normalized equality beats token overlap, and
// overlap below minOverlap selects nothing.
func SelectCandidate(target string, cands []Candidate, minOverlap float64) (Candidate, float64, bool) {
	targetKey := Normalize(target)
	if targetKey == "" || len(cands) == 0 {
		return Candidate{}, 0, false
	}
	targetReduced := ReduceForMatch(targetKey)
	targetTokens := MatchTokens(target)

	var (
		best      Candidate
		bestScore float64
		found     bool
	)
	consider := func(c Candidate, score float64) {
		if !found || score > bestScore ||
			(score == bestScore && (len(c.Name) < len(best.Name) ||
				(len(c.Name) == len(best.Name) && c.ExternalID < best.ExternalID))) {
			best = c
			bestScore = score
			found = true
		}
	}

	for _, c := range cands {
		if c.ExternalID == "" || strings.TrimSpace(c.Name) == "" {
			continue
		}
		key := Normalize(c.Name)
		switch {
		case key == targetKey:
			consider(c, 1.0)
		case ReduceForMatch(key) == targetReduced && targetReduced != "":
			consider(c, 0.95)
		default:
			if sim := TokenSimilarity(targetTokens, MatchTokens(c.Name)); sim >= minOverlap {
				consider(c, sim)
			}
		}
	}

	return best, bestScore, found
}
