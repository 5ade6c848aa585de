package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEntityNotRecognized is returned when no tier produces a match.
var ErrEntityNotRecognized = errors.New("entity not recognized")

const (
	// DefaultMinSimilarity is the closeness ratio 1 - d/max(len) an alias
	// must reach in the edit-distance tier of an AliasTable lookup.
	DefaultMinSimilarity = 0.5

	// DefaultMaxDistance is the largest edit distance accepted by a
	// KeyTable lookup.
	DefaultMaxDistance = 3
)

// Tier names the step that produced a match.
type Tier string

const (
	TierExact     Tier = "exact"
	TierSubstring Tier = "substring"
	TierDistance  Tier = "distance"
	TierMiss      Tier = "miss"
)

// Resolver holds lookup thresholds. The zero value uses the defaults.
type Resolver struct {
	// MinSimilarity <= 0 means DefaultMinSimilarity.
	MinSimilarity float64
	// MaxDistance <= 0 means DefaultMaxDistance; there is no way to turn the
	// edit-distance tier off.
	MaxDistance int

	// OnResolve, if set, is called with the tier of every lookup.
	OnResolve func(tier string)
}

func (r Resolver) minSimilarity() float64 {
	if r.MinSimilarity <= 0 {
		return DefaultMinSimilarity
	}
	return r.MinSimilarity
}

func (r Resolver) maxDistance() int {
	if r.MaxDistance <= 0 {
		return DefaultMaxDistance
	}
	return r.MaxDistance
}

func (r Resolver) report(t Tier) {
	if r.OnResolve != nil {
		r.OnResolve(string(t))
	}
}

// Entity resolves query against an alias table: exact alias match first,
// then the closest alias by edit distance if it is similar enough.
func (r Resolver) Entity(query string, t *AliasTable) (AliasEntry, Tier, error) {
	q := Normalize(query)
	if q == "" || t.Len() == 0 {
		r.report(TierMiss)
		return AliasEntry{}, TierMiss, notRecognized(query)
	}

	for i, aliases := range t.norm {
		for _, a := range aliases {
			if a == q {
				r.report(TierExact)
				return t.entries[i], TierExact, nil
			}
		}
	}

	best, bestDist, bestAlias := -1, 0, ""
	for i, aliases := range t.norm {
		for _, a := range aliases {
			d := Levenshtein(q, a)
			if best < 0 || d < bestDist {
				best, bestDist, bestAlias = i, d, a
			}
		}
	}
	if best >= 0 && similarity(bestDist, q, bestAlias) >= r.minSimilarity() {
		r.report(TierDistance)
		return t.entries[best], TierDistance, nil
	}

	r.report(TierMiss)
	return AliasEntry{}, TierMiss, notRecognized(query)
}

// Key resolves query against a key table: exact key, then the first key
// containing the query, then the closest key within MaxDistance edits.
func (r Resolver) Key(query string, t *KeyTable) (string, Tier, error) {
	q := Normalize(query)
	if q == "" || t.Len() == 0 {
		r.report(TierMiss)
		return "", TierMiss, notRecognized(query)
	}

	if i, ok := t.index[q]; ok {
		r.report(TierExact)
		return t.ids[i], TierExact, nil
	}

	for i, k := range t.keys {
		if strings.Contains(k, q) {
			r.report(TierSubstring)
			return t.ids[i], TierSubstring, nil
		}
	}

	best, bestDist := -1, 0
	for i, k := range t.keys {
		d := Levenshtein(q, k)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 && bestDist <= r.maxDistance() {
		r.report(TierDistance)
		return t.ids[best], TierDistance, nil
	}

	r.report(TierMiss)
	return "", TierMiss, notRecognized(query)
}

func notRecognized(query string) error {
	return fmt.Errorf("%w: %q", ErrEntityNotRecognized, query)
}

// Resolve resolves query against t with default thresholds.
func Resolve(query string, t *AliasTable) (AliasEntry, error) {
	e, _, err := Resolver{}.Entity(query, t)
	return e, err
}

// Resolve resolves query with default thresholds.
func (t *AliasTable) Resolve(query string) (AliasEntry, error) {
	return Resolve(query, t)
}

// Resolve returns the identifier for query with default thresholds.
func (t *KeyTable) Resolve(query string) (string, error) {
	id, _, err := Resolver{}.Key(query, t)
	return id, err
}
