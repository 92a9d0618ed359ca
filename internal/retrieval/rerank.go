// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"strconv"
	"strings"

	"github.com/kraklabs/cie-core/internal/entity"
)

// Ranked is one final search result: the fused RRF score, the boost
// applied, and their product.
type Ranked struct {
	Key          entity.NodeKey
	Attrs        entity.Attrs
	FusedScore   float64
	Boost        float64
	BoostedScore float64
	Intent       Intent
}

// boost bounds keep any single factor from dominating the product; a
// factor outside [min, max] is clamped rather than allowed to invert
// ranking entirely.
const (
	boostMin = 0.5
	boostMax = 1.5
)

// Rerank applies intent-aware metadata boosts to fused, including a small
// boost when a query term occurs as a substring of the node's own name, and
// returns results ordered by boosted score, ties broken by node key.
func Rerank(fused []Fused, attrs map[entity.NodeKey]entity.Attrs, intent Intent, queryTerms []string) []Ranked {
	out := make([]Ranked, 0, len(fused))
	for _, f := range fused {
		a := attrs[f.Key]
		boost := purityBoost(a, intent) * complexityBoost(a, intent) * originBoost(a, intent) * nameMatchBoost(f.Key, a, queryTerms)
		out = append(out, Ranked{
			Key:          f.Key,
			Attrs:        a,
			FusedScore:   f.Score,
			Boost:        boost,
			BoostedScore: f.Score * boost,
			Intent:       intent,
		})
	}

	sortRanked(out)
	return out
}

func sortRanked(out []Ranked) {
	less := func(i, j int) bool {
		if out[i].BoostedScore != out[j].BoostedScore {
			return out[i].BoostedScore > out[j].BoostedScore
		}
		if out[i].Key.Type != out[j].Key.Type {
			return out[i].Key.Type < out[j].Key.Type
		}
		return out[i].Key.ID < out[j].Key.ID
	}
	insertionSort(out, less)
}

// insertionSort is a stable O(n^2) insertion sort; result sets are small
// post-fusion.
func insertionSort(out []Ranked, less func(i, j int) bool) {
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
}

func clampBoost(v float64) float64 {
	if v < boostMin {
		return boostMin
	}
	if v > boostMax {
		return boostMax
	}
	return v
}

func extraFloat(a entity.Attrs, key string, fallback float64) float64 {
	if a.Extra == nil {
		return fallback
	}
	raw, ok := a.Extra[key]
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// purityBoost rewards impure (side-effecting) nodes for refactor intent and
// is neutral otherwise.
func purityBoost(a entity.Attrs, intent Intent) float64 {
	purity := extraFloat(a, "purity", 0.5)
	if intent != IntentRefactor {
		return 1.0
	}
	// refactor prefers more complex or impure nodes: invert purity so low
	// purity (impure) yields a boost above 1.
	return clampBoost(1.5 - purity)
}

// complexityBoost penalizes complex nodes for "explain" intent (prefers
// simpler nodes) and rewards them for "refactor" intent.
func complexityBoost(a entity.Attrs, intent Intent) float64 {
	complexity := extraFloat(a, "complexity", 0.5)
	switch intent {
	case IntentExplain:
		return clampBoost(1.5 - complexity)
	case IntentRefactor:
		return clampBoost(0.5 + complexity)
	default:
		return 1.0
	}
}

// originBoost favors "core" over "native"/FFI-bound nodes for explain
// intent, where a pure-language implementation is easier to walk through.
func originBoost(a entity.Attrs, intent Intent) float64 {
	if intent != IntentExplain {
		return 1.0
	}
	origin := ""
	if a.Extra != nil {
		origin = a.Extra["origin"]
	}
	if origin == "native" {
		return boostMin
	}
	return 1.0
}

// nameMatchBoost gives a small edge to a node whose own name (not just its
// docstring) contains a query term, so a node named "validate_email" ranks
// above one named "Validator" with the same docstring when both match. The
// factor outweighs the one-rank gap (at most 62/61) that the key-order
// tie-break opens between such nodes in each candidate list.
func nameMatchBoost(key entity.NodeKey, a entity.Attrs, queryTerms []string) float64 {
	name := strings.ToLower(lastSegment(key.ID))
	for _, term := range queryTerms {
		if term != "" && strings.Contains(name, strings.ToLower(term)) {
			return 1.05
		}
	}
	return 1.0
}
