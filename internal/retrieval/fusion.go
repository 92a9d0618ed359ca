// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"sort"

	"github.com/kraklabs/cie-core/internal/entity"
)

// DefaultRRFK is the reciprocal-rank-fusion constant k_rrf, following the
// conventional value used across the retrieval literature.
const DefaultRRFK = 60

// Fused is one node's combined score across every ranked list it appeared
// in, before re-ranking.
type Fused struct {
	Key   entity.NodeKey
	Score float64
}

// ReciprocalRankFusion combines any number of ranked candidate lists into a
// single score per node: score(d) = Σ 1/(k + rank_i(d)) over every list d
// appears in, 0 contribution from lists it's absent from. Rank is 1-based.
// Ties are broken by node key for deterministic output.
func ReciprocalRankFusion(lists [][]entity.NodeKey, k int) []Fused {
	if k <= 0 {
		k = DefaultRRFK
	}
	scores := make(map[entity.NodeKey]float64)
	order := make([]entity.NodeKey, 0)
	seen := make(map[entity.NodeKey]struct{})

	for _, list := range lists {
		for rank, key := range list {
			scores[key] += 1.0 / float64(k+rank+1)
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				order = append(order, key)
			}
		}
	}

	out := make([]Fused, 0, len(order))
	for _, key := range order {
		out = append(out, Fused{Key: key, Score: scores[key]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Key.Type != out[j].Key.Type {
			return out[i].Key.Type < out[j].Key.Type
		}
		return out[i].Key.ID < out[j].Key.ID
	})
	return out
}
