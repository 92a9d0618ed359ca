// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"context"
	"sort"
	"time"

	"github.com/kraklabs/cie-core/internal/embedmodel"
	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/graph"
	"github.com/kraklabs/cie-core/internal/metrics"
	"github.com/kraklabs/cie-core/internal/vector"
)

// overfetchFactor is how many times final k the dense candidate set
// requests, giving fusion and re-ranking room to reorder before truncation.
const overfetchFactor = 4

// Options configures one Search call.
type Options struct {
	Intent         Intent
	K              int
	SemanticOnly   bool // skip lexical/graph candidates; pure dense search
	DenseThreshold float32
	MaxTerms       int
	TypeFilter     entity.NodeType
}

// Search runs the hybrid retrieval pipeline: expand, fetch dense and
// lexical/graph candidates, fuse by reciprocal rank, re-rank by
// intent-aware metadata boosts.
func Search(ctx context.Context, snap *graph.Snapshot, idx *vector.Index, lex *LexicalIndex, model embedmodel.Model, query string, opts Options) ([]Ranked, error) {
	start := time.Now()
	mode := "hybrid"
	if opts.SemanticOnly {
		mode = "semantic"
	}
	metrics.SearchRequest(mode)
	defer func() {
		metrics.ObserveSearchDuration(mode, time.Since(start).Seconds())
	}()

	if opts.Intent == "" {
		opts.Intent = IntentGeneral
	}
	if opts.K <= 0 {
		opts.K = 10
	}

	terms := Expand(query, opts.Intent, opts.MaxTerms)
	expandedQuery := query
	if len(terms) > 0 {
		expandedQuery = joinTerms(terms)
	}

	vec, err := model.Embed(ctx, expandedQuery)
	if err != nil {
		return nil, err
	}
	denseThreshold := opts.DenseThreshold
	if denseThreshold == 0 {
		if opts.SemanticOnly {
			denseThreshold = 0.20
		} else {
			denseThreshold = 0.15
		}
	}
	denseResults, err := idx.Search(vec, opts.K*overfetchFactor, denseThreshold, opts.TypeFilter)
	if err != nil {
		return nil, err
	}
	denseKeys := make([]entity.NodeKey, len(denseResults))
	for i, r := range denseResults {
		denseKeys[i] = r.Key
	}

	lists := [][]entity.NodeKey{denseKeys}
	if !opts.SemanticOnly && lex != nil {
		lexKeys, err := lex.Search(terms, opts.K*overfetchFactor)
		if err != nil {
			return nil, err
		}
		graphKeys := expandWithNeighbors(snap, lexKeys)
		lists = append(lists, graphKeys)
	}

	fused := ReciprocalRankFusion(lists, DefaultRRFK)

	attrs := collectAttrs(snap, fused)
	ranked := Rerank(fused, attrs, opts.Intent, terms)
	if len(ranked) > opts.K {
		ranked = ranked[:opts.K]
	}
	metrics.ObserveSearchResultCount(len(ranked))
	return ranked, nil
}

func joinTerms(terms []string) string {
	out := terms[0]
	for _, t := range terms[1:] {
		out += " " + t
	}
	return out
}

// expandWithNeighbors appends each lexical hit's 1-hop neighbors (across
// calls, defines, and references) after the hit itself, preserving rank
// order for RRF.
func expandWithNeighbors(snap *graph.Snapshot, hits []entity.NodeKey) []entity.NodeKey {
	if snap == nil {
		return hits
	}
	seen := make(map[entity.NodeKey]struct{}, len(hits))
	out := make([]entity.NodeKey, 0, len(hits))
	appendUnique := func(k entity.NodeKey) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	for _, h := range hits {
		appendUnique(h)
		for _, kind := range []entity.EdgeKind{entity.EdgeCalls, entity.EdgeDefines, entity.EdgeReferences} {
			neighbors := snap.Neighbors(h, kind)
			sortNodeKeys(neighbors)
			for _, nb := range neighbors {
				appendUnique(nb)
			}
		}
	}
	return out
}

// sortNodeKeys orders keys by (Type, ID) in place. Snapshot.Neighbors
// returns them in Go map iteration order, which is randomized per run;
// without this, repeated identical hybrid_search calls could expand
// candidates in different orders and produce different final rankings.
func sortNodeKeys(keys []entity.NodeKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].ID < keys[j].ID
	})
}

func collectAttrs(snap *graph.Snapshot, fused []Fused) map[entity.NodeKey]entity.Attrs {
	out := make(map[entity.NodeKey]entity.Attrs, len(fused))
	if snap == nil {
		return out
	}
	for _, f := range fused {
		if a, ok := snap.Nodes[f.Key]; ok {
			out[f.Key] = a
		}
	}
	return out
}
