// SPDX-License-Identifier: Apache-2.0

package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/graph"
	"github.com/kraklabs/cie-core/internal/retrieval"
)

// SemanticSearchArgs holds arguments for pure dense search.
type SemanticSearchArgs struct {
	Query     string
	K         int
	Threshold float64
	NodeType  string
}

// SemanticSearch embeds the query and runs it directly against the vector
// index, bypassing lexical/graph candidates and re-ranking.
func SemanticSearch(ctx context.Context, deps *Deps, args SemanticSearchArgs) (*ToolResult, error) {
	if args.Query == "" {
		return NewError("Error: 'query' is required"), nil
	}
	k := args.K
	if k <= 0 {
		k = 10
	}
	threshold := args.Threshold
	if threshold <= 0 {
		threshold = deps.Config.Search.SemanticThreshold
	}

	vec, err := deps.Model.Embed(ctx, args.Query)
	if err != nil {
		return Errorf("Embedding error: %v", err), nil
	}

	results, err := deps.Index.Search(vec, k, float32(threshold), entity.NodeType(args.NodeType))
	if err != nil {
		return Errorf("Search error: %v", err), nil
	}

	if len(results) == 0 {
		return NewResult("No results found.\n"), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Semantic search: %q (%d results)\n\n", args.Query, len(results))
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. `%s:%s` score=%.4f\n", i+1, r.Key.Type, r.Key.ID, r.Score)
	}
	return NewResult(sb.String()), nil
}

// HybridSearchArgs holds arguments for the full retrieval pipeline.
type HybridSearchArgs struct {
	Query    string
	K        int
	Strategy string // intent: general, explain, refactor, debug
}

// HybridSearch runs query expansion, dense + lexical candidate generation,
// reciprocal-rank fusion, and intent-aware re-ranking (internal/retrieval).
func HybridSearch(ctx context.Context, deps *Deps, args HybridSearchArgs) (*ToolResult, error) {
	if args.Query == "" {
		return NewError("Error: 'query' is required"), nil
	}
	k := args.K
	if k <= 0 {
		k = deps.Config.Search.DefaultK
	}
	intent := retrieval.Intent(args.Strategy)
	if !intent.Valid() {
		intent = retrieval.IntentGeneral
	}

	snap := deps.Store.Snapshot()
	lex, err := retrieval.BuildLexicalIndex(snap, nodesOf(snap))
	if err != nil {
		return Errorf("Lexical index error: %v", err), nil
	}
	defer lex.Close()

	opts := retrieval.Options{
		Intent:         intent,
		K:              k,
		DenseThreshold: float32(deps.Config.Search.HybridThreshold),
		MaxTerms:       deps.Config.Search.MaxExpansionTerms,
	}

	ranked, err := retrieval.Search(ctx, snap, deps.Index, lex, deps.Model, args.Query, opts)
	if err != nil {
		return Errorf("Search error: %v", err), nil
	}

	if len(ranked) == 0 {
		return NewResult("No results found.\n"), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Hybrid search: %q [%s] (%d results)\n\n", args.Query, intent, len(ranked))
	for i, r := range ranked {
		fmt.Fprintf(&sb, "%d. `%s:%s` fused=%.4f boost=%.3f boosted=%.4f\n",
			i+1, r.Key.Type, r.Key.ID, r.FusedScore, r.Boost, r.BoostedScore)
	}
	return NewResult(sb.String()), nil
}

func nodesOf(snap *graph.Snapshot) []entity.Node {
	out := make([]entity.Node, 0, len(snap.Nodes))
	for k, a := range snap.Nodes {
		out = append(out, entity.Node{Key: k, Attrs: a})
	}
	return out
}
