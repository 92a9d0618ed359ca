// SPDX-License-Identifier: Apache-2.0

package mcptools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/galgo"
)

// FindCyclesArgs holds arguments for cycle detection.
type FindCyclesArgs struct {
	Scope          string // "module" or "function"
	MinCycleLength int
	Limit          int
}

// FindCycles runs DFS-based cycle enumeration over the requested scope.
func FindCycles(deps *Deps, args FindCyclesArgs) (*ToolResult, error) {
	scope := galgo.CycleScopeFunction
	if args.Scope == string(galgo.CycleScopeModule) {
		scope = galgo.CycleScopeModule
	}

	snap := deps.Store.Snapshot()
	cycles := galgo.FindCycles(snap, galgo.CycleOptions{
		Scope:     scope,
		MinLength: args.MinCycleLength,
		Limit:     args.Limit,
	})

	if len(cycles) == 0 {
		return NewResult(fmt.Sprintf("No cycles found in %s scope.\n", scope)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Cycles (%s scope, %d found)\n\n", scope, len(cycles))
	for i, c := range cycles {
		segs := make([]string, len(c.Nodes))
		for j, n := range c.Nodes {
			segs[j] = n.ID
		}
		fmt.Fprintf(&sb, "%d. %s -> %s\n", i+1, strings.Join(segs, " -> "), segs[0])
	}
	return NewResult(sb.String()), nil
}

// CouplingReportArgs holds arguments for per-module coupling.
type CouplingReportArgs struct {
	Module     string // empty reports every module
	Transitive bool
}

// CouplingReport computes afferent/efferent coupling and instability per
// module over the imports projection.
func CouplingReport(deps *Deps, args CouplingReportArgs) (*ToolResult, error) {
	snap := deps.Store.Snapshot()
	coupling := galgo.ModuleCoupling(snap, galgo.CouplingOptions{Transitive: args.Transitive})

	type row struct {
		key entity.NodeKey
		c   galgo.Coupling
	}
	var rows []row
	for k, c := range coupling {
		if args.Module != "" && k.ID != args.Module {
			continue
		}
		rows = append(rows, row{k, c})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].key.ID < rows[j].key.ID })

	if len(rows) == 0 {
		return NewResult("No matching module found.\n"), nil
	}

	var sb strings.Builder
	sb.WriteString("## Coupling report\n\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "- `%s`: afferent=%d efferent=%d instability=%.3f\n",
			r.key.ID, r.c.Afferent, r.c.Efferent, r.c.Instability)
	}
	return NewResult(sb.String()), nil
}

// FindDeadCode reports function nodes with no incoming calls or reference
// edges. Exported ("public") functions and anything named "main" or "init"
// are excluded by default since those are plausible external entry points
// rather than genuinely unreachable code; this is a heuristic, not a proof
// of dead code.
func FindDeadCode(deps *Deps) (*ToolResult, error) {
	snap := deps.Store.Snapshot()

	var dead []entity.NodeKey
	for _, key := range snap.Buckets[entity.NodeFunction] {
		if len(snap.Predecessors(key, entity.EdgeCalls)) > 0 {
			continue
		}
		if len(snap.Predecessors(key, entity.EdgeReferences)) > 0 {
			continue
		}
		name := lastSegment(key.ID)
		if name == "main" || name == "init" {
			continue
		}
		if attrs := snap.Nodes[key]; attrs.Visibility == entity.VisibilityPublic {
			continue
		}
		dead = append(dead, key)
	}
	sort.Slice(dead, func(i, j int) bool { return dead[i].ID < dead[j].ID })

	if len(dead) == 0 {
		return NewResult("No unreferenced private functions found.\n"), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Candidate dead code (%d functions)\n\n", len(dead))
	for _, key := range dead {
		attrs := snap.Nodes[key]
		fmt.Fprintf(&sb, "- `%s` (%s:%d)\n", key.ID, attrs.File, attrs.StartLine)
	}
	return NewResult(sb.String()), nil
}

// FindDuplicatesArgs holds arguments for near-duplicate detection.
type FindDuplicatesArgs struct {
	Threshold float64
	Limit     int
}

// FindDuplicates reports function pairs whose embedding vectors have a
// cosine similarity at or above threshold, a proxy for near-duplicate
// implementations built on the same vector index used for semantic search
// rather than a separate text-diff pass.
func FindDuplicates(deps *Deps, args FindDuplicatesArgs) (*ToolResult, error) {
	threshold := args.Threshold
	if threshold <= 0 {
		threshold = 0.95
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}

	snap := deps.Store.Snapshot()
	seen := make(map[string]bool)
	type pair struct {
		a, b  entity.NodeKey
		score float32
	}
	var pairs []pair

	for _, key := range snap.Buckets[entity.NodeFunction] {
		vec, _, ok := deps.Index.Get(key)
		if !ok {
			continue
		}
		results, err := deps.Index.Search(vec, 5, float32(threshold), entity.NodeFunction)
		if err != nil {
			continue
		}
		for _, r := range results {
			if r.Key == key {
				continue
			}
			a, b := key, r.Key
			if b.ID < a.ID {
				a, b = b, a
			}
			dedupeKey := a.ID + "|" + b.ID
			if seen[dedupeKey] {
				continue
			}
			seen[dedupeKey] = true
			pairs = append(pairs, pair{a, b, r.Score})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		return pairs[i].a.ID < pairs[j].a.ID
	})
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}

	if len(pairs) == 0 {
		return NewResult("No near-duplicate functions found.\n"), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Candidate duplicates (threshold=%.2f, %d pairs)\n\n", threshold, len(pairs))
	for _, p := range pairs {
		fmt.Fprintf(&sb, "- `%s` ~ `%s` (similarity=%.4f)\n", p.a.ID, p.b.ID, p.score)
	}
	return NewResult(sb.String()), nil
}
