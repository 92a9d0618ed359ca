// SPDX-License-Identifier: Apache-2.0

package galgo

import (
	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/graph"
)

// CycleScope selects which node type a cycle search runs over.
type CycleScope string

const (
	CycleScopeModule   CycleScope = "module"
	CycleScopeFunction CycleScope = "function"
)

// CycleOptions bounds a cycle search.
type CycleOptions struct {
	Scope     CycleScope
	MinLength int
	Limit     int
}

// Cycle is one detected cycle, as an ordered list of nodes returning to its
// own start (the start node is not repeated at the end).
type Cycle struct {
	Nodes []entity.NodeKey
}

// FindCycles runs a DFS over the requested projection (module-imports edges
// for CycleScopeModule, calls edges for CycleScopeFunction), emitting each
// distinct simple cycle once. Cycles that are rotations of one another (same
// loop, different start node) are deduplicated by rotating each to start
// at its lexicographically smallest node; a cycle and its reverse are kept
// as two distinct cycles.
func FindCycles(snap *graph.Snapshot, opts CycleOptions) []Cycle {
	if opts.MinLength <= 0 {
		opts.MinLength = 2
	}

	var nodeType entity.NodeType
	var edgeKind entity.EdgeKind
	switch opts.Scope {
	case CycleScopeModule:
		nodeType, edgeKind = entity.NodeModule, entity.EdgeImports
	default:
		nodeType, edgeKind = entity.NodeFunction, entity.EdgeCalls
	}

	nodes := sortedKeys(snap.Buckets[nodeType])
	seen := make(map[string]bool)
	var out []Cycle

	var stack []entity.NodeKey
	onStack := make(map[entity.NodeKey]int)

	var visit func(start, cur entity.NodeKey)
	visit = func(start, cur entity.NodeKey) {
		if opts.Limit > 0 && len(out) >= opts.Limit {
			return
		}
		for _, nb := range snap.Neighbors(cur, edgeKind) {
			if opts.Limit > 0 && len(out) >= opts.Limit {
				return
			}
			if nb == start && len(stack) >= opts.MinLength {
				cyc := append([]entity.NodeKey(nil), stack...)
				key := normalizeCycleKey(cyc)
				if !seen[key] {
					seen[key] = true
					out = append(out, Cycle{Nodes: cyc})
				}
				continue
			}
			if _, on := onStack[nb]; on {
				continue
			}
			stack = append(stack, nb)
			onStack[nb] = len(stack) - 1
			visit(start, nb)
			stack = stack[:len(stack)-1]
			delete(onStack, nb)
		}
	}

	for _, start := range nodes {
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
		stack = []entity.NodeKey{start}
		onStack = map[entity.NodeKey]int{start: 0}
		visit(start, start)
	}

	return out
}

// normalizeCycleKey rotates cyc so it starts at its lexicographically
// smallest node, producing a canonical key independent of which node the
// DFS happened to start from. Direction is significant: a directed cycle
// and its reverse are distinct cycles and must not collide.
func normalizeCycleKey(cyc []entity.NodeKey) string {
	n := len(cyc)
	minIdx := 0
	for i := 1; i < n; i++ {
		if less(cyc[i], cyc[minIdx]) {
			minIdx = i
		}
	}
	rotated := make([]entity.NodeKey, n)
	for i := 0; i < n; i++ {
		rotated[i] = cyc[(minIdx+i)%n]
	}

	var sb []byte
	for _, k := range rotated {
		sb = append(sb, []byte(k.String())...)
		sb = append(sb, '\x00')
	}
	return string(sb)
}

func less(a, b entity.NodeKey) bool {
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.ID < b.ID
}
