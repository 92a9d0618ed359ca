// SPDX-License-Identifier: Apache-2.0

package galgo

import (
	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/graph"
)

// Coupling is the afferent/efferent coupling and instability of one module.
type Coupling struct {
	Afferent    int // number of distinct modules importing this one
	Efferent    int // number of distinct modules this one imports
	Instability float64
}

// CouplingOptions selects direct vs. transitive coupling.
type CouplingOptions struct {
	Transitive bool
}

// ModuleCoupling computes afferent/efferent coupling and instability
// (Ce / (Ca + Ce), 0 when a module has no coupling at all) for every module
// node, over the imports projection. With Transitive set, afferent/efferent
// counts are the size of the reachable set via repeated imports hops rather
// than direct neighbors only.
func ModuleCoupling(snap *graph.Snapshot, opts CouplingOptions) map[entity.NodeKey]Coupling {
	modules := snap.Buckets[entity.NodeModule]
	out := make(map[entity.NodeKey]Coupling, len(modules))

	for _, m := range modules {
		var efferent, afferent int
		if opts.Transitive {
			efferent = len(reachableVia(snap, m, entity.EdgeImports, false))
			afferent = len(reachableVia(snap, m, entity.EdgeImports, true))
		} else {
			efferent = len(snap.Neighbors(m, entity.EdgeImports))
			afferent = len(snap.Predecessors(m, entity.EdgeImports))
		}

		c := Coupling{Afferent: afferent, Efferent: efferent}
		if total := afferent + efferent; total > 0 {
			c.Instability = float64(efferent) / float64(total)
		}
		out[m] = c
	}
	return out
}

// reachableVia returns the set of nodes reachable from start by repeatedly
// following edges of kind (or, if reverse is true, walking predecessors),
// excluding start itself.
func reachableVia(snap *graph.Snapshot, start entity.NodeKey, kind entity.EdgeKind, reverse bool) map[entity.NodeKey]struct{} {
	visited := map[entity.NodeKey]struct{}{start: {}}
	queue := []entity.NodeKey{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		var next []entity.NodeKey
		if reverse {
			next = snap.Predecessors(cur, kind)
		} else {
			next = snap.Neighbors(cur, kind)
		}
		for _, nb := range next {
			if _, seen := visited[nb]; !seen {
				visited[nb] = struct{}{}
				queue = append(queue, nb)
			}
		}
	}
	delete(visited, start)
	return visited
}
