// SPDX-License-Identifier: Apache-2.0

package galgo

import (
	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/graph"
)

// WeaklyConnectedComponents groups function nodes reachable from each other
// via an undirected walk over the calls projection.
func WeaklyConnectedComponents(snap *graph.Snapshot) [][]entity.NodeKey {
	nodes := sortedKeys(snap.Buckets[entity.NodeFunction])
	visited := make(map[entity.NodeKey]bool, len(nodes))

	var components [][]entity.NodeKey
	for _, start := range nodes {
		if visited[start] {
			continue
		}
		var comp []entity.NodeKey
		queue := []entity.NodeKey{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)

			for _, nb := range snap.Neighbors(cur, entity.EdgeCalls) {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
			for _, nb := range snap.Predecessors(cur, entity.EdgeCalls) {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		components = append(components, comp)
	}
	return components
}

// StronglyConnectedComponents runs Tarjan's algorithm over the calls
// projection.
func StronglyConnectedComponents(snap *graph.Snapshot) [][]entity.NodeKey {
	t := &tarjan{
		snap:    snap,
		index:   make(map[entity.NodeKey]int),
		lowlink: make(map[entity.NodeKey]int),
		onStack: make(map[entity.NodeKey]bool),
	}
	for _, n := range sortedKeys(snap.Buckets[entity.NodeFunction]) {
		if _, seen := t.index[n]; !seen {
			t.strongconnect(n)
		}
	}
	return t.components
}

type tarjan struct {
	snap       *graph.Snapshot
	counter    int
	index      map[entity.NodeKey]int
	lowlink    map[entity.NodeKey]int
	onStack    map[entity.NodeKey]bool
	stack      []entity.NodeKey
	components [][]entity.NodeKey
}

func (t *tarjan) strongconnect(v entity.NodeKey) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.snap.Neighbors(v, entity.EdgeCalls) {
		if _, seen := t.index[w]; !seen {
			t.strongconnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var comp []entity.NodeKey
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		t.components = append(t.components, comp)
	}
}
