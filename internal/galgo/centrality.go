// SPDX-License-Identifier: Apache-2.0

package galgo

import (
	"context"

	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/graph"
)

// Degree is the (in, out, total) degree of one node.
type Degree struct {
	In    int
	Out   int
	Total int
}

// DegreeCentrality computes {in_degree, out_degree, total_degree} for every
// node in a single pass over the forward and reverse adjacency.
func DegreeCentrality(snap *graph.Snapshot) map[entity.NodeKey]Degree {
	out := make(map[entity.NodeKey]Degree)
	for node, kinds := range snap.Forward {
		d := out[node]
		for _, neighbors := range kinds {
			d.Out += len(neighbors)
		}
		out[node] = d
	}
	for node, kinds := range snap.Reverse {
		d := out[node]
		for _, sources := range kinds {
			d.In += len(sources)
		}
		out[node] = d
	}
	for node, d := range out {
		d.Total = d.In + d.Out
		out[node] = d
	}
	return out
}

// ClosenessCentrality runs BFS from each candidate node over all edge kinds
// (direction: outgoing), skipping unreachable pairs, and returns per node
// the number of nodes it reaches divided by the sum of its shortest-path
// distances to them (0 for a node that reaches nothing).
func ClosenessCentrality(ctx context.Context, snap *graph.Snapshot, nodes []entity.NodeKey) map[entity.NodeKey]float64 {
	out := make(map[entity.NodeKey]float64, len(nodes))
	for _, src := range nodes {
		select {
		case <-ctx.Done():
			return out
		default:
		}
		dist := bfsAllKinds(snap, src)
		var sum int
		reachable := 0
		for n, d := range dist {
			if n == src {
				continue
			}
			sum += d
			reachable++
		}
		if sum == 0 || reachable == 0 {
			out[src] = 0
			continue
		}
		out[src] = float64(reachable) / float64(sum)
	}
	return out
}

func bfsAllKinds(snap *graph.Snapshot, src entity.NodeKey) map[entity.NodeKey]int {
	dist := map[entity.NodeKey]int{src: 0}
	queue := []entity.NodeKey{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for kind := range snap.Forward[cur] {
			for _, nb := range snap.Neighbors(cur, kind) {
				if _, seen := dist[nb]; seen {
					continue
				}
				dist[nb] = dist[cur] + 1
				queue = append(queue, nb)
			}
		}
	}
	return dist
}

// BetweennessResult carries the computed scores plus a truncation flag.
type BetweennessResult struct {
	Scores  map[entity.NodeKey]float64
	Partial bool
}

// BetweennessCentrality runs Brandes' algorithm over all edge kinds,
// treating the graph as unweighted, capped at nodeBudget nodes. If the
// candidate set exceeds the budget, only the first nodeBudget (in stable
// order) are used as sources and Partial is set — required because Brandes'
// is O(V*E) and an unbounded run over a large repository graph is not
// acceptable latency for an interactive tool call.
func BetweennessCentrality(ctx context.Context, snap *graph.Snapshot, nodeBudget int) *BetweennessResult {
	all := allNodes(snap)
	result := &BetweennessResult{Scores: make(map[entity.NodeKey]float64, len(all))}
	for _, n := range all {
		result.Scores[n] = 0
	}

	sources := all
	if nodeBudget > 0 && len(all) > nodeBudget {
		sources = all[:nodeBudget]
		result.Partial = true
	}

	for _, s := range sources {
		select {
		case <-ctx.Done():
			result.Partial = true
			return result
		default:
		}
		brandesSingleSource(snap, s, all, result.Scores)
	}

	return result
}

func allNodes(snap *graph.Snapshot) []entity.NodeKey {
	var out []entity.NodeKey
	for _, ks := range snap.Buckets {
		out = append(out, ks...)
	}
	return sortedKeys(out)
}

// brandesSingleSource runs one BFS phase of Brandes' algorithm from s,
// accumulating dependency-based betweenness contributions into scores.
func brandesSingleSource(snap *graph.Snapshot, s entity.NodeKey, all []entity.NodeKey, scores map[entity.NodeKey]float64) {
	sigma := map[entity.NodeKey]float64{s: 1}
	dist := map[entity.NodeKey]int{s: 0}
	predecessors := map[entity.NodeKey][]entity.NodeKey{}
	var stack []entity.NodeKey
	queue := []entity.NodeKey{s}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		stack = append(stack, v)

		for kind := range snap.Forward[v] {
			for _, w := range snap.Neighbors(v, kind) {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					predecessors[w] = append(predecessors[w], v)
				}
			}
		}
	}

	delta := map[entity.NodeKey]float64{}
	for i := len(stack) - 1; i >= 0; i-- {
		w := stack[i]
		for _, v := range predecessors[w] {
			if sigma[w] == 0 {
				continue
			}
			delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
		}
		if w != s {
			scores[w] += delta[w]
		}
	}
}
