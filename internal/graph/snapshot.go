// SPDX-License-Identifier: Apache-2.0

package graph

import "github.com/kraklabs/cie-core/internal/entity"

// Snapshot is a logically immutable view of the graph, cloned under the
// store's read lock so that a long-running algorithm never observes a
// mutation mid-traversal. It is cheap to build (a handful of map copies)
// relative to the traversal cost the Graph Algorithms layer pays on top of
// it, so a full clone is preferred here over a more intricate copy-on-write
// scheme; a generation counter on the snapshot lets callers detect whether
// the live store has moved on since the clone was taken.
type Snapshot struct {
	Generation uint64

	Nodes   map[entity.NodeKey]entity.Attrs
	Buckets map[entity.NodeType][]entity.NodeKey
	Forward map[entity.NodeKey]map[entity.EdgeKind]map[entity.NodeKey]struct{}
	Reverse map[entity.NodeKey]map[entity.EdgeKind]map[entity.NodeKey]struct{}
	Edges   map[edgeKeyPublic]entity.Edge
}

// edgeKeyPublic mirrors the package-private edgeKey so algorithm packages
// can key into Snapshot.Edges without reaching into graph internals.
type edgeKeyPublic struct {
	From entity.NodeKey
	To   entity.NodeKey
	Kind entity.EdgeKind
}

// Snapshot clones the current graph state for read-only use by algorithms.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Generation: s.generation,
		Nodes:      make(map[entity.NodeKey]entity.Attrs, len(s.nodes)),
		Buckets:    make(map[entity.NodeType][]entity.NodeKey, len(s.buckets)),
		Forward:    make(map[entity.NodeKey]map[entity.EdgeKind]map[entity.NodeKey]struct{}, len(s.forward)),
		Reverse:    make(map[entity.NodeKey]map[entity.EdgeKind]map[entity.NodeKey]struct{}, len(s.reverse)),
		Edges:      make(map[edgeKeyPublic]entity.Edge, len(s.edgeAttrs)),
	}

	for k, v := range s.nodes {
		snap.Nodes[k] = v.Clone()
	}
	for t, ks := range s.buckets {
		cp := make([]entity.NodeKey, len(ks))
		copy(cp, ks)
		snap.Buckets[t] = cp
	}
	snap.Forward = cloneAdjacency(s.forward)
	snap.Reverse = cloneAdjacency(s.reverse)
	for k, v := range s.edgeAttrs {
		snap.Edges[edgeKeyPublic(k)] = v
	}

	return snap
}

func cloneAdjacency(src map[entity.NodeKey]map[entity.EdgeKind]map[entity.NodeKey]struct{}) map[entity.NodeKey]map[entity.EdgeKind]map[entity.NodeKey]struct{} {
	dst := make(map[entity.NodeKey]map[entity.EdgeKind]map[entity.NodeKey]struct{}, len(src))
	for n, kinds := range src {
		dstKinds := make(map[entity.EdgeKind]map[entity.NodeKey]struct{}, len(kinds))
		for k, neighbors := range kinds {
			dstNeighbors := make(map[entity.NodeKey]struct{}, len(neighbors))
			for nb := range neighbors {
				dstNeighbors[nb] = struct{}{}
			}
			dstKinds[k] = dstNeighbors
		}
		dst[n] = dstKinds
	}
	return dst
}

// Neighbors returns the set of nodes reachable from n via an edge of kind
// (forward direction).
func (sn *Snapshot) Neighbors(n entity.NodeKey, kind entity.EdgeKind) []entity.NodeKey {
	kinds, ok := sn.Forward[n]
	if !ok {
		return nil
	}
	set, ok := kinds[kind]
	if !ok {
		return nil
	}
	out := make([]entity.NodeKey, 0, len(set))
	for nb := range set {
		out = append(out, nb)
	}
	return out
}

// Predecessors returns the set of nodes with an edge of kind pointing to n.
func (sn *Snapshot) Predecessors(n entity.NodeKey, kind entity.EdgeKind) []entity.NodeKey {
	kinds, ok := sn.Reverse[n]
	if !ok {
		return nil
	}
	set, ok := kinds[kind]
	if !ok {
		return nil
	}
	out := make([]entity.NodeKey, 0, len(set))
	for nb := range set {
		out = append(out, nb)
	}
	return out
}

// EdgeWeight returns the weight of edge (from, to, kind), or DefaultWeight
// if the edge is absent (callers that only reached here via Neighbors
// already know the edge exists).
func (sn *Snapshot) EdgeWeight(from, to entity.NodeKey, kind entity.EdgeKind) float64 {
	if e, ok := sn.Edges[edgeKeyPublic{From: from, To: to, Kind: kind}]; ok {
		return e.Weight
	}
	return entity.DefaultWeight
}
