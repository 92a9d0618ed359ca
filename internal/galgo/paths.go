// SPDX-License-Identifier: Apache-2.0

package galgo

import (
	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/graph"
)

// PathOptions bounds a bounded path enumeration.
type PathOptions struct {
	MaxDepth int
	MaxPaths int
	Kinds    []entity.EdgeKind
}

// PathResult carries the enumerated paths plus a soft-warning flag raised
// when a node along the walk has enough outgoing edges that the search is
// likely to have missed paths even within MaxDepth/MaxPaths.
type PathResult struct {
	Paths      [][]entity.NodeKey
	Truncated  bool
	WideFanOut bool
}

const fanOutWarnThreshold = 64

// FindPaths enumerates simple paths from src to dst up to MaxDepth hops,
// stopping once MaxPaths have been found. When Kinds is empty, every edge
// kind is walked.
func FindPaths(snap *graph.Snapshot, src, dst entity.NodeKey, opts PathOptions) *PathResult {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 6
	}
	if opts.MaxPaths <= 0 {
		opts.MaxPaths = 50
	}

	result := &PathResult{}
	visited := map[entity.NodeKey]bool{src: true}
	path := []entity.NodeKey{src}

	var walk func(cur entity.NodeKey)
	walk = func(cur entity.NodeKey) {
		if len(result.Paths) >= opts.MaxPaths {
			result.Truncated = true
			return
		}
		if cur == dst && len(path) > 1 {
			result.Paths = append(result.Paths, append([]entity.NodeKey(nil), path...))
			return
		}
		if len(path)-1 >= opts.MaxDepth {
			return
		}

		neighbors := neighborsAcrossKinds(snap, cur, opts.Kinds)
		if len(neighbors) > fanOutWarnThreshold {
			result.WideFanOut = true
		}

		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			if len(result.Paths) >= opts.MaxPaths {
				result.Truncated = true
				return
			}
			visited[nb] = true
			path = append(path, nb)
			walk(nb)
			path = path[:len(path)-1]
			delete(visited, nb)
		}
	}

	walk(src)
	return result
}

func neighborsAcrossKinds(snap *graph.Snapshot, cur entity.NodeKey, kinds []entity.EdgeKind) []entity.NodeKey {
	if len(kinds) == 0 {
		var all []entity.NodeKey
		for kind := range snap.Forward[cur] {
			all = append(all, snap.Neighbors(cur, kind)...)
		}
		return sortedKeys(all)
	}
	var out []entity.NodeKey
	for _, k := range kinds {
		out = append(out, snap.Neighbors(cur, k)...)
	}
	return sortedKeys(out)
}
