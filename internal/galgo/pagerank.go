// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package galgo implements the Graph Algorithms layer: PageRank, centrality
// measures, connected components, cycle detection, bounded path
// enumeration, and module coupling metrics. Every algorithm reads a
// graph.Snapshot and never mutates it.
package galgo

import (
	"context"
	"math"
	"sort"

	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/graph"
)

// PageRankOptions configures the iterative power method.
type PageRankOptions struct {
	Damping       float64
	MaxIterations int
	Tolerance     float64
}

// DefaultPageRankOptions returns the conventional defaults (d=0.85, 50 iterations,
// 1e-4 L1 tolerance).
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{Damping: 0.85, MaxIterations: 50, Tolerance: 1e-4}
}

// PageRankResult is the outcome of a PageRank computation.
type PageRankResult struct {
	Scores     map[entity.NodeKey]float64
	Iterations int
	Converged  bool
	Cancelled  bool
}

// PageRank runs the iterative power method over the call-graph projection
// (function nodes, calls edges). Dangling nodes redistribute their mass
// uniformly across all function nodes.
func PageRank(ctx context.Context, snap *graph.Snapshot, opts PageRankOptions) *PageRankResult {
	if opts.Damping <= 0 {
		opts.Damping = 0.85
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 50
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-4
	}

	nodes := snap.Buckets[entity.NodeFunction]
	n := len(nodes)
	result := &PageRankResult{Scores: make(map[entity.NodeKey]float64, n)}
	if n == 0 {
		return result
	}

	index := make(map[entity.NodeKey]int, n)
	for i, k := range nodes {
		index[k] = i
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}

	outDegree := make([]int, n)
	for i, k := range nodes {
		outDegree[i] = len(snap.Neighbors(k, entity.EdgeCalls))
	}

	base := (1 - opts.Damping) / float64(n)

	iter := 0
	for ; iter < opts.MaxIterations; iter++ {
		select {
		case <-ctx.Done():
			result.Cancelled = true
			result.Iterations = iter
			fillScores(result.Scores, nodes, scores)
			return result
		default:
		}

		next := make([]float64, n)

		// Dangling mass: nodes with no outgoing calls redistribute their
		// score uniformly across all nodes rather than vanishing.
		var danglingMass float64
		for i, deg := range outDegree {
			if deg == 0 {
				danglingMass += scores[i]
			}
		}
		danglingShare := opts.Damping * danglingMass / float64(n)

		for i := range next {
			next[i] = base + danglingShare
		}

		for i, k := range nodes {
			if outDegree[i] == 0 {
				continue
			}
			share := opts.Damping * scores[i] / float64(outDegree[i])
			for _, neighbor := range snap.Neighbors(k, entity.EdgeCalls) {
				j, ok := index[neighbor]
				if !ok {
					continue
				}
				next[j] += share
			}
		}

		var l1 float64
		for i := range scores {
			l1 += math.Abs(next[i] - scores[i])
		}
		scores = next

		if l1 < opts.Tolerance {
			result.Converged = true
			iter++
			break
		}
	}

	result.Iterations = iter
	fillScores(result.Scores, nodes, scores)
	return result
}

func fillScores(out map[entity.NodeKey]float64, nodes []entity.NodeKey, scores []float64) {
	for i, k := range nodes {
		out[k] = scores[i]
	}
}

// sortedKeys returns keys in deterministic (type, id) order, used by every
// algorithm that needs a stable iteration order for reproducible output.
func sortedKeys(keys []entity.NodeKey) []entity.NodeKey {
	out := make([]entity.NodeKey, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].ID < out[j].ID
	})
	return out
}
