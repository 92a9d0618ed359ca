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

// Package vector implements the Embedding & Vector Index: one embedding per
// entity, top-K cosine-similarity search above a threshold, normalized
// storage, and a single shared model dimensionality.
//
// The index performs a linear scan with an unrolled dot product; the
// contract here is correctness and deterministic ordering, not a specific
// ANN index structure. An exact scan also makes tie-break determinism and
// threshold monotonicity trivial to guarantee — an approximate index such
// as HNSW cannot promise either.
package vector

import (
	"hash/fnv"
	"math"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kraklabs/cie-core/internal/cieerrors"
	"github.com/kraklabs/cie-core/internal/entity"
)

// Index is the concurrency-safe Vector Index.
type Index struct {
	mu      sync.RWMutex
	dims    int
	modelID string

	vectors map[entity.NodeKey][]float32
	source  map[entity.NodeKey]string

	// generation increments on every mutation so cached search results from
	// before a mutation are never served after it (cache keys embed it).
	generation uint64

	// searchCache memoizes the most recent query-vector search results by a
	// cheap hash of the query; bounds memory for repeated identical searches
	// (e.g. retrieval re-issuing the same expanded query across intents).
	searchCache *lru.Cache[searchCacheKey, []Result]
}

type searchCacheKey struct {
	hash      uint64
	k         int
	threshold float32
	typeFilt  entity.NodeType
	gen       uint64
}

// New constructs an empty Index bound to a model of the given dimensionality
// and id. Every subsequent Upsert must match dims or is rejected.
func New(dims int, modelID string) *Index {
	cache, _ := lru.New[searchCacheKey, []Result](256)
	return &Index{
		dims:        dims,
		modelID:     modelID,
		vectors:     make(map[entity.NodeKey][]float32),
		source:      make(map[entity.NodeKey]string),
		searchCache: cache,
	}
}

// Dims reports the vector dimensionality this index is bound to.
func (idx *Index) Dims() int { return idx.dims }

// ModelID reports the embedding model identity this index is bound to.
func (idx *Index) ModelID() string { return idx.modelID }

// Upsert stores (or replaces) the embedding for key, L2-normalizing it
// first. Vectors of the wrong dimensionality are rejected.
func (idx *Index) Upsert(key entity.NodeKey, vec []float32, sourceText string) error {
	if len(vec) != idx.dims {
		return cieerrors.New(cieerrors.InvalidArgument, "vector dimensionality mismatch",
			map[string]any{"expected": idx.dims, "got": len(vec)})
	}

	normalized := normalize(vec)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.vectors[key] = normalized
	idx.source[key] = sourceText
	idx.generation++
	return nil
}

// Remove deletes the embedding for key, if present.
func (idx *Index) Remove(key entity.NodeKey) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.vectors, key)
	delete(idx.source, key)
	idx.generation++
}

// Get returns the stored vector and source text for key.
func (idx *Index) Get(key entity.NodeKey) (vec []float32, sourceText string, ok bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	v, ok := idx.vectors[key]
	if !ok {
		return nil, "", false
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, idx.source[key], true
}

// Size reports the number of embeddings stored.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Entries iterates every stored (key, vector, source text) triple in a
// stable key order, for callers that persist the index (see
// internal/embedcache.Cache.Save's entries parameter).
func (idx *Index) Entries(yield func(entity.NodeKey, []float32, string) bool) {
	idx.mu.RLock()
	keys := make([]entity.NodeKey, 0, len(idx.vectors))
	for k := range idx.vectors {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	type snap struct {
		vec []float32
		src string
	}
	snapped := make(map[entity.NodeKey]snap, len(keys))
	for _, k := range keys {
		snapped[k] = snap{idx.vectors[k], idx.source[k]}
	}
	idx.mu.RUnlock()

	for _, k := range keys {
		s := snapped[k]
		if !yield(k, s.vec, s.src) {
			return
		}
	}
}

// Result is one entry in a Search response: the candidate key and its
// cosine similarity to the query vector.
type Result struct {
	Key   entity.NodeKey
	Score float32
}

// Search returns the top-k entries (optionally filtered to typeFilter) with
// cosine similarity >= threshold, descending by score, ties broken by
// (node_type, node_id) lexicographic order for byte-identical repeat runs.
func (idx *Index) Search(query []float32, k int, threshold float32, typeFilter entity.NodeType) ([]Result, error) {
	if len(query) != idx.dims {
		return nil, cieerrors.New(cieerrors.InvalidArgument, "query dimensionality mismatch",
			map[string]any{"expected": idx.dims, "got": len(query)})
	}
	qn := normalize(query)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	cacheKey := searchCacheKey{hash: hashVector(qn), k: k, threshold: threshold, typeFilt: typeFilter, gen: idx.generation}
	if cached, ok := idx.searchCache.Get(cacheKey); ok {
		out := make([]Result, len(cached))
		copy(out, cached)
		return out, nil
	}

	results := make([]Result, 0, len(idx.vectors))
	for key, vec := range idx.vectors {
		if typeFilter != "" && key.Type != typeFilter {
			continue
		}
		score := dot(qn, vec)
		if score < threshold {
			continue
		}
		results = append(results, Result{Key: key, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Key.Type != results[j].Key.Type {
			return results[i].Key.Type < results[j].Key.Type
		}
		return results[i].Key.ID < results[j].Key.ID
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	cached := make([]Result, len(results))
	copy(cached, results)
	idx.searchCache.Add(cacheKey, cached)
	return results, nil
}

func hashVector(v []float32) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 4)
	for _, x := range v {
		bits := math.Float32bits(x)
		buf[0] = byte(bits)
		buf[1] = byte(bits >> 8)
		buf[2] = byte(bits >> 16)
		buf[3] = byte(bits >> 24)
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for ; i+4 <= n; i += 4 {
		sum += a[i]*b[i] + a[i+1]*b[i+1] + a[i+2]*b[i+2] + a[i+3]*b[i+3]
	}
	for ; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
