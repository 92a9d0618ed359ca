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

// Package graph implements the Knowledge Graph Store: an in-memory typed
// multigraph with per-type secondary indexes, O(1) node lookup, O(degree)
// neighborhood traversal, many concurrent readers and serialized writes.
//
// The store owns node and edge storage exclusively.
// Algorithms and retrieval read it through Snapshot, which hands back a
// generation-stamped, independently-mutable adjacency clone so a
// long-running traversal is never disturbed by a concurrent writer.
package graph

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/kraklabs/cie-core/internal/cieerrors"
	"github.com/kraklabs/cie-core/internal/entity"
)

type edgeKey struct {
	From entity.NodeKey
	To   entity.NodeKey
	Kind entity.EdgeKind
}

// Store is the concurrency-safe Knowledge Graph Store. Zero value is not
// usable; construct with New.
type Store struct {
	mu sync.RWMutex

	nodes   map[entity.NodeKey]entity.Attrs
	buckets map[entity.NodeType][]entity.NodeKey // ordered for stable iteration

	// forward[n][kind] = set of neighbors n points to via kind
	forward map[entity.NodeKey]map[entity.EdgeKind]map[entity.NodeKey]struct{}
	// reverse[n][kind] = set of sources pointing to n via kind
	reverse map[entity.NodeKey]map[entity.EdgeKind]map[entity.NodeKey]struct{}

	edgeAttrs map[edgeKey]entity.Edge

	generation uint64
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		nodes:     make(map[entity.NodeKey]entity.Attrs),
		buckets:   make(map[entity.NodeType][]entity.NodeKey),
		forward:   make(map[entity.NodeKey]map[entity.EdgeKind]map[entity.NodeKey]struct{}),
		reverse:   make(map[entity.NodeKey]map[entity.EdgeKind]map[entity.NodeKey]struct{}),
		edgeAttrs: make(map[edgeKey]entity.Edge),
	}
}

// UpsertNode creates or replaces the attributes of (typ, id). Idempotent;
// preserves identity; has no effect on incident edges.
func (s *Store) UpsertNode(typ entity.NodeType, id string, attrs entity.Attrs) error {
	if !typ.Valid() {
		return cieerrors.New(cieerrors.InvalidArgument, "unknown node type", map[string]any{"type": string(typ)})
	}
	if id == "" {
		return cieerrors.New(cieerrors.InvalidArgument, "empty node id", nil)
	}

	key := entity.NodeKey{Type: typ, ID: id}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[key]; !exists {
		s.buckets[typ] = append(s.buckets[typ], key)
	}
	s.nodes[key] = attrs.Clone()
	s.generation++
	return nil
}

// RemoveNode deletes a node and cascades to every incident edge (both
// directions, all kinds) atomically. No-op if the node is absent.
func (s *Store) RemoveNode(typ entity.NodeType, id string) error {
	key := entity.NodeKey{Type: typ, ID: id}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[key]; !exists {
		return nil
	}

	delete(s.nodes, key)
	s.removeFromBucket(typ, key)

	// Cascade: remove every edge where key is an endpoint, in either
	// direction, regardless of kind.
	for kind, neighbors := range s.forward[key] {
		for to := range neighbors {
			delete(s.reverse[to][kind], key)
			delete(s.edgeAttrs, edgeKey{From: key, To: to, Kind: kind})
		}
	}
	delete(s.forward, key)

	for kind, sources := range s.reverse[key] {
		for from := range sources {
			if m, ok := s.forward[from][kind]; ok {
				delete(m, key)
			}
			delete(s.edgeAttrs, edgeKey{From: from, To: key, Kind: kind})
		}
	}
	delete(s.reverse, key)

	s.generation++
	return nil
}

func (s *Store) removeFromBucket(typ entity.NodeType, key entity.NodeKey) {
	bucket := s.buckets[typ]
	for i, k := range bucket {
		if k == key {
			s.buckets[typ] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}

// FindNode returns the attributes of (typ, id) and whether it exists.
func (s *Store) FindNode(typ entity.NodeType, id string) (entity.Attrs, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attrs, ok := s.nodes[entity.NodeKey{Type: typ, ID: id}]
	if !ok {
		return entity.Attrs{}, false
	}
	return attrs.Clone(), true
}

// ListNodes returns up to limit nodes of the given type, in stable
// insertion order. If typ is "", all buckets are iterated in a fixed type
// order. limit <= 0 means unbounded.
func (s *Store) ListNodes(typ entity.NodeType, limit int) []entity.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var types []entity.NodeType
	if typ != "" {
		types = []entity.NodeType{typ}
	} else {
		types = allNodeTypesSorted()
	}

	var out []entity.Node
	for _, t := range types {
		for _, key := range s.buckets[t] {
			if limit > 0 && len(out) >= limit {
				return out
			}
			out = append(out, entity.Node{Key: key, Attrs: s.nodes[key].Clone()})
		}
	}
	return out
}

func allNodeTypesSorted() []entity.NodeType {
	return []entity.NodeType{
		entity.NodeModule, entity.NodeFunction, entity.NodeType_,
		entity.NodeMacro, entity.NodeVariable, entity.NodeFile,
	}
}

// CountNodesByType returns the number of nodes of the given type.
func (s *Store) CountNodesByType(typ entity.NodeType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buckets[typ])
}

// AddEdge inserts or upserts an edge by (from, to, kind). Both endpoints
// must already exist or the insert is rejected with MissingEndpoint.
func (s *Store) AddEdge(from, to entity.NodeKey, kind entity.EdgeKind, weight float64, attrs map[string]string) error {
	if !kind.Valid() {
		return cieerrors.New(cieerrors.InvalidArgument, "unknown edge kind", map[string]any{"kind": string(kind)})
	}
	if weight < 0 {
		return cieerrors.New(cieerrors.InvalidArgument, "negative edge weight", map[string]any{"weight": weight})
	}
	if weight == 0 {
		weight = entity.DefaultWeight
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[from]; !ok {
		return cieerrors.New(cieerrors.MissingEndpoint, "edge source does not exist", map[string]any{"from": from.String()})
	}
	if _, ok := s.nodes[to]; !ok {
		return cieerrors.New(cieerrors.MissingEndpoint, "edge target does not exist", map[string]any{"to": to.String()})
	}

	s.link(s.forward, from, kind, to)
	s.link(s.reverse, to, kind, from)

	ek := edgeKey{From: from, To: to, Kind: kind}
	s.edgeAttrs[ek] = entity.Edge{From: from, To: to, Kind: kind, Weight: weight, Attrs: cloneStringMap(attrs)}

	s.generation++
	return nil
}

func (s *Store) link(idx map[entity.NodeKey]map[entity.EdgeKind]map[entity.NodeKey]struct{}, n entity.NodeKey, kind entity.EdgeKind, other entity.NodeKey) {
	if idx[n] == nil {
		idx[n] = make(map[entity.EdgeKind]map[entity.NodeKey]struct{})
	}
	if idx[n][kind] == nil {
		idx[n][kind] = make(map[entity.NodeKey]struct{})
	}
	idx[n][kind][other] = struct{}{}
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Outgoing returns edges leaving node, optionally filtered to one kind ("").
func (s *Store) Outgoing(node entity.NodeKey, kind entity.EdgeKind) []entity.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.forward, node, kind, true)
}

// Incoming returns edges arriving at node, optionally filtered to one kind.
func (s *Store) Incoming(node entity.NodeKey, kind entity.EdgeKind) []entity.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.reverse, node, kind, false)
}

func (s *Store) collect(idx map[entity.NodeKey]map[entity.EdgeKind]map[entity.NodeKey]struct{}, node entity.NodeKey, kind entity.EdgeKind, forwardDir bool) []entity.Edge {
	kinds := idx[node]
	var out []entity.Edge
	emit := func(k entity.EdgeKind, other entity.NodeKey) {
		var ek edgeKey
		if forwardDir {
			ek = edgeKey{From: node, To: other, Kind: k}
		} else {
			ek = edgeKey{From: other, To: node, Kind: k}
		}
		if e, ok := s.edgeAttrs[ek]; ok {
			out = append(out, e)
		}
	}
	if kind != "" {
		for other := range kinds[kind] {
			emit(kind, other)
		}
		return out
	}
	for k, others := range kinds {
		for other := range others {
			emit(k, other)
		}
	}
	return out
}

// ListEdges returns up to limit edges, optionally filtered to one kind.
func (s *Store) ListEdges(kind entity.EdgeKind, limit int) []entity.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]edgeKey, 0, len(s.edgeAttrs))
	for k := range s.edgeAttrs {
		if kind != "" && k.Kind != kind {
			continue
		}
		keys = append(keys, k)
	}
	// Deterministic ordering for snapshot-style callers and tests.
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].From != keys[j].From {
			return keys[i].From.String() < keys[j].From.String()
		}
		if keys[i].To != keys[j].To {
			return keys[i].To.String() < keys[j].To.String()
		}
		return keys[i].Kind < keys[j].Kind
	})

	var out []entity.Edge
	for _, k := range keys {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, s.edgeAttrs[k])
	}
	return out
}

// exportDoc is the on-disk shape of a Store snapshot, mirroring
// filetracker's Export/Import convention of one flat JSON document rather
// than a binary format, so project data stays inspectable on disk.
type exportDoc struct {
	Nodes []entity.Node `json:"nodes"`
	Edges []entity.Edge `json:"edges"`
}

// Export serializes every node and edge to JSON, for persisting a project's
// graph across CLI invocations.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := exportDoc{}
	for _, typ := range allNodeTypesSorted() {
		for _, key := range s.buckets[typ] {
			doc.Nodes = append(doc.Nodes, entity.Node{Key: key, Attrs: s.nodes[key].Clone()})
		}
	}
	keys := make([]edgeKey, 0, len(s.edgeAttrs))
	for k := range s.edgeAttrs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].From != keys[j].From {
			return keys[i].From.String() < keys[j].From.String()
		}
		if keys[i].To != keys[j].To {
			return keys[i].To.String() < keys[j].To.String()
		}
		return keys[i].Kind < keys[j].Kind
	})
	for _, k := range keys {
		doc.Edges = append(doc.Edges, s.edgeAttrs[k])
	}
	return json.Marshal(doc)
}

// Import replaces the store's contents with a previously Exported document.
func (s *Store) Import(blob []byte) error {
	var doc exportDoc
	if err := json.Unmarshal(blob, &doc); err != nil {
		return cieerrors.Wrap(cieerrors.Corrupted, "decode graph snapshot", err, nil)
	}

	s.Clear()
	for _, n := range doc.Nodes {
		if err := s.UpsertNode(n.Key.Type, n.Key.ID, n.Attrs); err != nil {
			return err
		}
	}
	for _, e := range doc.Edges {
		if err := s.AddEdge(e.From, e.To, e.Kind, e.Weight, e.Attrs); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every node and edge from the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = make(map[entity.NodeKey]entity.Attrs)
	s.buckets = make(map[entity.NodeType][]entity.NodeKey)
	s.forward = make(map[entity.NodeKey]map[entity.EdgeKind]map[entity.NodeKey]struct{})
	s.reverse = make(map[entity.NodeKey]map[entity.EdgeKind]map[entity.NodeKey]struct{})
	s.edgeAttrs = make(map[edgeKey]entity.Edge)
	s.generation++
}
