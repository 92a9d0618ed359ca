// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"

	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/graph"
)

// lexicalDoc is what gets indexed per node: the fields a query token can
// match against.
type lexicalDoc struct {
	Name string `json:"name"`
	Doc  string `json:"doc"`
	File string `json:"file"`
}

// LexicalIndex is an in-memory bleve full-text index over node name,
// docstring, and file path, rebuilt from a graph.Snapshot on demand rather
// than maintained incrementally: the teacher's candidate sets are always
// built fresh per search call, and an in-memory index is cheap to discard.
type LexicalIndex struct {
	idx  bleve.Index
	keys map[string]entity.NodeKey
}

// BuildLexicalIndex indexes every node in nodes; snap is not read.
func BuildLexicalIndex(snap *graph.Snapshot, nodes []entity.Node) (*LexicalIndex, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("create lexical index: %w", err)
	}

	li := &LexicalIndex{idx: idx, keys: make(map[string]entity.NodeKey, len(nodes))}
	batch := idx.NewBatch()
	for _, n := range nodes {
		docID := n.Key.String()
		li.keys[docID] = n.Key
		doc := lexicalDoc{Name: lastSegment(n.Key.ID), Doc: n.Attrs.Doc, File: n.Attrs.File}
		if err := batch.Index(docID, doc); err != nil {
			return nil, fmt.Errorf("index node %s: %w", docID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("apply lexical batch: %w", err)
	}
	return li, nil
}

// Search returns up to limit node keys matching any of terms, ranked by
// bleve's relevance score, ties broken by node key so repeat runs over an
// unchanged index return byte-identical ordering.
func (li *LexicalIndex) Search(terms []string, limit int) ([]entity.NodeKey, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	q := bleve.NewDisjunctionQuery()
	for _, t := range terms {
		q.AddQuery(bleve.NewMatchQuery(t))
	}
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	res, err := li.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	type scored struct {
		key   entity.NodeKey
		score float64
	}
	hits := make([]scored, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if key, ok := li.keys[hit.ID]; ok {
			hits = append(hits, scored{key: key, score: hit.Score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].key.String() < hits[j].key.String()
	})
	out := make([]entity.NodeKey, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.key)
	}
	return out, nil
}

// Close releases the underlying bleve index resources.
func (li *LexicalIndex) Close() error {
	return li.idx.Close()
}

func lastSegment(id string) string {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[i+1:]
	}
	return id
}
