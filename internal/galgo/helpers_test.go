// SPDX-License-Identifier: Apache-2.0

package galgo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/graph"
)

func fn(id string) entity.NodeKey  { return entity.NodeKey{Type: entity.NodeFunction, ID: id} }
func mod(id string) entity.NodeKey { return entity.NodeKey{Type: entity.NodeModule, ID: id} }

// link is one (from, to, kind) edge to add via addEdges.
type link struct {
	from, to entity.NodeKey
	kind     entity.EdgeKind
}

func buildStore(t *testing.T, nodes []entity.NodeKey, links []link) *graph.Store {
	t.Helper()
	s := graph.New()
	for _, n := range nodes {
		require.NoError(t, s.UpsertNode(n.Type, n.ID, entity.Attrs{}))
	}
	for _, l := range links {
		require.NoError(t, s.AddEdge(l.from, l.to, l.kind, entity.DefaultWeight, nil))
	}
	return s
}
