// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-core/internal/cieerrors"
	"github.com/kraklabs/cie-core/internal/entity"
)

// TestS1_RoundTripStore exercises a round trip over module A/B, functions,
// one calls edge, cascade-on-remove.
func TestS1_RoundTripStore(t *testing.T) {
	s := New()

	require.NoError(t, s.UpsertNode(entity.NodeModule, "A", entity.Attrs{}))
	require.NoError(t, s.UpsertNode(entity.NodeModule, "B", entity.Attrs{}))
	require.NoError(t, s.UpsertNode(entity.NodeFunction, "A.foo/0", entity.Attrs{}))
	require.NoError(t, s.UpsertNode(entity.NodeFunction, "B.bar/1", entity.Attrs{}))

	foo := entity.NodeKey{Type: entity.NodeFunction, ID: "A.foo/0"}
	bar := entity.NodeKey{Type: entity.NodeFunction, ID: "B.bar/1"}

	require.NoError(t, s.AddEdge(foo, bar, entity.EdgeCalls, 0, nil))

	out := s.Outgoing(foo, entity.EdgeCalls)
	require.Len(t, out, 1)
	assert.Equal(t, bar, out[0].To)

	require.NoError(t, s.RemoveNode(entity.NodeModule, "A"))
	// Removing the module does not itself remove the function (spec ties
	// cascade to file removal, not module removal) — but removing the
	// function node does cascade its edges.
	require.NoError(t, s.RemoveNode(entity.NodeFunction, "A.foo/0"))

	assert.Empty(t, s.Outgoing(foo, entity.EdgeCalls))
	assert.Empty(t, s.Incoming(bar, entity.EdgeCalls))
	assert.Empty(t, s.ListEdges(entity.EdgeCalls, 0))
}

// TestNodeIdentityStability exercises testable property 1: repeated upserts
// of the same key replace attrs and keep a single node.
func TestNodeIdentityStability(t *testing.T) {
	s := New()
	key := entity.NodeKey{Type: entity.NodeFunction, ID: "m.f/0"}

	require.NoError(t, s.UpsertNode(key.Type, key.ID, entity.Attrs{Doc: "v1"}))
	require.NoError(t, s.UpsertNode(key.Type, key.ID, entity.Attrs{Doc: "v2"}))
	require.NoError(t, s.UpsertNode(key.Type, key.ID, entity.Attrs{Doc: "v3"}))

	attrs, ok := s.FindNode(key.Type, key.ID)
	require.True(t, ok)
	assert.Equal(t, "v3", attrs.Doc)
	assert.Equal(t, 1, s.CountNodesByType(entity.NodeFunction))
}

// TestEdgeCascade exercises testable property 2.
func TestEdgeCascade(t *testing.T) {
	s := New()
	require.NoError(t, s.UpsertNode(entity.NodeFunction, "a", entity.Attrs{}))
	require.NoError(t, s.UpsertNode(entity.NodeFunction, "b", entity.Attrs{}))
	require.NoError(t, s.UpsertNode(entity.NodeFunction, "c", entity.Attrs{}))

	a := entity.NodeKey{Type: entity.NodeFunction, ID: "a"}
	b := entity.NodeKey{Type: entity.NodeFunction, ID: "b"}
	c := entity.NodeKey{Type: entity.NodeFunction, ID: "c"}

	require.NoError(t, s.AddEdge(a, b, entity.EdgeCalls, 0, nil))
	require.NoError(t, s.AddEdge(c, a, entity.EdgeCalls, 0, nil))

	require.NoError(t, s.RemoveNode(entity.NodeFunction, "a"))

	for _, kind := range []entity.EdgeKind{entity.EdgeCalls, entity.EdgeImports, entity.EdgeDefines} {
		assert.Empty(t, s.Outgoing(a, kind))
		assert.Empty(t, s.Incoming(a, kind))
	}
	for _, e := range s.ListEdges("", 0) {
		assert.NotEqual(t, a, e.From)
		assert.NotEqual(t, a, e.To)
	}
}

// TestEdgeCascade_SharedTarget exercises the reverse-index cascade when
// two distinct sources point at the same target via the same kind:
// removing one source must not disturb the other's reverse-index entry.
func TestEdgeCascade_SharedTarget(t *testing.T) {
	s := New()
	require.NoError(t, s.UpsertNode(entity.NodeFunction, "a", entity.Attrs{}))
	require.NoError(t, s.UpsertNode(entity.NodeFunction, "b", entity.Attrs{}))
	require.NoError(t, s.UpsertNode(entity.NodeFunction, "c", entity.Attrs{}))

	a := entity.NodeKey{Type: entity.NodeFunction, ID: "a"}
	b := entity.NodeKey{Type: entity.NodeFunction, ID: "b"}
	c := entity.NodeKey{Type: entity.NodeFunction, ID: "c"}

	require.NoError(t, s.AddEdge(a, c, entity.EdgeCalls, 0, nil))
	require.NoError(t, s.AddEdge(b, c, entity.EdgeCalls, 0, nil))

	require.NoError(t, s.RemoveNode(entity.NodeFunction, "a"))

	incoming := s.Incoming(c, entity.EdgeCalls)
	require.Len(t, incoming, 1)
	assert.Equal(t, b, incoming[0].From)

	snap := s.Snapshot()
	preds := snap.Predecessors(c, entity.EdgeCalls)
	require.Len(t, preds, 1)
	assert.Equal(t, b, preds[0])

	out := s.Outgoing(b, entity.EdgeCalls)
	require.Len(t, out, 1)
	assert.Equal(t, c, out[0].To)
}

func TestAddEdge_MissingEndpoint(t *testing.T) {
	s := New()
	require.NoError(t, s.UpsertNode(entity.NodeFunction, "a", entity.Attrs{}))
	a := entity.NodeKey{Type: entity.NodeFunction, ID: "a"}
	ghost := entity.NodeKey{Type: entity.NodeFunction, ID: "ghost"}

	err := s.AddEdge(a, ghost, entity.EdgeCalls, 0, nil)
	require.Error(t, err)
	assert.Equal(t, cieerrors.MissingEndpoint, cieerrors.KindOf(err))
}

func TestAddEdge_UpsertReplacesAttrs(t *testing.T) {
	s := New()
	require.NoError(t, s.UpsertNode(entity.NodeFunction, "a", entity.Attrs{}))
	require.NoError(t, s.UpsertNode(entity.NodeFunction, "b", entity.Attrs{}))
	a := entity.NodeKey{Type: entity.NodeFunction, ID: "a"}
	b := entity.NodeKey{Type: entity.NodeFunction, ID: "b"}

	require.NoError(t, s.AddEdge(a, b, entity.EdgeCalls, 2.0, map[string]string{"v": "1"}))
	require.NoError(t, s.AddEdge(a, b, entity.EdgeCalls, 5.0, map[string]string{"v": "2"}))

	edges := s.Outgoing(a, entity.EdgeCalls)
	require.Len(t, edges, 1)
	assert.Equal(t, 5.0, edges[0].Weight)
	assert.Equal(t, "2", edges[0].Attrs["v"])
}

func TestSnapshot_Isolation(t *testing.T) {
	s := New()
	require.NoError(t, s.UpsertNode(entity.NodeFunction, "a", entity.Attrs{}))
	require.NoError(t, s.UpsertNode(entity.NodeFunction, "b", entity.Attrs{}))
	a := entity.NodeKey{Type: entity.NodeFunction, ID: "a"}
	b := entity.NodeKey{Type: entity.NodeFunction, ID: "b"}
	require.NoError(t, s.AddEdge(a, b, entity.EdgeCalls, 0, nil))

	snap := s.Snapshot()

	require.NoError(t, s.RemoveNode(entity.NodeFunction, "b"))

	// The snapshot must still see the edge even though the live store does not.
	assert.Len(t, snap.Neighbors(a, entity.EdgeCalls), 1)
	assert.Empty(t, s.Outgoing(a, entity.EdgeCalls))
}

func TestListNodes_TypeFilterAndLimit(t *testing.T) {
	s := New()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.UpsertNode(entity.NodeFunction, id, entity.Attrs{}))
	}
	require.NoError(t, s.UpsertNode(entity.NodeModule, "m", entity.Attrs{}))

	all := s.ListNodes("", 0)
	assert.Len(t, all, 4)

	funcs := s.ListNodes(entity.NodeFunction, 2)
	assert.Len(t, funcs, 2)
}
