// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-core/internal/embedmodel"
	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/graph"
	"github.com/kraklabs/cie-core/internal/vector"
)

// TestS3_HybridSearch_EmailValidation exercises a corpus where a query must
// surface every function whose docstring mentions both query tokens
// regardless of its position in the call graph, and where a node whose
// name matches the query outranks one that doesn't at equal fused score.
func TestS3_HybridSearch_EmailValidation(t *testing.T) {
	store := graph.New()
	require.NoError(t, store.UpsertNode(entity.NodeFunction, "app.validate_email/1", entity.Attrs{
		Doc: "performs email validation against RFC 5322",
	}))
	require.NoError(t, store.UpsertNode(entity.NodeFunction, "app.Validator/1", entity.Attrs{
		Doc: "performs email validation against RFC 5322",
	}))
	require.NoError(t, store.UpsertNode(entity.NodeFunction, "app.unrelated/0", entity.Attrs{
		Doc: "computes a checksum",
	}))

	snap := store.Snapshot()
	nodes := store.ListNodes(entity.NodeFunction, 0)
	lex, err := BuildLexicalIndex(snap, nodes)
	require.NoError(t, err)
	defer lex.Close()

	model := embedmodel.NewDeterministicModel(16)
	idx := vector.New(16, model.ID())
	ctx := context.Background()
	for _, n := range nodes {
		vec, err := model.Embed(ctx, n.Attrs.Doc)
		require.NoError(t, err)
		require.NoError(t, idx.Upsert(n.Key, vec, n.Attrs.Doc))
	}

	ranked, err := Search(ctx, snap, idx, lex, model, "email validation", Options{K: 10, DenseThreshold: -1})
	require.NoError(t, err)

	found := make(map[string]int)
	for i, r := range ranked {
		found[r.Key.ID] = i
	}
	_, emailOK := found["app.validate_email/1"]
	_, validatorOK := found["app.Validator/1"]
	require.True(t, emailOK, "validate_email must be in the top results")
	require.True(t, validatorOK, "Validator must be in the top results")
	require.Less(t, found["app.validate_email/1"], found["app.Validator/1"],
		"name match must break the docstring-score tie in favor of validate_email")
}

// TestExpandWithNeighbors_Deterministic exercises ordering stability: a
// hit with several same-kind neighbors must expand to the same order
// every call, not the randomized order Go map iteration would otherwise
// produce.
func TestExpandWithNeighbors_Deterministic(t *testing.T) {
	store := graph.New()
	hub := entity.NodeKey{Type: entity.NodeFunction, ID: "app.hub/0"}
	require.NoError(t, store.UpsertNode(hub.Type, hub.ID, entity.Attrs{}))
	neighborIDs := []string{"app.zeta/0", "app.mid/0", "app.alpha/0", "app.kappa/0"}
	for _, id := range neighborIDs {
		require.NoError(t, store.UpsertNode(entity.NodeFunction, id, entity.Attrs{}))
		require.NoError(t, store.AddEdge(hub, entity.NodeKey{Type: entity.NodeFunction, ID: id}, entity.EdgeCalls, 0, nil))
	}
	snap := store.Snapshot()

	var first []entity.NodeKey
	for i := 0; i < 20; i++ {
		expanded := expandWithNeighbors(snap, []entity.NodeKey{hub})
		if i == 0 {
			first = expanded
			continue
		}
		require.Equal(t, first, expanded, "expansion order must be stable across repeated calls")
	}
}
