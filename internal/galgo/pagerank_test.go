// SPDX-License-Identifier: Apache-2.0

package galgo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-core/internal/entity"
)

// TestS5_PageRankHub exercises a hub-and-spoke call graph: three leaves call
// into a single hub, so the hub's score must end up strictly greater than
// any leaf's, scores must sum to ~1, and the run must converge well within
// the default iteration budget.
func TestS5_PageRankHub(t *testing.T) {
	hub := fn("hub")
	a, b, c := fn("a"), fn("b"), fn("c")
	s := buildStore(t, []entity.NodeKey{hub, a, b, c}, []link{
		{a, hub, entity.EdgeCalls},
		{b, hub, entity.EdgeCalls},
		{c, hub, entity.EdgeCalls},
	})

	result := PageRank(context.Background(), s.Snapshot(), DefaultPageRankOptions())
	require.True(t, result.Converged)
	assert.False(t, result.Cancelled)

	var sum float64
	for _, v := range result.Scores {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	assert.Greater(t, result.Scores[hub], result.Scores[a])
	assert.Greater(t, result.Scores[hub], result.Scores[b])
	assert.Greater(t, result.Scores[hub], result.Scores[c])
}

func TestPageRank_EmptyGraph(t *testing.T) {
	s := buildStore(t, nil, nil)
	result := PageRank(context.Background(), s.Snapshot(), DefaultPageRankOptions())
	assert.Empty(t, result.Scores)
}

func TestPageRank_DanglingNodeRedistributesMass(t *testing.T) {
	// a calls b, b calls nothing (dangling): total mass must still sum to 1.
	a, b := fn("a"), fn("b")
	s := buildStore(t, []entity.NodeKey{a, b}, []link{{a, b, entity.EdgeCalls}})

	result := PageRank(context.Background(), s.Snapshot(), DefaultPageRankOptions())
	var sum float64
	for _, v := range result.Scores {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestPageRank_CancelledContextStopsEarly(t *testing.T) {
	a, b := fn("a"), fn("b")
	s := buildStore(t, []entity.NodeKey{a, b}, []link{{a, b, entity.EdgeCalls}, {b, a, entity.EdgeCalls}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := PageRank(ctx, s.Snapshot(), DefaultPageRankOptions())
	assert.True(t, result.Cancelled)
}
