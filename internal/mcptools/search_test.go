// SPDX-License-Identifier: Apache-2.0

package mcptools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemanticSearch_FindsIngestedFunction(t *testing.T) {
	deps := newTestDeps(t)
	// The deterministic embedder has no notion of similarity between
	// related-but-distinct text, so query with the exact fallback source
	// text ("module.name") used at ingest time to get a guaranteed-matching
	// vector rather than relying on semantic closeness.
	res, err := SemanticSearch(context.Background(), deps, SemanticSearchArgs{Query: "sample.Add", K: 5})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, "function")
}

func TestSemanticSearch_RequiresQuery(t *testing.T) {
	deps := newTestDeps(t)
	res, err := SemanticSearch(context.Background(), deps, SemanticSearchArgs{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHybridSearch_FindsIngestedFunction(t *testing.T) {
	deps := newTestDeps(t)
	res, err := HybridSearch(context.Background(), deps, HybridSearchArgs{Query: "helper", K: 5})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, "Hybrid search")
}

func TestHybridSearch_UnknownStrategyFallsBackToGeneral(t *testing.T) {
	deps := newTestDeps(t)
	res, err := HybridSearch(context.Background(), deps, HybridSearchArgs{Query: "helper", Strategy: "bogus"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "[general]")
}
