// SPDX-License-Identifier: Apache-2.0

package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-core/internal/entity"
)

func key(id string) entity.NodeKey {
	return entity.NodeKey{Type: entity.NodeFunction, ID: id}
}

func TestUpsert_DimMismatchRejected(t *testing.T) {
	idx := New(4, "m1")
	err := idx.Upsert(key("a"), []float32{1, 2, 3}, "text")
	require.Error(t, err)
}

func TestSearch_Monotonic(t *testing.T) {
	idx := New(2, "m1")
	require.NoError(t, idx.Upsert(key("a"), []float32{1, 0}, ""))
	require.NoError(t, idx.Upsert(key("b"), []float32{0.7, 0.7}, ""))
	require.NoError(t, idx.Upsert(key("c"), []float32{0, 1}, ""))

	query := []float32{1, 0}

	lowThresh, err := idx.Search(query, 10, 0.0, "")
	require.NoError(t, err)
	highThresh, err := idx.Search(query, 10, 0.9, "")
	require.NoError(t, err)

	highSet := map[entity.NodeKey]bool{}
	for _, r := range highThresh {
		highSet[r.Key] = true
	}
	lowSet := map[entity.NodeKey]bool{}
	for _, r := range lowThresh {
		lowSet[r.Key] = true
	}
	for k := range highSet {
		assert.True(t, lowSet[k], "higher-threshold result must be subset of lower-threshold result")
	}
}

func TestSearch_TieBreakDeterministic(t *testing.T) {
	idx := New(2, "m1")
	require.NoError(t, idx.Upsert(key("zzz"), []float32{1, 0}, ""))
	require.NoError(t, idx.Upsert(key("aaa"), []float32{1, 0}, ""))

	r1, err := idx.Search([]float32{1, 0}, 10, 0, "")
	require.NoError(t, err)
	r2, err := idx.Search([]float32{1, 0}, 10, 0, "")
	require.NoError(t, err)

	require.Equal(t, r1, r2)
	require.Len(t, r1, 2)
	assert.Equal(t, "aaa", r1[0].Key.ID) // lexicographically first on tie
}

func TestRemove_Cascade(t *testing.T) {
	idx := New(2, "m1")
	require.NoError(t, idx.Upsert(key("a"), []float32{1, 0}, "text"))
	idx.Remove(key("a"))
	_, _, ok := idx.Get(key("a"))
	assert.False(t, ok)
	assert.Equal(t, 0, idx.Size())
}

func TestSearch_TypeFilter(t *testing.T) {
	idx := New(2, "m1")
	require.NoError(t, idx.Upsert(entity.NodeKey{Type: entity.NodeFunction, ID: "f"}, []float32{1, 0}, ""))
	require.NoError(t, idx.Upsert(entity.NodeKey{Type: entity.NodeModule, ID: "m"}, []float32{1, 0}, ""))

	results, err := idx.Search([]float32{1, 0}, 10, 0, entity.NodeModule)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, entity.NodeModule, results[0].Key.Type)
}

func TestSearch_CacheInvalidatedByMutation(t *testing.T) {
	idx := New(2, "m1")
	require.NoError(t, idx.Upsert(key("a"), []float32{1, 0}, ""))

	first, err := idx.Search([]float32{1, 0}, 10, 0, "")
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, idx.Upsert(key("b"), []float32{1, 0}, ""))

	second, err := idx.Search([]float32{1, 0}, 10, 0, "")
	require.NoError(t, err)
	assert.Len(t, second, 2)
}
