// SPDX-License-Identifier: Apache-2.0

package galgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-core/internal/entity"
)

func TestFindPaths_DirectAndIndirect(t *testing.T) {
	a, b, c := fn("a"), fn("b"), fn("c")
	s := buildStore(t, []entity.NodeKey{a, b, c}, []link{
		{a, b, entity.EdgeCalls},
		{b, c, entity.EdgeCalls},
		{a, c, entity.EdgeCalls},
	})

	result := FindPaths(s.Snapshot(), a, c, PathOptions{})
	require.Len(t, result.Paths, 2)
	assert.False(t, result.Truncated)
}

func TestFindPaths_NoPathReturnsEmpty(t *testing.T) {
	a, b, c := fn("a"), fn("b"), fn("c")
	s := buildStore(t, []entity.NodeKey{a, b, c}, []link{
		{a, b, entity.EdgeCalls},
	})

	result := FindPaths(s.Snapshot(), a, c, PathOptions{})
	assert.Empty(t, result.Paths)
}

func TestFindPaths_MaxDepthBoundsSearch(t *testing.T) {
	a, b, c, d := fn("a"), fn("b"), fn("c"), fn("d")
	s := buildStore(t, []entity.NodeKey{a, b, c, d}, []link{
		{a, b, entity.EdgeCalls},
		{b, c, entity.EdgeCalls},
		{c, d, entity.EdgeCalls},
	})

	result := FindPaths(s.Snapshot(), a, d, PathOptions{MaxDepth: 2})
	assert.Empty(t, result.Paths)
}

func TestFindPaths_MaxPathsTruncates(t *testing.T) {
	a, b, c := fn("a"), fn("b"), fn("c")
	s := buildStore(t, []entity.NodeKey{a, b, c}, []link{
		{a, b, entity.EdgeCalls},
		{a, c, entity.EdgeCalls},
	})

	result := FindPaths(s.Snapshot(), a, b, PathOptions{MaxPaths: 1})
	assert.LessOrEqual(t, len(result.Paths), 1)
	assert.True(t, result.Truncated)
}
