// SPDX-License-Identifier: Apache-2.0

package mcptools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListNodes_FiltersByType(t *testing.T) {
	deps := newTestDeps(t)
	res, err := ListNodes(deps, ListNodesArgs{NodeType: "function", Limit: 10})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, "sample.Add/2")
	assert.Contains(t, res.Text, "sample.helper/2")
}

func TestListNodes_RequiresType(t *testing.T) {
	deps := newTestDeps(t)
	res, err := ListNodes(deps, ListNodesArgs{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestQueryGraph_FiltersByNamePrefix(t *testing.T) {
	deps := newTestDeps(t)
	res, err := QueryGraph(deps, QueryGraphArgs{NodeType: "function", NamePrefix: "Add"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "sample.Add/2")
	assert.NotContains(t, res.Text, "sample.helper/2")
}

func TestFindPaths_DirectCallEdge(t *testing.T) {
	deps := newTestDeps(t)
	res, err := FindPaths(deps, FindPathsArgs{From: "function:sample.Add/2", To: "function:sample.helper/2", MaxDepth: 3})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, "sample.Add/2 -> sample.helper/2")
}

func TestFindPaths_InvalidKeyIsError(t *testing.T) {
	deps := newTestDeps(t)
	res, err := FindPaths(deps, FindPathsArgs{From: "bogus", To: "function:sample.helper/2"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
