// SPDX-License-Identifier: Apache-2.0

package mcptools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRank_ListsFunctions(t *testing.T) {
	deps := newTestDeps(t)
	res, err := PageRank(context.Background(), deps, PageRankArgs{Limit: 10})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, "sample.Add/2")
}

func TestDegreeCentrality_AddHasOutEdge(t *testing.T) {
	deps := newTestDeps(t)
	res, err := DegreeCentrality(deps, DegreeCentralityArgs{NodeType: "function"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "sample.Add/2")
	assert.Contains(t, res.Text, "out=1")
}

func TestBetweennessCentrality_DefaultsBudget(t *testing.T) {
	deps := newTestDeps(t)
	res, err := BetweennessCentrality(context.Background(), deps, BetweennessCentralityArgs{})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "partial=false")
}

func TestClosenessCentrality_ReportsCandidates(t *testing.T) {
	deps := newTestDeps(t)
	res, err := ClosenessCentrality(context.Background(), deps, ClosenessCentralityArgs{NodeType: "function"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "2 candidates")
}

func TestDetectCommunities_GroupsConnectedFunctions(t *testing.T) {
	deps := newTestDeps(t)
	res, err := DetectCommunities(deps, DetectCommunitiesArgs{})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Community 1")
}

func TestGraphStats_ReportsCounts(t *testing.T) {
	deps := newTestDeps(t)
	res, err := GraphStats(deps)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "function: 2")
}
