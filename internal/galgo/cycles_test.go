// SPDX-License-Identifier: Apache-2.0

package galgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-core/internal/entity"
)

// TestS2_FindCycles_FunctionScope exercises a 3-function call cycle: a
// calls b, b calls c, c calls a. Exactly one cycle should be reported
// regardless of which node the DFS starts from.
func TestS2_FindCycles_FunctionScope(t *testing.T) {
	a, b, c := fn("a"), fn("b"), fn("c")
	s := buildStore(t, []entity.NodeKey{a, b, c}, []link{
		{a, b, entity.EdgeCalls},
		{b, c, entity.EdgeCalls},
		{c, a, entity.EdgeCalls},
	})

	cycles := FindCycles(s.Snapshot(), CycleOptions{Scope: CycleScopeFunction})
	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0].Nodes, 3)
}

// TestFindCycles_DirectionIsSignificant exercises two independent
// directed cycles over the same three nodes, one the reverse of the
// other (a->b->c->a and a->c->b->a). They must be reported separately:
// a directed cycle and its reverse are not the same cycle. MinLength 3
// leaves out the three 2-cycles (a<->b, a<->c, b<->c) the same edges form.
func TestFindCycles_DirectionIsSignificant(t *testing.T) {
	a, b, c := fn("a"), fn("b"), fn("c")
	s := buildStore(t, []entity.NodeKey{a, b, c}, []link{
		{a, b, entity.EdgeCalls},
		{b, c, entity.EdgeCalls},
		{c, a, entity.EdgeCalls},
		{a, c, entity.EdgeCalls},
		{c, b, entity.EdgeCalls},
		{b, a, entity.EdgeCalls},
	})

	cycles := FindCycles(s.Snapshot(), CycleOptions{Scope: CycleScopeFunction, MinLength: 3})
	require.Len(t, cycles, 2)
}

func TestFindCycles_ModuleScope(t *testing.T) {
	x, y := mod("x"), mod("y")
	s := buildStore(t, []entity.NodeKey{x, y}, []link{
		{x, y, entity.EdgeImports},
		{y, x, entity.EdgeImports},
	})

	cycles := FindCycles(s.Snapshot(), CycleOptions{Scope: CycleScopeModule})
	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0].Nodes, 2)
}

func TestFindCycles_AcyclicReturnsNone(t *testing.T) {
	a, b, c := fn("a"), fn("b"), fn("c")
	s := buildStore(t, []entity.NodeKey{a, b, c}, []link{
		{a, b, entity.EdgeCalls},
		{b, c, entity.EdgeCalls},
	})

	cycles := FindCycles(s.Snapshot(), CycleOptions{Scope: CycleScopeFunction})
	assert.Empty(t, cycles)
}

func TestFindCycles_LimitBoundsOutput(t *testing.T) {
	// Two independent self-contained cycles: a->b->a and c->d->c.
	a, b, c, d := fn("a"), fn("b"), fn("c"), fn("d")
	s := buildStore(t, []entity.NodeKey{a, b, c, d}, []link{
		{a, b, entity.EdgeCalls},
		{b, a, entity.EdgeCalls},
		{c, d, entity.EdgeCalls},
		{d, c, entity.EdgeCalls},
	})

	cycles := FindCycles(s.Snapshot(), CycleOptions{Scope: CycleScopeFunction, Limit: 1})
	assert.Len(t, cycles, 1)
}

func TestFindCycles_MinLengthExcludesTwoHopCycle(t *testing.T) {
	a, b := fn("a"), fn("b")
	s := buildStore(t, []entity.NodeKey{a, b}, []link{
		{a, b, entity.EdgeCalls},
		{b, a, entity.EdgeCalls},
	})

	cycles := FindCycles(s.Snapshot(), CycleOptions{Scope: CycleScopeFunction, MinLength: 3})
	assert.Empty(t, cycles)
}
