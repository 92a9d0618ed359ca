// SPDX-License-Identifier: Apache-2.0

package embedmodel

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicModel_StableAndNormalized(t *testing.T) {
	m := NewDeterministicModel(32)
	ctx := context.Background()

	v1, err := m.Embed(ctx, "func Foo() {}")
	require.NoError(t, err)
	v2, err := m.Embed(ctx, "func Foo() {}")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)

	var norm float64
	for _, x := range v1 {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-4)
}

func TestDeterministicModel_DistinctTextDiffers(t *testing.T) {
	m := NewDeterministicModel(32)
	ctx := context.Background()

	v1, _ := m.Embed(ctx, "alpha")
	v2, _ := m.Embed(ctx, "beta")
	assert.NotEqual(t, v1, v2)
}

func TestFromSpec_SelectsDeterministicByDefault(t *testing.T) {
	m := fromSpec("")
	assert.Equal(t, "deterministic-256", m.ID())
}

func TestFromSpec_SelectsOllama(t *testing.T) {
	m := fromSpec("ollama:mxbai-embed-large")
	assert.Equal(t, "ollama:mxbai-embed-large", m.ID())
}
