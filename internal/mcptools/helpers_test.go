// SPDX-License-Identifier: Apache-2.0

package mcptools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-core/internal/config"
	"github.com/kraklabs/cie-core/internal/embedmodel"
	"github.com/kraklabs/cie-core/internal/filetracker"
	"github.com/kraklabs/cie-core/internal/graph"
	"github.com/kraklabs/cie-core/internal/ingest"
	"github.com/kraklabs/cie-core/internal/langfront"
	"github.com/kraklabs/cie-core/internal/langfront/goanalyzer"
	"github.com/kraklabs/cie-core/internal/vector"
)

const testSource = `package sample

func Add(a, b int) int {
	return helper(a, b)
}

func helper(a, b int) int {
	return a + b
}
`

func newTestDeps(t *testing.T) *Deps {
	t.Helper()
	store := graph.New()
	tracker := filetracker.New()
	registry := langfront.NewRegistry(langfront.PlainText{})
	registry.Register(goanalyzer.New())
	model := embedmodel.NewDeterministicModel(8)
	idx := vector.New(8, model.ID())
	orch := ingest.New(store, tracker, registry, model, idx, 2)

	_, err := orch.IngestFile(context.Background(), "sample.go", []byte(testSource), time.Now())
	require.NoError(t, err)

	return &Deps{
		Store:        store,
		Index:        idx,
		Model:        model,
		Registry:     registry,
		Orchestrator: orch,
		Config:       ptr(config.Default("test-project")),
	}
}

func ptr[T any](v T) *T { return &v }
