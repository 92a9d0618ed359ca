// SPDX-License-Identifier: Apache-2.0

package goanalyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/langfront"
)

const sample = `package sample

func Add(a, b int) int {
	return helper(a, b)
}

func helper(a, b int) int {
	return a + b
}

type Server struct{}

func (s *Server) Start() error {
	Add(1, 2)
	return nil
}
`

func TestAnalyze_ExtractsModuleAndFunctions(t *testing.T) {
	a := New()
	result, err := a.Analyze("sample.go", []byte(sample))
	require.NoError(t, err)

	require.Len(t, result.Modules, 1)
	assert.Equal(t, "sample", result.Modules[0].Name)

	names := make(map[string]langfront.FunctionRecord)
	for _, fn := range result.Functions {
		names[fn.Name] = fn
	}

	add, ok := names["Add"]
	require.True(t, ok)
	assert.Equal(t, 2, add.Arity)
	assert.Equal(t, entity.VisibilityPublic, add.Attrs.Visibility)
	assert.Contains(t, add.CallNames, "helper")

	helper, ok := names["helper"]
	require.True(t, ok)
	assert.Equal(t, entity.VisibilityPrivate, helper.Attrs.Visibility)

	start, ok := names["Server.Start"]
	require.True(t, ok)
	assert.Equal(t, 0, start.Arity)
	assert.Contains(t, start.CallNames, "Add")
}

func TestAnalyze_ExtensionsAndLanguage(t *testing.T) {
	a := New()
	assert.Equal(t, []string{".go"}, a.Extensions())
	assert.Equal(t, "go", a.Language())
}
