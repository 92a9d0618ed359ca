// SPDX-License-Identifier: Apache-2.0

package mcptools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeFile_IngestsFromDisk(t *testing.T) {
	deps := newTestDeps(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.go")
	require.NoError(t, os.WriteFile(path, []byte("package extra\n\nfunc Run() {}\n"), 0o644))

	res, err := AnalyzeFile(context.Background(), deps, AnalyzeFileArgs{Path: path})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, "status: new")
}

func TestAnalyzeFile_RequiresPath(t *testing.T) {
	deps := newTestDeps(t)
	res, err := AnalyzeFile(context.Background(), deps, AnalyzeFileArgs{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestAnalyzeDirectory_WalksAndAggregates(t *testing.T) {
	deps := newTestDeps(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package sub\n\nfunc A() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.go"), []byte("package sub\n\nfunc B() {}\n"), 0o644))

	res, err := AnalyzeDirectory(context.Background(), deps, AnalyzeDirectoryArgs{Path: dir, Recursive: true})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, "files added: 2")
}
