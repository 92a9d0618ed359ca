// SPDX-License-Identifier: Apache-2.0

package filetracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestObserve_Idempotent exercises the tracker's core invariant:
// after a successful observe returning new|modified, an immediate
// re-observe with the same bytes returns unchanged.
func TestObserve_Idempotent(t *testing.T) {
	tr := New()
	now := time.Now()

	status := tr.Observe("f.go", []byte("package f"), now, "go")
	assert.Equal(t, New, status)

	status = tr.Observe("f.go", []byte("package f"), now, "go")
	assert.Equal(t, Unchanged, status)
}

func TestObserve_Modified(t *testing.T) {
	tr := New()
	now := time.Now()
	tr.Observe("f.go", []byte("package f"), now, "go")

	status := tr.Observe("f.go", []byte("package f\nfunc foo() {}"), now, "go")
	assert.Equal(t, Modified, status)
}

func TestForget(t *testing.T) {
	tr := New()
	now := time.Now()
	tr.Observe("f.go", []byte("x"), now, "go")
	tr.Forget("f.go")

	status := tr.Observe("f.go", []byte("x"), now, "go")
	assert.Equal(t, New, status)
}

func TestExportImport_RoundTrip(t *testing.T) {
	tr := New()
	now := time.Now()
	tr.Observe("a.go", []byte("a"), now, "go")
	tr.Observe("b.go", []byte("b"), now, "go")

	blob, err := tr.Export()
	require.NoError(t, err)

	restored := New()
	require.NoError(t, restored.Import(blob))

	rec, ok := restored.Get("a.go")
	require.True(t, ok)
	assert.Equal(t, "go", rec.Language)

	status := restored.Observe("b.go", []byte("b"), now, "go")
	assert.Equal(t, Unchanged, status)
}

// TestS6_IncrementalIngest exercises the tracker half of an incremental
// reindex: new, then modified, then a stable unchanged.
func TestS6_IncrementalIngest(t *testing.T) {
	tr := New()
	now := time.Now()

	assert.Equal(t, New, tr.Observe("f.ex", []byte("def foo"), now, "elixir"))
	assert.Equal(t, Modified, tr.Observe("f.ex", []byte("def foo\ndef bar"), now, "elixir"))
	assert.Equal(t, Unchanged, tr.Observe("f.ex", []byte("def foo\ndef bar"), now, "elixir"))
}
