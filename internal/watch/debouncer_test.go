// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesRapidWrites(t *testing.T) {
	var got []Event
	done := make(chan struct{})
	d := newDebouncer(20*time.Millisecond, func(e Event) {
		got = append(got, e)
		close(done)
	})
	d.add("/tmp/a.go", OpWrite)
	d.add("/tmp/a.go", OpWrite)
	d.add("/tmp/a.go", OpWrite)

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("debouncer never flushed")
	}
	require.Len(t, got, 1)
	assert.Equal(t, OpWrite, got[0].Op)
}

func TestDebouncer_RemoveWinsOverWrite(t *testing.T) {
	var got []Event
	done := make(chan struct{})
	d := newDebouncer(20*time.Millisecond, func(e Event) {
		got = append(got, e)
		close(done)
	})
	d.add("/tmp/a.go", OpWrite)
	d.add("/tmp/a.go", OpRemove)

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("debouncer never flushed")
	}
	require.Len(t, got, 1)
	assert.Equal(t, OpRemove, got[0].Op)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	fired := false
	d := newDebouncer(20*time.Millisecond, func(e Event) { fired = true })
	d.add("/tmp/a.go", OpWrite)
	d.stop()
	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired)
}
