// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"sync"
	"time"

	"github.com/kraklabs/cie-core/internal/metrics"
)

// debouncer coalesces rapid events for the same path into one settled
// Event, emitted window after the last observation of that path. Coalescing
// follows the same write/remove precedence as the sibling pack's
// Debouncer: remove always wins (a file that's gone is gone, regardless of
// how many writes preceded it within the window).
type debouncer struct {
	window time.Duration
	emit   func(Event)

	mu      sync.Mutex
	pending map[string]*pendingEntry
	stopped bool
}

type pendingEntry struct {
	op        Op
	firstSeen time.Time
	timer     *time.Timer
}

func newDebouncer(window time.Duration, emit func(Event)) *debouncer {
	return &debouncer{window: window, emit: emit, pending: make(map[string]*pendingEntry)}
}

// add records an observation of op on path, resetting that path's window.
func (d *debouncer) add(path string, op Op) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	entry, ok := d.pending[path]
	if !ok {
		entry = &pendingEntry{op: op, firstSeen: time.Now()}
		d.pending[path] = entry
	} else {
		entry.timer.Stop()
		if op == OpRemove {
			entry.op = OpRemove
		} else if entry.op != OpRemove {
			entry.op = op
		}
	}

	entry.timer = time.AfterFunc(d.window, func() { d.flush(path) })
}

func (d *debouncer) flush(path string) {
	d.mu.Lock()
	entry, ok := d.pending[path]
	if !ok {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	d.mu.Unlock()

	metrics.ObserveWatchDebounce(time.Since(entry.firstSeen).Seconds())
	d.emit(Event{Path: path, Op: entry.op})
}

// stop cancels every pending timer without flushing.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for _, e := range d.pending {
		e.timer.Stop()
	}
	d.pending = make(map[string]*pendingEntry)
}
