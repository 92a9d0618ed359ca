// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package watch subscribes to filesystem events under a project root and
// forwards a debounced, coalesced stream to the Ingest Orchestrator. It
// carries no ingest business logic of its own: Watcher only decides *when*
// a path is settled enough to hand off, not what to do with it.
//
// Grounded on the sibling pack's internal/watcher: fsnotify as the primary
// mechanism, a polling fallback for environments where fsnotify can't
// initialize (e.g. inotify watch limits on network mounts), and a
// per-path debounce window that coalesces rapid edits from editors and
// git operations into a single event.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kraklabs/cie-core/internal/metrics"
)

// Op is the coalesced operation a debounced Event represents.
type Op string

const (
	OpWrite  Op = "write"
	OpRemove Op = "remove"
)

// Event is one settled filesystem change ready for ingest.
type Event struct {
	Path string
	Op   Op
}

// Options configures a Watcher.
type Options struct {
	DebounceWindow  time.Duration
	PollInterval    time.Duration
	EventBufferSize int
	// Ignore reports whether path should be skipped entirely (e.g. the
	// project's own .cie directory, vendor trees, .git).
	Ignore func(path string) bool
}

// WithDefaults fills zero-value fields with the package defaults.
func (o Options) WithDefaults() Options {
	if o.DebounceWindow == 0 {
		o.DebounceWindow = 200 * time.Millisecond
	}
	if o.PollInterval == 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = 256
	}
	if o.Ignore == nil {
		o.Ignore = func(string) bool { return false }
	}
	return o
}

// Watcher emits debounced Events for a directory tree, using fsnotify when
// available and falling back to polling otherwise.
type Watcher struct {
	root string
	opts Options

	fsw      *fsnotify.Watcher
	poller   *poller
	debounce *debouncer

	events chan Event
	errs   chan error
	stopCh chan struct{}
	mu     sync.Mutex
	closed bool
}

// New constructs a Watcher rooted at root. It attempts fsnotify first,
// falling back to polling if the OS watcher cannot be created or the tree's
// directories cannot all be added to it.
func New(root string, opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()
	w := &Watcher{
		root:   root,
		opts:   opts,
		events: make(chan Event, opts.EventBufferSize),
		errs:   make(chan error, 16),
		stopCh: make(chan struct{}),
	}
	w.debounce = newDebouncer(opts.DebounceWindow, w.emit)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.poller = newPoller(root, opts.PollInterval, opts.Ignore)
		return w, nil
	}
	w.fsw = fsw
	if err := addRecursive(fsw, root, opts.Ignore); err != nil {
		_ = fsw.Close()
		w.fsw = nil
		w.poller = newPoller(root, opts.PollInterval, opts.Ignore)
	}
	return w, nil
}

// Start runs the watch loop until ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	if w.fsw != nil {
		return w.runFsnotify(ctx)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	err := w.poller.run(ctx, w.debounce)
	select {
	case <-w.stopCh:
		return nil
	default:
		return err
	}
}

func (w *Watcher) runFsnotify(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.opts.Ignore(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				metrics.WatchEvent("create")
				if info, err := statIsDir(ev.Name); err == nil && info {
					_ = addRecursive(w.fsw, ev.Name, w.opts.Ignore)
				}
				w.debounce.add(ev.Name, OpWrite)
			}
			if ev.Op&fsnotify.Write != 0 {
				metrics.WatchEvent("write")
				w.debounce.add(ev.Name, OpWrite)
			}
			if ev.Op&fsnotify.Remove != 0 {
				metrics.WatchEvent("remove")
				w.debounce.add(ev.Name, OpRemove)
			}
			if ev.Op&fsnotify.Rename != 0 {
				metrics.WatchEvent("rename")
				w.debounce.add(ev.Name, OpRemove)
			}
			if ev.Op&fsnotify.Chmod != 0 {
				metrics.WatchEvent("chmod")
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
	default:
		select {
		case w.errs <- fmt.Errorf("watch: event buffer full, dropped %s", ev.Path):
		default:
		}
	}
}

// Events returns the channel of debounced, settled filesystem events.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors returns the channel of non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops the watcher and releases its OS resources. Safe to call more
// than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	close(w.stopCh)
	w.debounce.stop()
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func addRecursive(fsw *fsnotify.Watcher, root string, ignore func(string) bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ignore(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}

func statIsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
