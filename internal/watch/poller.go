// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"
)

// poller is the polling fallback used when fsnotify.NewWatcher fails or a
// directory of the tree cannot be added to it (e.g. inotify instance or
// watch limits exhausted).
type poller struct {
	root     string
	interval time.Duration
	ignore   func(string) bool

	mu    sync.Mutex
	state map[string]time.Time
}

func newPoller(root string, interval time.Duration, ignore func(string) bool) *poller {
	return &poller{root: root, interval: interval, ignore: ignore, state: make(map[string]time.Time)}
}

func (p *poller) run(ctx context.Context, d *debouncer) error {
	if err := p.scan(d); err != nil {
		return err
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = p.scan(d)
		}
	}
}

// scan walks the tree, diffing mtimes against the last known state and
// feeding any change through d so it still passes through the same
// debounce window as fsnotify-sourced events.
func (p *poller) scan(d *debouncer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	seen := make(map[string]struct{})
	err := filepath.WalkDir(p.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p.ignore(path) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		seen[path] = struct{}{}
		mtime := info.ModTime()
		if prev, ok := p.state[path]; !ok || !prev.Equal(mtime) {
			p.state[path] = mtime
			d.add(path, OpWrite)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for path := range p.state {
		if _, ok := seen[path]; ok {
			continue
		}
		delete(p.state, path)
		d.add(path, OpRemove)
	}
	return nil
}
