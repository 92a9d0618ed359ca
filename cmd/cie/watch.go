// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kraklabs/cie-core/internal/ui"
	"github.com/kraklabs/cie-core/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var saveInterval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the project for changes and keep the index up to date",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := findProjectRoot()
			if err != nil {
				return err
			}
			p, err := openProject(root)
			if err != nil {
				return err
			}

			w, err := watch.New(root, watch.Options{Ignore: defaultIgnore})
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigCh
				cancel()
			}()

			go func() {
				if err := w.Start(ctx); err != nil && ctx.Err() == nil {
					ui.Errorf("watch: %v", err)
				}
			}()

			ui.Info("Watching for changes. Press Ctrl-C to stop.")
			ticker := time.NewTicker(saveInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					if err := p.save(); err != nil {
						ui.Errorf("final save: %v", err)
					}
					return nil
				case ev := <-w.Events():
					applyWatchEvent(ctx, p, ev)
				case err := <-w.Errors():
					ui.Warningf("watch: %v", err)
				case <-ticker.C:
					if err := p.save(); err != nil {
						ui.Errorf("periodic save: %v", err)
					}
				}
			}
		},
	}

	cmd.Flags().DurationVar(&saveInterval, "save-interval", 30*time.Second, "How often to persist the index to disk while watching")
	return cmd
}

func applyWatchEvent(ctx context.Context, p *project, ev watch.Event) {
	rel, err := filepath.Rel(p.Root, ev.Path)
	if err != nil {
		return
	}

	switch ev.Op {
	case watch.OpRemove:
		if _, err := p.Deps.Orchestrator.RemoveFile(rel); err != nil {
			ui.Warningf("remove %s: %v", rel, err)
		}
	case watch.OpWrite:
		content, err := os.ReadFile(ev.Path)
		if err != nil {
			return
		}
		info, err := os.Stat(ev.Path)
		if err != nil {
			return
		}
		if _, err := p.Deps.Orchestrator.IngestFile(ctx, rel, content, info.ModTime()); err != nil {
			ui.Warningf("ingest %s: %v", rel, err)
		}
	}
}
