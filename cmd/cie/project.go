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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/cie-core/internal/config"
	"github.com/kraklabs/cie-core/internal/embedcache"
	"github.com/kraklabs/cie-core/internal/embedmodel"
	"github.com/kraklabs/cie-core/internal/filetracker"
	"github.com/kraklabs/cie-core/internal/graph"
	"github.com/kraklabs/cie-core/internal/ingest"
	"github.com/kraklabs/cie-core/internal/langfront"
	"github.com/kraklabs/cie-core/internal/langfront/goanalyzer"
	"github.com/kraklabs/cie-core/internal/mcptools"
	"github.com/kraklabs/cie-core/internal/vector"
)

// graphSnapshotName is the filename the graph store is persisted under,
// alongside the vector cache's own embeddings.cie artifact.
const graphSnapshotName = "graph.json"

// project bundles everything a command needs to operate against one
// project directory: its config, its in-memory stores, and the on-disk
// cache handle those stores persist through between separate invocations.
type project struct {
	Root   string
	Config *config.Config
	Deps   *mcptools.Deps
	Tracker *filetracker.Tracker
	Cache  *embedcache.Cache
}

// findProjectRoot walks up from the current directory looking for a .cie
// directory, falling back to the current directory if none is found (the
// caller is expected to run 'cie init' in that case).
func findProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("cannot get current directory: %w", err)
	}
	dir := cwd
	for {
		if info, err := os.Stat(config.Dir(dir)); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// cacheRoot returns the root directory embeddings and graph snapshots are
// cached under: $XDG_CACHE_HOME/cie, or ~/.cache/cie.
func cacheRoot() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "cie"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine cache directory: %w", err)
	}
	return filepath.Join(home, ".cache", "cie"), nil
}

// defaultIgnore reports whether the final element of path (absolute or
// relative) names a directory that should never be watched, walked, or
// ingested. Only that element is checked; callers skip a matching directory
// so that nothing beneath it is visited.
func defaultIgnore(path string) bool {
	base := filepath.Base(path)
	switch base {
	case ".git", ".cie", "node_modules", "vendor", ".hg", ".svn":
		return true
	}
	return false
}

// openProject loads root's configuration and rebuilds the in-memory graph
// and vector index from their persisted caches, if any. A project that has
// never been indexed still loads successfully, with empty stores.
func openProject(root string) (*project, error) {
	cfg, err := config.Load(root)
	if err != nil {
		if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file") {
			return nil, fmt.Errorf("no project configuration at %s (run 'cie init' first)", config.Path(root))
		}
		return nil, err
	}

	model := modelFor(*cfg)
	store := graph.New()
	tracker := filetracker.New()
	idx := vector.New(model.Dims(), model.ID())
	registry := langfront.NewRegistry(langfront.PlainText{})
	registry.Register(goanalyzer.New())

	croot, err := cacheRoot()
	if err != nil {
		return nil, err
	}
	cache := embedcache.New(croot, root, model.ID(), "", model.Dims())

	if loadRes, err := cache.Load(idx); err == nil {
		if len(loadRes.FileTrackerExport) > 0 {
			_ = tracker.Import(loadRes.FileTrackerExport)
		}
		if snap, err := os.ReadFile(graphSnapshotPath(croot, root)); err == nil {
			_ = store.Import(snap)
		}
	}

	orch := ingest.New(store, tracker, registry, model, idx, 4)

	return &project{
		Root:    root,
		Config:  cfg,
		Tracker: tracker,
		Cache:   cache,
		Deps: &mcptools.Deps{
			Store:        store,
			Index:        idx,
			Model:        model,
			Registry:     registry,
			Orchestrator: orch,
			Config:       cfg,
		},
	}, nil
}

// save persists the graph store and vector index (plus file tracker state)
// to their on-disk caches.
func (p *project) save() error {
	trackerBlob, err := p.Tracker.Export()
	if err != nil {
		return fmt.Errorf("export file tracker: %w", err)
	}
	if _, err := p.Cache.Save(p.Deps.Index, trackerBlob, p.Deps.Index.Entries); err != nil {
		return fmt.Errorf("save vector cache: %w", err)
	}

	croot, err := cacheRoot()
	if err != nil {
		return err
	}
	graphBlob, err := p.Deps.Store.Export()
	if err != nil {
		return fmt.Errorf("export graph: %w", err)
	}
	path := graphSnapshotPath(croot, p.Root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create graph snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, graphBlob, 0o644); err != nil {
		return fmt.Errorf("write graph snapshot: %w", err)
	}
	return nil
}

func graphSnapshotPath(croot, projectRoot string) string {
	return filepath.Join(croot, embedcache.ProjectFingerprint(projectRoot), graphSnapshotName)
}

// modelFor selects the embedding model for cfg: the project's own
// embedding_model setting if set, otherwise EMBEDDING_MODEL from the
// environment.
func modelFor(cfg config.Config) embedmodel.Model {
	if cfg.EmbeddingModel != "" {
		old := os.Getenv("EMBEDDING_MODEL")
		defer os.Setenv("EMBEDDING_MODEL", old)
		os.Setenv("EMBEDDING_MODEL", cfg.EmbeddingModel)
	}
	return embedmodel.FromEnv()
}
