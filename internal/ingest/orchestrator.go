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

// Package ingest is the Ingest Orchestrator: it accepts analyzed-file
// payloads from an internal/langfront.Analyzer, diffs them against what the
// graph store already holds for that path, and applies the difference
// atomically. This plays the role of the teacher's pkg/ingestion
// LocalPipeline, generalized from a CozoDB batch writer tied to a single
// git-diff delta pass to a per-file incremental apply against the in-memory
// graph.Store, usable both from a one-shot "index everything" walk and from
// internal/watch's per-file events.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/cie-core/internal/embedmodel"
	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/filetracker"
	"github.com/kraklabs/cie-core/internal/graph"
	"github.com/kraklabs/cie-core/internal/langfront"
	"github.com/kraklabs/cie-core/internal/metrics"
	"github.com/kraklabs/cie-core/internal/vector"
)

// Orchestrator wires the graph store, file tracker, language registry,
// embedding model, and vector index into one coherent ingest operation.
type Orchestrator struct {
	store    *graph.Store
	tracker  *filetracker.Tracker
	registry *langfront.Registry
	model    embedmodel.Model
	index    *vector.Index

	mu         sync.Mutex
	reverse    map[string]map[entity.NodeKey]struct{} // file path -> node keys it defines
	byName     map[string]entity.NodeKey              // "module.name" -> most recently seen function key, for call resolution
	embedGroup int                                    // bounds concurrent Embed calls per batch
}

// New constructs an Orchestrator. embedConcurrency bounds how many Embed
// calls run at once within a single file's batch (0 defaults to 4).
func New(store *graph.Store, tracker *filetracker.Tracker, registry *langfront.Registry, model embedmodel.Model, index *vector.Index, embedConcurrency int) *Orchestrator {
	if embedConcurrency <= 0 {
		embedConcurrency = 4
	}
	return &Orchestrator{
		store:      store,
		tracker:    tracker,
		registry:   registry,
		model:      model,
		index:      index,
		reverse:    make(map[string]map[entity.NodeKey]struct{}),
		byName:     make(map[string]entity.NodeKey),
		embedGroup: embedConcurrency,
	}
}

// Result summarizes one IngestFile or RemoveFile call.
type Result struct {
	Path           string
	Status         filetracker.Status
	NodesUpserted  int
	NodesRemoved   int
	EmbeddingsDone int
}

// embedJob is one pending embedding computation: the node it belongs to
// and the source text to embed.
type embedJob struct {
	key    entity.NodeKey
	source string
}

// IngestFile runs the full per-file procedure: observe via the file
// tracker (no-op on Unchanged), diff against the reverse index for path,
// upsert new/changed nodes, delete stale ones, and compute embeddings for
// nodes whose source text changed.
func (o *Orchestrator) IngestFile(ctx context.Context, path string, content []byte, mtime time.Time) (*Result, error) {
	start := time.Now()
	defer func() { metrics.ObserveIngestDuration(time.Since(start).Seconds()) }()

	status := o.tracker.ObserveOnly(path, content)
	if status == filetracker.Unchanged {
		return &Result{Path: path, Status: status}, nil
	}

	analyzer := o.registry.For(path)
	parseStart := time.Now()
	analyzed, err := analyzer.Analyze(path, content)
	metrics.ObserveParseDuration(time.Since(parseStart).Seconds())
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", path, err)
	}

	current := make(map[entity.NodeKey]struct{})
	result := &Result{Path: path, Status: status}

	for _, mod := range analyzed.Modules {
		key := entity.NodeKey{Type: entity.NodeModule, ID: mod.Name}
		if err := o.store.UpsertNode(entity.NodeModule, mod.Name, mod.Attrs); err != nil {
			return nil, err
		}
		current[key] = struct{}{}
		result.NodesUpserted++
		metrics.NodesUpserted(1)

		for _, imp := range mod.Imports {
			impKey := entity.NodeKey{Type: entity.NodeModule, ID: imp}
			if _, ok := o.store.FindNode(entity.NodeModule, imp); !ok {
				_ = o.store.UpsertNode(entity.NodeModule, imp, entity.Attrs{})
			}
			if err := o.store.AddEdge(key, impKey, entity.EdgeImports, entity.DefaultWeight, nil); err != nil {
				return nil, err
			}
		}
	}

	var jobs []embedJob

	// First pass: upsert every function node and its by-name lookup entry,
	// so a call to a function defined later in the same file still
	// resolves (Go allows forward references within a package).
	for _, fn := range analyzed.Functions {
		id := langfront.FunctionID(fn.Module, fn.Name, fn.Arity)
		key := entity.NodeKey{Type: entity.NodeFunction, ID: id}
		if err := o.store.UpsertNode(entity.NodeFunction, id, fn.Attrs); err != nil {
			return nil, err
		}
		current[key] = struct{}{}
		result.NodesUpserted++
		metrics.NodesUpserted(1)

		o.mu.Lock()
		o.byName[fn.Module+"."+fn.Name] = key
		o.mu.Unlock()

		modKey := entity.NodeKey{Type: entity.NodeModule, ID: fn.Module}
		if err := o.store.AddEdge(modKey, key, entity.EdgeDefines, entity.DefaultWeight, nil); err != nil {
			return nil, err
		}

		source := embeddingSourceText(fn)
		if _, existingSource, ok := o.index.Get(key); !ok || existingSource != source {
			jobs = append(jobs, embedJob{key: key, source: source})
		}
	}

	// Second pass: now that every function in this file is known, resolve
	// call edges by (module, name); Go has no arity overloading so name
	// alone disambiguates within a module.
	for _, fn := range analyzed.Functions {
		id := langfront.FunctionID(fn.Module, fn.Name, fn.Arity)
		key := entity.NodeKey{Type: entity.NodeFunction, ID: id}
		for _, callee := range fn.CallNames {
			o.mu.Lock()
			calleeKey, ok := o.byName[fn.Module+"."+callee]
			o.mu.Unlock()
			if !ok {
				continue
			}
			if err := o.store.AddEdge(key, calleeKey, entity.EdgeCalls, entity.DefaultWeight, nil); err != nil {
				return nil, err
			}
		}
	}

	if err := o.runEmbedJobs(ctx, jobs, result); err != nil {
		return nil, err
	}

	o.mu.Lock()
	prevNodes := o.reverse[path]
	o.reverse[path] = current
	o.mu.Unlock()

	for key := range prevNodes {
		if _, stillPresent := current[key]; stillPresent {
			continue
		}
		if err := o.store.RemoveNode(key.Type, key.ID); err != nil {
			return nil, err
		}
		o.index.Remove(key)
		result.NodesRemoved++
		metrics.NodesRemoved(1)
	}

	o.tracker.Commit(path, content, mtime, analyzed.Language)
	metrics.BatchApplied()
	if status == filetracker.New {
		metrics.IngestFileAdded()
	} else {
		metrics.IngestFileModified()
	}
	return result, nil
}

func (o *Orchestrator) runEmbedJobs(ctx context.Context, jobs []embedJob, result *Result) error {
	if len(jobs) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.embedGroup)

	var mu sync.Mutex
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			embedStart := time.Now()
			vec, err := o.model.Embed(gctx, job.source)
			metrics.ObserveEmbedDuration(time.Since(embedStart).Seconds())
			if err != nil {
				metrics.EmbedError()
				return fmt.Errorf("embed %s: %w", job.key, err)
			}
			metrics.EmbedComputed()
			if err := o.index.Upsert(job.key, vec, job.source); err != nil {
				return err
			}
			mu.Lock()
			result.EmbeddingsDone++
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// RemoveFile removes every node whose sole defining file is path, the
// cascade triggered when the file itself disappears from disk.
func (o *Orchestrator) RemoveFile(path string) (*Result, error) {
	o.mu.Lock()
	nodes := o.reverse[path]
	delete(o.reverse, path)
	// Keep nodes that another tracked file also defines (e.g. a Go
	// package's module node shared by several files).
	for key := range nodes {
		for _, other := range o.reverse {
			if _, shared := other[key]; shared {
				delete(nodes, key)
				break
			}
		}
	}
	o.mu.Unlock()

	result := &Result{Path: path, Status: filetracker.Status("removed")}
	for key := range nodes {
		if err := o.store.RemoveNode(key.Type, key.ID); err != nil {
			return nil, err
		}
		o.index.Remove(key)
		result.NodesRemoved++
		metrics.NodesRemoved(1)
	}
	o.tracker.Forget(path)
	metrics.IngestFileRemoved()
	return result, nil
}

func embeddingSourceText(fn langfront.FunctionRecord) string {
	if fn.Attrs.Doc != "" {
		return fn.Attrs.Doc
	}
	return fn.Module + "." + fn.Name
}
