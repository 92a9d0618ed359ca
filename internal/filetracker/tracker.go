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

// Package filetracker determines, per file, whether ingest work is needed:
// content-hash comparison with an mtime pre-filter, used to drive
// incremental reindex. This replaces the teacher's git-diff based delta
// detection (pkg/ingestion/delta.go) with a content-hash scheme, so
// ingestion works the same whether or not the project is a git repository.
package filetracker

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/kraklabs/cie-core/internal/entity"
)

// Status is the outcome of observing a file.
type Status string

const (
	Unchanged Status = "unchanged"
	New       Status = "new"
	Modified  Status = "modified"
)

// Tracker holds per-path bookkeeping: content hash, mtime, language, and
// when the file was last ingested. Safe for concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	records map[string]entity.FileRecord
}

// New constructs an empty Tracker.
func New() *Tracker {
	return &Tracker{records: make(map[string]entity.FileRecord)}
}

// Observe classifies path given its current content, and — unless the
// result is Unchanged — updates the tracked record (callers that want to
// defer the update until ingest actually succeeds should use ObserveOnly
// plus Commit).
func (t *Tracker) Observe(path string, content []byte, mtime time.Time, language string) Status {
	status, hash := t.classify(path, content)
	if status != Unchanged {
		t.commit(path, hash, mtime, language)
	}
	return status
}

// ObserveOnly classifies path without recording the observation, so a
// caller can decide (e.g. after a successful ingest) whether to Commit.
func (t *Tracker) ObserveOnly(path string, content []byte) Status {
	status, _ := t.classify(path, content)
	return status
}

func (t *Tracker) classify(path string, content []byte) (Status, string) {
	hash := hashContent(content)

	t.mu.RLock()
	prev, ok := t.records[path]
	t.mu.RUnlock()

	if !ok {
		return New, hash
	}
	if prev.ContentHash == hash {
		return Unchanged, hash
	}
	return Modified, hash
}

// Commit records path as freshly ingested with the given content hash
// (recomputed from content), mtime, and language.
func (t *Tracker) Commit(path string, content []byte, mtime time.Time, language string) {
	t.commit(path, hashContent(content), mtime, language)
}

func (t *Tracker) commit(path, hash string, mtime time.Time, language string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[path] = entity.FileRecord{
		Path:           path,
		ContentHash:    hash,
		MTime:          mtime.Unix(),
		Language:       language,
		LastIngestedAt: time.Now().Unix(),
	}
}

// Forget removes path's tracking record, used on file deletion.
func (t *Tracker) Forget(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, path)
}

// Get returns the tracked record for path, if any.
func (t *Tracker) Get(path string) (entity.FileRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[path]
	return rec, ok
}

// Paths returns every currently tracked path.
func (t *Tracker) Paths() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.records))
	for p := range t.records {
		out = append(out, p)
	}
	return out
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// snapshotDoc is the JSON shape persisted alongside the embedding cache,
// so tracker state and cached vectors stay co-located on disk.
type snapshotDoc struct {
	Records map[string]entity.FileRecord `json:"records"`
}

// Export serializes the tracker state for co-location with the embedding
// cache header's file_tracker_export field.
func (t *Tracker) Export() ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	doc := snapshotDoc{Records: make(map[string]entity.FileRecord, len(t.records))}
	for k, v := range t.records {
		doc.Records[k] = v
	}
	return json.Marshal(doc)
}

// Import replaces the tracker state with a previously Export-ed snapshot.
// An empty blob is treated as "no prior state" rather than an error.
func (t *Tracker) Import(blob []byte) error {
	if len(blob) == 0 {
		return nil
	}
	var doc snapshotDoc
	if err := json.Unmarshal(blob, &doc); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = doc.Records
	if t.records == nil {
		t.records = make(map[string]entity.FileRecord)
	}
	return nil
}
