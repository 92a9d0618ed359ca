// SPDX-License-Identifier: Apache-2.0

package embedcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/kraklabs/cie-core/internal/cieerrors"
	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/vector"
)

// ArtifactName is the filename used for the persisted vector index within a
// project's cache directory.
const ArtifactName = "embeddings.cie"

// CompatibilityDecl declares two model identities as interchangeable: a
// cache written by one may be loaded under the other iff dims also match.
type CompatibilityDecl struct {
	ModelID  string
	DimsSeen int
}

// Cache manages on-disk persistence of a vector.Index for one project.
type Cache struct {
	cacheRoot   string // e.g. ${XDG_CACHE_HOME:-~/.cache}/cie
	projectRoot string // absolute path to the project being indexed
	modelID     string
	modelRepo   string
	dims        int
	compatible  map[string]bool // model ids declared compatible with modelID
}

// New constructs a Cache rooted at cacheRoot for the project at
// projectRoot, bound to the given model identity and dimensionality.
func New(cacheRoot, projectRoot, modelID, modelRepo string, dims int, compatibleModels ...string) *Cache {
	compat := make(map[string]bool, len(compatibleModels))
	for _, m := range compatibleModels {
		compat[m] = true
	}
	return &Cache{
		cacheRoot:   cacheRoot,
		projectRoot: projectRoot,
		modelID:     modelID,
		modelRepo:   modelRepo,
		dims:        dims,
		compatible:  compat,
	}
}

// ProjectFingerprint returns the 16-hex-char SHA-256 fingerprint of an
// absolute project root path, used to isolate per-project cache directories.
func ProjectFingerprint(absProjectRoot string) string {
	sum := sha256.Sum256([]byte(absProjectRoot))
	return hex.EncodeToString(sum[:])[:16]
}

// Path returns the on-disk path of this project's cache file.
func (c *Cache) Path() string {
	return filepath.Join(c.cacheRoot, ProjectFingerprint(c.projectRoot), ArtifactName)
}

func (c *Cache) lockPath() string {
	return c.Path() + ".lock"
}

// Save writes the entire contents of idx to disk atomically (temp file +
// rename), guarded by an advisory file lock so a concurrent cie process
// against the same project cannot interleave writes.
func (c *Cache) Save(idx *vector.Index, fileTrackerExport []byte, entries func(yield func(entity.NodeKey, []float32, string) bool)) (string, error) {
	path := c.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", cieerrors.Wrap(cieerrors.IOError, "create cache directory", err, map[string]any{"path": filepath.Dir(path)})
	}

	lock := flock.New(c.lockPath())
	if err := lock.Lock(); err != nil {
		return "", cieerrors.Wrap(cieerrors.IOError, "acquire cache lock", err, nil)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(filepath.Dir(path), ArtifactName+".tmp-*")
	if err != nil {
		return "", cieerrors.Wrap(cieerrors.IOError, "create temp cache file", err, nil)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }() // no-op once the rename below succeeds

	count := 0
	entries(func(entity.NodeKey, []float32, string) bool { count++; return true })

	header := Header{
		SchemaVersion:     SchemaVersion,
		ModelID:           c.modelID,
		ModelRepo:         c.modelRepo,
		Dims:              uint32(c.dims),
		Timestamp:         uint64(time.Now().Unix()),
		EntityCount:       uint64(count),
		FileTrackerExport: fileTrackerExport,
	}
	if err := WriteHeader(tmp, header); err != nil {
		_ = tmp.Close()
		return "", cieerrors.Wrap(cieerrors.IOError, "write cache header", err, nil)
	}

	var writeErr error
	entries(func(key entity.NodeKey, vec []float32, sourceText string) bool {
		e := Entry{NodeType: string(key.Type), NodeID: key.ID, Vector: vec, SourceText: sourceText}
		if err := WriteEntry(tmp, e); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	if writeErr != nil {
		_ = tmp.Close()
		return "", cieerrors.Wrap(cieerrors.IOError, "write cache entry", writeErr, nil)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", cieerrors.Wrap(cieerrors.IOError, "sync cache file", err, nil)
	}
	if err := tmp.Close(); err != nil {
		return "", cieerrors.Wrap(cieerrors.IOError, "close cache file", err, nil)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", cieerrors.Wrap(cieerrors.IOError, "rename cache file into place", err, nil)
	}

	return path, nil
}

// LoadResult reports the outcome of a Load call.
type LoadResult struct {
	Loaded            int
	Header            Header
	FileTrackerExport []byte
}

// Load reads the persisted cache and upserts its entries into idx. If the
// schema version or model identity is incompatible, load is refused and idx
// is left exactly as it was — a caller may legally call Load against an
// index it has already started to populate in the same run.
func (c *Cache) Load(idx *vector.Index) (*LoadResult, error) {
	path := c.Path()
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, cieerrors.New(cieerrors.NotFound, "no cache file for project", map[string]any{"path": path})
		}
		return nil, cieerrors.Wrap(cieerrors.IOError, "open cache file", err, nil)
	}
	defer f.Close()

	br := bufferedReader(f)
	header, err := ReadHeader(br)
	if err != nil {
		return nil, cieerrors.Wrap(cieerrors.Corrupted, "read cache header", err, nil)
	}

	if header.SchemaVersion != SchemaVersion {
		return nil, cieerrors.New(cieerrors.Incompatible, "schema version mismatch",
			map[string]any{"file_version": header.SchemaVersion, "current_version": SchemaVersion})
	}
	if !c.isCompatibleModel(header.ModelID, int(header.Dims)) {
		return nil, cieerrors.New(cieerrors.Incompatible, "embedding model incompatible with cache",
			map[string]any{"cache_model": header.ModelID, "cache_dims": header.Dims, "current_model": c.modelID, "current_dims": c.dims})
	}

	loaded := 0
	for i := uint64(0); i < header.EntityCount; i++ {
		entry, err := ReadEntry(br)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, cieerrors.New(cieerrors.Corrupted, "cache file truncated", map[string]any{"expected_entries": header.EntityCount, "read_entries": loaded})
			}
			return nil, cieerrors.Wrap(cieerrors.Corrupted, "read cache entry", err, nil)
		}
		key := entity.NodeKey{Type: entity.NodeType(entry.NodeType), ID: entry.NodeID}
		if err := idx.Upsert(key, entry.Vector, entry.SourceText); err != nil {
			return nil, cieerrors.Wrap(cieerrors.Corrupted, "upsert loaded entry", err, map[string]any{"key": key.String()})
		}
		loaded++
	}

	return &LoadResult{Loaded: loaded, Header: header, FileTrackerExport: header.FileTrackerExport}, nil
}

// isCompatibleModel reports whether a cache written by cacheModel/cacheDims
// can be loaded under the currently configured model.
func (c *Cache) isCompatibleModel(cacheModel string, cacheDims int) bool {
	if cacheModel == c.modelID && cacheDims == c.dims {
		return true
	}
	return c.compatible[cacheModel] && cacheDims == c.dims
}

// ClearScope selects which cache files Clear removes.
type ClearScope int

const (
	ClearCurrentProject ClearScope = iota
	ClearAll
	ClearOlderThan
)

// Clear removes cache files according to scope. For ClearOlderThan, files
// with mtime older than olderThanDays are removed; other scopes ignore it.
func (c *Cache) Clear(scope ClearScope, olderThanDays int) error {
	switch scope {
	case ClearCurrentProject:
		path := c.Path()
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cieerrors.Wrap(cieerrors.IOError, "remove cache file", err, nil)
		}
		return nil
	case ClearAll:
		entries, err := os.ReadDir(c.cacheRoot)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return cieerrors.Wrap(cieerrors.IOError, "list cache root", err, nil)
		}
		for _, e := range entries {
			if e.IsDir() {
				if err := os.RemoveAll(filepath.Join(c.cacheRoot, e.Name())); err != nil {
					return cieerrors.Wrap(cieerrors.IOError, "remove project cache dir", err, nil)
				}
			}
		}
		return nil
	case ClearOlderThan:
		cutoff := time.Now().AddDate(0, 0, -olderThanDays)
		entries, err := os.ReadDir(c.cacheRoot)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return cieerrors.Wrap(cieerrors.IOError, "list cache root", err, nil)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			dir := filepath.Join(c.cacheRoot, e.Name())
			artifact := filepath.Join(dir, ArtifactName)
			info, err := os.Stat(artifact)
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				if err := os.RemoveAll(dir); err != nil {
					return cieerrors.Wrap(cieerrors.IOError, "remove stale project cache dir", err, nil)
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown clear scope %d", scope)
	}
}

// Stats describes the current on-disk cache state without loading entries.
type Stats struct {
	Path  string
	Size  int64
	Header Header
	Valid bool
}

// StatsOf inspects the cache file without mutating idx, reporting whether
// it would be considered valid (compatible) if loaded now.
func (c *Cache) StatsOf() (*Stats, error) {
	path := c.Path()
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Stats{Path: path, Valid: false}, nil
		}
		return nil, cieerrors.Wrap(cieerrors.IOError, "stat cache file", err, nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, cieerrors.Wrap(cieerrors.IOError, "open cache file", err, nil)
	}
	defer f.Close()

	header, err := ReadHeader(bufferedReader(f))
	if err != nil {
		return &Stats{Path: path, Size: info.Size(), Valid: false}, nil
	}

	valid := header.SchemaVersion == SchemaVersion && c.isCompatibleModel(header.ModelID, int(header.Dims))
	return &Stats{Path: path, Size: info.Size(), Header: header, Valid: valid}, nil
}
