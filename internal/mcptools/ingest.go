// SPDX-License-Identifier: Apache-2.0

package mcptools

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ignoredDirs = map[string]bool{
	".git": true, ".cie": true, "node_modules": true, "vendor": true,
}

// AnalyzeFileArgs holds arguments for analyzing a single file.
type AnalyzeFileArgs struct {
	Path string
}

// AnalyzeFile drives the Ingest Orchestrator over a single file on disk.
func AnalyzeFile(ctx context.Context, deps *Deps, args AnalyzeFileArgs) (*ToolResult, error) {
	if args.Path == "" {
		return NewError("Error: 'path' is required"), nil
	}

	content, err := os.ReadFile(args.Path)
	if err != nil {
		return Errorf("Error reading %s: %v", args.Path, err), nil
	}
	info, err := os.Stat(args.Path)
	if err != nil {
		return Errorf("Error stating %s: %v", args.Path, err), nil
	}

	result, err := deps.Orchestrator.IngestFile(ctx, args.Path, content, info.ModTime())
	if err != nil {
		return Errorf("Ingest error for %s: %v", args.Path, err), nil
	}

	return NewResult(fmt.Sprintf(
		"## Analyzed `%s`\n\nstatus: %s\nnodes upserted: %d\nnodes removed: %d\nembeddings computed: %d\n",
		args.Path, result.Status, result.NodesUpserted, result.NodesRemoved, result.EmbeddingsDone,
	)), nil
}

// AnalyzeDirectoryArgs holds arguments for analyzing a directory tree.
type AnalyzeDirectoryArgs struct {
	Path      string
	Recursive bool
}

// AnalyzeDirectory walks a directory and ingests every file under it,
// aggregating per-file results into a batch summary. Per-file errors are
// logged into the summary rather than aborting the walk, per §7's
// propagation policy for ingest errors.
func AnalyzeDirectory(ctx context.Context, deps *Deps, args AnalyzeDirectoryArgs) (*ToolResult, error) {
	if args.Path == "" {
		return NewError("Error: 'path' is required"), nil
	}

	var filesAdded, filesModified, nodesUpserted, nodesRemoved, embeddings, errCount int
	var errLines []string

	walkErr := filepath.WalkDir(args.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != args.Path && !args.Recursive {
				return filepath.SkipDir
			}
			if ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, "_test.go") {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			errCount++
			errLines = append(errLines, fmt.Sprintf("%s: %v", path, readErr))
			return nil
		}
		info, statErr := d.Info()
		if statErr != nil {
			errCount++
			errLines = append(errLines, fmt.Sprintf("%s: %v", path, statErr))
			return nil
		}

		r, ingErr := deps.Orchestrator.IngestFile(ctx, path, content, info.ModTime())
		if ingErr != nil {
			errCount++
			errLines = append(errLines, fmt.Sprintf("%s: %v", path, ingErr))
			return nil
		}
		switch r.Status {
		case "new":
			filesAdded++
		case "modified":
			filesModified++
		}
		nodesUpserted += r.NodesUpserted
		nodesRemoved += r.NodesRemoved
		embeddings += r.EmbeddingsDone
		return nil
	})
	if walkErr != nil {
		return Errorf("Error walking %s: %v", args.Path, walkErr), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Analyzed directory `%s`\n\n", args.Path)
	fmt.Fprintf(&sb, "files added: %d\nfiles modified: %d\nnodes upserted: %d\nnodes removed: %d\nembeddings computed: %d\nerrors: %d\n",
		filesAdded, filesModified, nodesUpserted, nodesRemoved, embeddings, errCount)
	if len(errLines) > 0 {
		sb.WriteString("\n### Per-file errors\n\n")
		for _, l := range errLines {
			fmt.Fprintf(&sb, "- %s\n", l)
		}
	}

	return NewResult(sb.String()), nil
}
