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
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/kraklabs/cie-core/internal/filetracker"
	"github.com/kraklabs/cie-core/internal/ui"
)

func newIndexCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Walk the project and build (or refresh) the knowledge graph and vector index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := findProjectRoot()
			if err != nil {
				return err
			}
			walkRoot := root
			if len(args) == 1 {
				walkRoot = filepath.Join(root, args[0])
			}

			p, err := openProject(root)
			if err != nil {
				return err
			}

			if metricsAddr != "" {
				go serveMetrics(metricsAddr)
			}

			result, err := runIndex(cmd.Context(), p, walkRoot)
			if err != nil {
				return err
			}

			if err := p.save(); err != nil {
				return fmt.Errorf("save index: %w", err)
			}

			printIndexResult(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	return cmd
}

// indexResult summarizes one 'cie index' run.
type indexResult struct {
	FilesSeen     int
	FilesNew      int
	FilesModified int
	FilesUnchanged int
	NodesUpserted int
	NodesRemoved  int
	Errors        int
	Duration      time.Duration
}

// runIndex walks walkRoot, ingesting every file the project's language
// registry recognizes (and the plain-text fallback otherwise), skipping
// directories defaultIgnore rejects.
func runIndex(ctx context.Context, p *project, walkRoot string) (*indexResult, error) {
	start := time.Now()
	result := &indexResult{}

	err := filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if defaultIgnore(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(p.Root, path)
		if err != nil {
			rel = path
		}

		content, err := os.ReadFile(path)
		if err != nil {
			result.Errors++
			return nil
		}
		info, err := d.Info()
		if err != nil {
			result.Errors++
			return nil
		}

		result.FilesSeen++
		ingestResult, err := p.Deps.Orchestrator.IngestFile(ctx, rel, content, info.ModTime())
		if err != nil {
			result.Errors++
			return nil
		}

		switch ingestResult.Status {
		case filetracker.New:
			result.FilesNew++
		case filetracker.Modified:
			result.FilesModified++
		case filetracker.Unchanged:
			result.FilesUnchanged++
		}
		result.NodesUpserted += ingestResult.NodesUpserted
		result.NodesRemoved += ingestResult.NodesRemoved
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", walkRoot, err)
	}

	result.Duration = time.Since(start)
	return result, nil
}

func printIndexResult(r *indexResult) {
	ui.Header("Indexing complete")
	fmt.Printf("%s %s\n", ui.Label("Files seen:"), ui.CountText(r.FilesSeen))
	fmt.Printf("%s %s new, %s modified, %s unchanged\n",
		ui.Label("Files:"), ui.CountText(r.FilesNew), ui.CountText(r.FilesModified), ui.CountText(r.FilesUnchanged))
	fmt.Printf("%s %s upserted, %s removed\n",
		ui.Label("Nodes:"), ui.CountText(r.NodesUpserted), ui.CountText(r.NodesRemoved))
	if r.Errors > 0 {
		ui.Warningf("%d files failed to ingest", r.Errors)
	}
	fmt.Printf("%s %s\n", ui.Label("Duration:"), r.Duration.Round(time.Millisecond))
}

// serveMetrics runs a Prometheus /metrics endpoint until the process exits.
// Errors are logged rather than fatal, since metrics are a diagnostic
// side-channel, not the indexing operation's result.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ui.Warningf("metrics server: %v", err)
	}
}
