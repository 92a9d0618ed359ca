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

	"github.com/spf13/cobra"

	"github.com/kraklabs/cie-core/internal/mcptools"
	"github.com/kraklabs/cie-core/internal/output"
	"github.com/kraklabs/cie-core/internal/ui"
)

type statusReport struct {
	ProjectID   string `json:"project_id"`
	NodeCount   int    `json:"node_count"`
	VectorCount int    `json:"vector_count"`
	CachePath   string `json:"cache_path"`
	CacheValid  bool   `json:"cache_valid"`
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report the indexed project's size and cache state",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := findProjectRoot()
			if err != nil {
				return err
			}
			p, err := openProject(root)
			if err != nil {
				return err
			}

			stats, err := p.Cache.StatsOf()
			if err != nil {
				return fmt.Errorf("inspect cache: %w", err)
			}

			report := statusReport{
				ProjectID:   p.Config.ProjectID,
				NodeCount:   nodeCount(p),
				VectorCount: p.Deps.Index.Size(),
				CachePath:   stats.Path,
				CacheValid:  stats.Valid,
			}

			if jsonOutput {
				return output.JSON(report)
			}

			ui.Header("Project status")
			fmt.Printf("%s %s\n", ui.Label("Project ID:"), report.ProjectID)
			fmt.Printf("%s %s\n", ui.Label("Nodes:"), ui.CountText(report.NodeCount))
			fmt.Printf("%s %s\n", ui.Label("Vectors:"), ui.CountText(report.VectorCount))
			fmt.Printf("%s %s\n", ui.Label("Cache path:"), ui.DimText(report.CachePath))
			if report.CacheValid {
				fmt.Printf("%s valid\n", ui.Label("Cache:"))
			} else {
				ui.Warning("Cache is missing or incompatible with the current embedding model")
			}

			res, err := mcptools.GraphStats(p.Deps)
			if err == nil && !res.IsError {
				fmt.Println()
				fmt.Print(res.Text)
			}
			return nil
		},
	}
	return cmd
}

func nodeCount(p *project) int {
	return len(p.Deps.Store.Snapshot().Nodes)
}
