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
	"strings"

	"github.com/spf13/cobra"

	"github.com/kraklabs/cie-core/internal/mcptools"
	"github.com/kraklabs/cie-core/internal/output"
)

func newSearchCmd() *cobra.Command {
	var k int
	var semantic bool
	var strategy string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := findProjectRoot()
			if err != nil {
				return err
			}
			p, err := openProject(root)
			if err != nil {
				return err
			}

			query := strings.TrimSpace(args[0])
			var res *mcptools.ToolResult
			if semantic {
				res, err = mcptools.SemanticSearch(cmd.Context(), p.Deps, mcptools.SemanticSearchArgs{Query: query, K: k})
			} else {
				res, err = mcptools.HybridSearch(cmd.Context(), p.Deps, mcptools.HybridSearchArgs{Query: query, K: k, Strategy: strategy})
			}
			if err != nil {
				return err
			}
			if res.IsError {
				return fail("%s", res.Text)
			}

			if jsonOutput {
				return output.JSON(map[string]string{"result": res.Text})
			}
			fmt.Print(res.Text)
			return nil
		},
	}

	cmd.Flags().IntVar(&k, "k", 0, "Maximum number of results (default from project config)")
	cmd.Flags().BoolVar(&semantic, "semantic", false, "Use pure dense search instead of the hybrid pipeline")
	cmd.Flags().StringVar(&strategy, "strategy", "general", "Retrieval intent: general, explain, refactor, debug")
	return cmd
}
