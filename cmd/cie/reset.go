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
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kraklabs/cie-core/internal/embedcache"
	"github.com/kraklabs/cie-core/internal/ui"
)

func newResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the project's cached graph and vector index",
		Long: `Removes the on-disk vector cache and graph snapshot for the current
project. Nothing in the project's own files is touched; the next 'cie
index' or 'cie mcp' rebuilds everything from scratch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := findProjectRoot()
			if err != nil {
				return err
			}

			if !yes && !confirmReset(root) {
				ui.Info("Aborted.")
				return nil
			}

			p, err := openProject(root)
			if err != nil {
				return err
			}

			if err := p.Cache.Clear(embedcache.ClearCurrentProject, 0); err != nil {
				return fmt.Errorf("clear vector cache: %w", err)
			}

			croot, err := cacheRoot()
			if err != nil {
				return err
			}
			snapPath := graphSnapshotPath(croot, root)
			if err := os.Remove(snapPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove graph snapshot: %w", err)
			}

			ui.Success("Project cache cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

func confirmReset(root string) bool {
	fmt.Printf("This discards the cached graph and vector index for %s.\nContinue? [y/N] ", root)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
