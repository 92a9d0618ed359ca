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

	"github.com/spf13/cobra"

	"github.com/kraklabs/cie-core/internal/config"
	"github.com/kraklabs/cie-core/internal/ui"
)

func newInitCmd() *cobra.Command {
	var projectID string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create .cie/project.yaml for the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("cannot get current directory: %w", err)
			}

			if _, err := os.Stat(config.Path(root)); err == nil && !force {
				return fail("Project already initialized at %s (use --force to overwrite)", config.Path(root))
			}

			if projectID == "" {
				projectID = filepath.Base(root)
			}

			cfg := config.Default(projectID)
			if err := config.Save(root, cfg); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			ui.Successf("Initialized project %q", projectID)
			fmt.Printf("Config written to %s\n", config.Path(root))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "id", "", "Project identifier (default: directory name)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")
	return cmd
}
