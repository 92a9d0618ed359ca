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

	"github.com/spf13/cobra"
)

const postCommitHookContent = `#!/bin/sh
# CIE auto-index hook - refreshes the graph and vector index after each commit
# Installed by: cie install-hook
# Remove with: cie install-hook --remove

cie index >/dev/null 2>&1 &
`

const cieHookMarker = "# CIE auto-index hook"

func newInstallHookCmd() *cobra.Command {
	var force, remove bool

	cmd := &cobra.Command{
		Use:   "install-hook",
		Short: "Install a git post-commit hook that refreshes the index after each commit",
		Long: `Installs a git post-commit hook that runs 'cie index' in the background
after every commit, so the graph and vector index stay current without a
separate manual step.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gitDir, err := findGitDir()
			if err != nil {
				return err
			}
			hookPath := filepath.Join(gitDir, "hooks", "post-commit")

			if remove {
				if err := removeHook(hookPath); err != nil {
					return err
				}
				fmt.Println("Git hook removed.")
				return nil
			}

			if err := installHook(hookPath, force); err != nil {
				return err
			}
			fmt.Printf("Git hook installed: %s\n", hookPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing, non-CIE hook")
	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the hook instead of installing it")
	return cmd
}

// findGitDir finds the .git directory by walking up the directory tree from
// the current working directory, resolving the gitdir-file indirection used
// by worktrees.
func findGitDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		gitPath := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			if info.IsDir() {
				return gitPath, nil
			}
			content, err := os.ReadFile(gitPath)
			if err != nil {
				return "", fmt.Errorf("cannot read .git file: %w", err)
			}
			if gitdir, ok := strings.CutPrefix(strings.TrimSpace(string(content)), "gitdir: "); ok {
				if filepath.IsAbs(gitdir) {
					return gitdir, nil
				}
				return filepath.Join(dir, gitdir), nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("not a git repository (or any of the parent directories)")
}

// installHook writes the CIE post-commit hook to hookPath. An existing CIE
// hook is silently reinstalled; an existing non-CIE hook requires force.
func installHook(hookPath string, force bool) error {
	hookDir := filepath.Dir(hookPath)
	if err := os.MkdirAll(hookDir, 0o755); err != nil {
		return fmt.Errorf("cannot create hooks directory: %w", err)
	}

	if content, err := os.ReadFile(hookPath); err == nil {
		if containsCIEMarker(string(content)) {
			// reinstall with the current template
		} else if !force {
			return fmt.Errorf("hook already exists at %s\nUse --force to overwrite", hookPath)
		}
	}

	if err := os.WriteFile(hookPath, []byte(postCommitHookContent), 0o755); err != nil {
		return fmt.Errorf("cannot write hook: %w", err)
	}
	return nil
}

// removeHook removes the hook at hookPath, refusing if it was not installed
// by CIE (protects user-authored hooks from accidental removal).
func removeHook(hookPath string) error {
	content, err := os.ReadFile(hookPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no hook found at %s", hookPath)
		}
		return fmt.Errorf("cannot read hook: %w", err)
	}

	if !containsCIEMarker(string(content)) {
		return fmt.Errorf("hook at %s was not installed by cie\nremove it manually if needed", hookPath)
	}

	if err := os.Remove(hookPath); err != nil {
		return fmt.Errorf("cannot remove hook: %w", err)
	}
	return nil
}

func containsCIEMarker(content string) bool {
	return strings.Contains(content, cieHookMarker)
}

// IsHookInstalled reports whether the CIE git hook is currently installed
// in the repository containing the current working directory.
func IsHookInstalled() bool {
	gitDir, err := findGitDir()
	if err != nil {
		return false
	}

	hookPath := filepath.Join(gitDir, "hooks", "post-commit")
	content, err := os.ReadFile(hookPath)
	if err != nil {
		return false
	}

	return containsCIEMarker(string(content))
}
