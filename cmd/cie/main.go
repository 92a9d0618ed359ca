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

// Command cie is the code intelligence engine's CLI: it indexes a project
// into an in-memory knowledge graph and vector index, persists both to a
// per-project on-disk cache, and exposes them either through one-shot
// subcommands (search, status) or an MCP server over stdio for an AI coding
// assistant to call directly.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cieerr "github.com/kraklabs/cie-core/internal/errors"
	"github.com/kraklabs/cie-core/internal/ui"
)

// version is overridden at build time via -ldflags.
var version = "dev"

var (
	jsonOutput bool
	noColor    bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cie",
		Short: "Code intelligence engine: local knowledge graph, vector search, and an MCP tool surface",
		Long: `cie builds a knowledge graph and vector index over a codebase and serves
both through a command line and the Model Context Protocol.

Run 'cie init' once per project, then 'cie index' to build the graph, and
'cie mcp' to expose it to an MCP-aware assistant over stdio.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ui.InitColors(noColor)
			return nil
		},
	}
	cmd.SetVersionTemplate("cie version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON instead of formatted text")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newResetCmd())
	cmd.AddCommand(newInstallHookCmd())

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		cieerr.FatalError(cieerr.FromCieError(err), jsonOutput)
	}
}

// fail is a small helper used by RunE bodies that already formatted a
// user-facing message: it prints to stderr and returns a plain error so
// cobra's own error path doesn't double-print it (SilenceUsage handles the
// usage text; the message itself is already on stderr).
func fail(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, msg)
	return fmt.Errorf("%s", msg)
}
