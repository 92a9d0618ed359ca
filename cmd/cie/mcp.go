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
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kraklabs/cie-core/internal/mcpserver"
)

func newMCPCmd() *cobra.Command {
	var transport string
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the tool surface over the Model Context Protocol",
		Long: `Starts an MCP server speaking JSON-RPC 2.0 over stdio. Before the server
starts, the project is opened and (if nothing has been indexed yet) fully
indexed, so a freshly cloned project works with no separate 'cie index'
step.

Nothing is written to stdout before the MCP server takes over: the wire
protocol requires stdout to carry JSON-RPC messages exclusively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if debug {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			root, err := findProjectRoot()
			if err != nil {
				return err
			}
			p, err := openProject(root)
			if err != nil {
				return err
			}

			if p.Deps.Store.Snapshot().Generation == 0 {
				logger.Info("no index found, building one before serving", "root", root)
				if _, err := runIndex(cmd.Context(), p, root); err != nil {
					return fmt.Errorf("initial index: %w", err)
				}
				if err := p.save(); err != nil {
					return fmt.Errorf("save initial index: %w", err)
				}
			}

			srv, err := mcpserver.NewServer(p.Deps, logger)
			if err != nil {
				return fmt.Errorf("create MCP server: %w", err)
			}

			ctx := cmd.Context()
			err = srv.Serve(ctx, transport)
			if saveErr := p.save(); saveErr != nil {
				logger.Warn("save on shutdown", "err", saveErr)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "MCP transport (only stdio is supported)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log server diagnostics to stderr at debug level")
	return cmd
}
